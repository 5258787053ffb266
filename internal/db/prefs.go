package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"wanderpush/internal/notification"
)

// PreferenceStore reads per-user notification preferences from Postgres.
// It satisfies notification.PreferenceLookup; a missing row means the user
// accepts everything.
type PreferenceStore struct {
	db *sqlx.DB
}

func NewPreferenceStore(db *sqlx.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

func (s *PreferenceStore) Get(ctx context.Context, userID string) (*notification.Preferences, error) {
	var row struct {
		EnabledKinds pq.StringArray `db:"enabled_kinds"`
		QuietStart   sql.NullString `db:"quiet_start"`
		QuietEnd     sql.NullString `db:"quiet_end"`
		Timezone     sql.NullString `db:"timezone"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT enabled_kinds, quiet_start, quiet_end, timezone
		FROM notification_preferences WHERE user_id = $1`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs := &notification.Preferences{
		Timezone: row.Timezone.String,
	}
	for _, k := range row.EnabledKinds {
		prefs.EnabledKinds = append(prefs.EnabledKinds, notification.Kind(k))
	}
	if row.QuietStart.Valid && row.QuietEnd.Valid {
		prefs.QuietHours = &notification.QuietHours{
			Start: row.QuietStart.String,
			End:   row.QuietEnd.String,
		}
	}
	return prefs, nil
}
