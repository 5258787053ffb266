package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TokenRegistry is the Postgres-backed device token registry.
type TokenRegistry struct {
	db *sqlx.DB
}

func NewTokenRegistry(db *sqlx.DB) *TokenRegistry {
	return &TokenRegistry{db: db}
}

func (r *TokenRegistry) Register(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_tokens (user_id, token, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, token) DO NOTHING`,
		userID, token)
	if err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

func (r *TokenRegistry) Unregister(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`,
		userID, token)
	if err != nil {
		return fmt.Errorf("failed to unregister token: %w", err)
	}
	return nil
}

func (r *TokenRegistry) List(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	err := r.db.SelectContext(ctx, &tokens, `
		SELECT token FROM device_tokens WHERE user_id = $1 ORDER BY token`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

func (r *TokenRegistry) All(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT token, user_id FROM device_tokens`)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tokens: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var token, userID string
		if err := rows.Scan(&token, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		out[token] = append(out[token], userID)
	}
	return out, rows.Err()
}
