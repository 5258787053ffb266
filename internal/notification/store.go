package notification

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

// Store holds notification records. Implementations must make single-record
// writes atomic: a concurrent reader sees either the old or the new record,
// never a partial update.
type Store interface {
	Put(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context) ([]*Notification, error)
	// ListByUser returns the user's notifications newest-first.
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)
	// ListDueForSend returns every pending or scheduled notification whose
	// scheduled_for is absent or not after now.
	ListDueForSend(ctx context.Context, now time.Time) ([]*Notification, error)
	Remove(ctx context.Context, id string) error
}
