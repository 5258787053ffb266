package notification

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const notificationsCollection = "notifications"

// FirestoreStore is the durable Store backed by Cloud Firestore.
type FirestoreStore struct {
	db *firestore.Client
}

func NewFirestoreStore(db *firestore.Client) *FirestoreStore {
	return &FirestoreStore{db: db}
}

func (s *FirestoreStore) Put(ctx context.Context, n *Notification) error {
	_, err := s.db.Collection(notificationsCollection).Doc(n.ID).Set(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*Notification, error) {
	doc, err := s.db.Collection(notificationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	var n Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, fmt.Errorf("failed to parse notification: %w", err)
	}
	return &n, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]*Notification, error) {
	iter := s.db.Collection(notificationsCollection).Documents(ctx)
	return collect(iter)
}

func (s *FirestoreStore) ListByUser(ctx context.Context, userID string) ([]*Notification, error) {
	iter := s.db.Collection(notificationsCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	return collect(iter)
}

func (s *FirestoreStore) ListDueForSend(ctx context.Context, now time.Time) ([]*Notification, error) {
	iter := s.db.Collection(notificationsCollection).
		Where("status", "in", []string{string(StatusPending), string(StatusScheduled)}).
		Documents(ctx)
	all, err := collect(iter)
	if err != nil {
		return nil, err
	}
	// scheduled_for is optional, so the due cut-off is applied client side.
	var due []*Notification
	for _, n := range all {
		if n.ScheduledFor != nil && n.ScheduledFor.After(now) {
			continue
		}
		due = append(due, n)
	}
	return due, nil
}

func (s *FirestoreStore) Remove(ctx context.Context, id string) error {
	_, err := s.db.Collection(notificationsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func collect(iter *firestore.DocumentIterator) ([]*Notification, error) {
	defer iter.Stop()
	var out []*Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}
		var n Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to parse notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, nil
}
