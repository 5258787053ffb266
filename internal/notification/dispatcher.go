package notification

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// terminalRetention is how long terminal notifications are kept for
// query/audit before the sweep purges them.
const terminalRetention = 24 * time.Hour

const lockShards = 64

// Gateway is the delivery fan-out collaborator. Send reports whether at
// least one device delivery succeeded.
type Gateway interface {
	Send(ctx context.Context, n *Notification) (bool, error)
}

// Dispatcher coordinates notification creation, the allow/quiet-hours/
// priority decision path, delivery, and the periodic sweep.
type Dispatcher struct {
	store    Store
	prefs    PreferenceLookup
	renderer Renderer
	gateway  Gateway

	now   func() time.Time
	locks [lockShards]sync.Mutex
}

func NewDispatcher(store Store, prefs PreferenceLookup, renderer Renderer, gateway Gateway) *Dispatcher {
	return &Dispatcher{
		store:    store,
		prefs:    prefs,
		renderer: renderer,
		gateway:  gateway,
		now:      time.Now,
	}
}

// CreateNotification persists a notification from req and, unless a future
// delivery time was requested, immediately runs the decision path. The
// persisted notification is returned regardless of delivery outcome.
func (d *Dispatcher) CreateNotification(ctx context.Context, req *Request) (*Notification, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown notification kind %q", req.Kind)
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	now := d.now()
	n := &Notification{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Kind:         req.Kind,
		Title:        req.Title,
		Body:         req.Body,
		Data:         req.Data,
		Priority:     req.Priority,
		ScheduledFor: req.ScheduledFor,
		ExpiresAt:    req.ExpiresAt,
		CreatedAt:    now,
		Status:       StatusPending,
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	if n.ScheduledFor != nil {
		n.Status = StatusScheduled
	}

	if err := d.store.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if n.ScheduledFor == nil || !n.ScheduledFor.After(now) {
		if err := d.ProcessNotification(ctx, n); err != nil {
			slog.Warn("immediate processing failed", "notification_id", n.ID, "error", err)
		}
		// Return the post-decision state when available.
		if cur, err := d.store.Get(ctx, n.ID); err == nil {
			return cur, nil
		}
	}
	return n, nil
}

// CreateFromTemplate renders title and body for kind and proceeds as
// CreateNotification. An unknown kind is a caller bug and is surfaced as
// ErrTemplateNotFound.
func (d *Dispatcher) CreateFromTemplate(ctx context.Context, kind Kind, userID string, data map[string]interface{}, opts *TemplateOptions) (*Notification, error) {
	title, body, err := d.renderer.Render(kind, data)
	if err != nil {
		return nil, err
	}

	req := &Request{
		UserID:   userID,
		Kind:     kind,
		Title:    title,
		Body:     body,
		Data:     data,
		Priority: d.renderer.DefaultPriority(kind),
	}
	if opts != nil {
		if opts.Priority != "" {
			req.Priority = opts.Priority
		}
		req.ScheduledFor = opts.ScheduledFor
		req.ExpiresAt = opts.ExpiresAt
	}
	return d.CreateNotification(ctx, req)
}

// ProcessNotification runs the decision path on one notification. Delivery
// failures are absorbed into the failed state and never returned; the error
// return covers store access only.
func (d *Dispatcher) ProcessNotification(ctx context.Context, n *Notification) error {
	lock := d.lockFor(n.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock so overlapping sweeps decide each record once.
	cur, err := d.store.Get(ctx, n.ID)
	if err != nil {
		return fmt.Errorf("failed to load notification %s: %w", n.ID, err)
	}
	if cur.Status.Terminal() {
		return nil
	}

	now := d.now()
	if cur.ScheduledFor != nil && cur.ScheduledFor.After(now) {
		return nil
	}

	if cur.ExpiresAt != nil && cur.ExpiresAt.Before(now) {
		cur.Status = StatusExpired
		return d.store.Put(ctx, cur)
	}

	prefs, err := d.prefs.Get(ctx, cur.UserID)
	if err != nil {
		// Preference store unreachable: fail this record, keep the sweep alive.
		slog.Warn("preference lookup failed", "user_id", cur.UserID, "error", err)
		cur.Status = StatusFailed
		return d.store.Put(ctx, cur)
	}

	if !prefs.KindEnabled(cur.Kind) {
		cur.Status = StatusExpired
		return d.store.Put(ctx, cur)
	}

	// Quiet-hours deferral happens at most once, on the way out of pending.
	// A deferred or future-dated record delivers at its scheduled time
	// without re-checking the window.
	if cur.Status == StatusPending && cur.Priority != PriorityUrgent && prefs != nil && prefs.QuietHours != nil {
		local := now.In(userLocation(prefs.Timezone))
		if IsQuietAt(local, prefs.QuietHours) {
			deferred := NextWindowEnd(local, prefs.QuietHours)
			cur.Status = StatusScheduled
			cur.ScheduledFor = &deferred
			slog.Info("notification deferred for quiet hours",
				"notification_id", cur.ID, "user_id", cur.UserID, "scheduled_for", deferred)
			return d.store.Put(ctx, cur)
		}
	}

	ok, err := d.gateway.Send(ctx, cur)
	if err != nil {
		slog.Warn("delivery error", "notification_id", cur.ID, "error", err)
		ok = false
	}
	if ok {
		sentAt := d.now()
		cur.Status = StatusSent
		cur.SentAt = &sentAt
	} else {
		cur.Status = StatusFailed
	}
	return d.store.Put(ctx, cur)
}

// ProcessPendingNotifications is the periodic sweep: it re-runs the decision
// path on everything due now, then purges terminal records older than the
// retention window.
func (d *Dispatcher) ProcessPendingNotifications(ctx context.Context) error {
	now := d.now()
	due, err := d.store.ListDueForSend(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due notifications: %w", err)
	}

	for _, n := range due {
		if err := d.ProcessNotification(ctx, n); err != nil {
			slog.Warn("sweep processing failed", "notification_id", n.ID, "error", err)
		}
	}

	if err := d.purgeTerminal(ctx, now); err != nil {
		slog.Warn("retention cleanup failed", "error", err)
	}

	if len(due) > 0 {
		slog.Info("notification sweep finished", "processed", len(due))
	}
	return nil
}

func (d *Dispatcher) purgeTerminal(ctx context.Context, now time.Time) error {
	all, err := d.store.List(ctx)
	if err != nil {
		return err
	}
	cutoff := now.Add(-terminalRetention)
	for _, n := range all {
		if !n.Status.Terminal() {
			continue
		}
		if retentionStamp(n).After(cutoff) {
			continue
		}
		if err := d.store.Remove(ctx, n.ID); err != nil {
			slog.Warn("failed to purge notification", "notification_id", n.ID, "error", err)
		}
	}
	return nil
}

// retentionStamp is the timestamp retention age is measured from: when the
// record was sent, when it expired, or when it was created.
func retentionStamp(n *Notification) time.Time {
	if n.SentAt != nil {
		return *n.SentAt
	}
	if n.Status == StatusExpired && n.ExpiresAt != nil {
		return *n.ExpiresAt
	}
	return n.CreatedAt
}

func (d *Dispatcher) GetUserNotifications(ctx context.Context, userID string) ([]*Notification, error) {
	return d.store.ListByUser(ctx, userID)
}

func (d *Dispatcher) GetStats(ctx context.Context) (*Stats, error) {
	all, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	stats := &Stats{Total: len(all)}
	for _, n := range all {
		switch n.Status {
		case StatusPending:
			stats.Pending++
		case StatusScheduled:
			stats.Scheduled++
		case StatusSent:
			stats.Sent++
		case StatusFailed:
			stats.Failed++
		case StatusExpired:
			stats.Expired++
		}
	}
	return stats, nil
}

func (d *Dispatcher) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &d.locks[h.Sum32()%lockShards]
}

func userLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
