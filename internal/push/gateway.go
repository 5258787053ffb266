// Package push fans rendered notifications out to every device token a user
// holds and keeps the token population healthy.
package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"wanderpush/internal/notification"
	"wanderpush/internal/tokens"
)

// validatePace bounds the dry-run rate during the daily token cleanup so
// the maintenance batch does not burst the transport.
var validatePace = rate.Limit(50)

// Gateway aggregates per-token delivery outcomes into one result: a send
// succeeds when at least one device accepted the message.
type Gateway struct {
	transport Transport
	registry  tokens.Registry
	hints     notification.Renderer
	limiter   *rate.Limiter
}

func NewGateway(transport Transport, registry tokens.Registry, hints notification.Renderer) *Gateway {
	return &Gateway{
		transport: transport,
		registry:  registry,
		hints:     hints,
		limiter:   rate.NewLimiter(validatePace, int(validatePace)),
	}
}

// Send delivers n to every registered device concurrently and reports
// whether any delivery succeeded. Zero registered devices is a failed send
// with no transport contact. Per-token failures are logged, not surfaced.
func (g *Gateway) Send(ctx context.Context, n *notification.Notification) (bool, error) {
	deviceTokens, err := g.registry.List(ctx, n.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to list tokens for user %s: %w", n.UserID, err)
	}
	if len(deviceTokens) == 0 {
		slog.Warn("no device tokens registered", "user_id", n.UserID, "notification_id", n.ID)
		return false, nil
	}

	msg := g.buildMessage(n)

	var wg sync.WaitGroup
	var delivered atomic.Int32
	for _, token := range deviceTokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			if err := g.transport.Deliver(ctx, token, msg); err != nil {
				slog.Warn("device delivery failed",
					"notification_id", n.ID, "token", truncateToken(token), "error", err)
				return
			}
			delivered.Add(1)
		}(token)
	}
	wg.Wait()

	ok := delivered.Load() > 0
	slog.Info("notification fan-out complete",
		"notification_id", n.ID, "devices", len(deviceTokens), "delivered", delivered.Load())
	return ok, nil
}

func (g *Gateway) buildMessage(n *notification.Notification) Message {
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = fmt.Sprint(v)
	}
	data["kind"] = string(n.Kind)

	hints := g.hints.ChannelHints(n.Kind)
	return Message{
		Title:     n.Title,
		Body:      n.Body,
		Data:      data,
		Expedited: n.Priority.Expedited(),
		Sound:     hints.Sound,
		Channel:   hints.Channel,
	}
}

// ValidateToken reports whether the transport still accepts the token. No
// registry change is made here.
func (g *Gateway) ValidateToken(ctx context.Context, token string) bool {
	return g.transport.DeliverDryRun(ctx, token) == nil
}

// CleanupInvalidTokens validates the full token universe and unregisters
// every rejected token from every user holding it. Meant for a daily
// maintenance tick, not the send path.
func (g *Gateway) CleanupInvalidTokens(ctx context.Context) error {
	universe, err := g.registry.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate tokens: %w", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		invalid = make(map[string][]string)
	)
	for token, holders := range universe {
		wg.Add(1)
		go func(token string, holders []string) {
			defer wg.Done()
			if err := g.limiter.Wait(ctx); err != nil {
				return
			}
			if g.ValidateToken(ctx, token) {
				return
			}
			mu.Lock()
			invalid[token] = holders
			mu.Unlock()
		}(token, holders)
	}
	wg.Wait()

	removed := 0
	for token, holders := range invalid {
		for _, userID := range holders {
			if err := g.registry.Unregister(ctx, userID, token); err != nil {
				slog.Warn("failed to unregister token",
					"user_id", userID, "token", truncateToken(token), "error", err)
				continue
			}
			removed++
		}
	}

	slog.Info("token cleanup complete",
		"checked", len(universe), "invalid", len(invalid), "removed", removed)
	return nil
}

// truncateToken keeps full push tokens out of the logs.
func truncateToken(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
