package push

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderpush/internal/notification"
	"wanderpush/internal/tokens"
)

// fakeTransport records calls and fails for tokens listed in rejected.
type fakeTransport struct {
	mu       sync.Mutex
	delivers []string
	dryRuns  []string
	rejected map[string]bool
	lastMsg  Message
}

func (t *fakeTransport) Deliver(_ context.Context, token string, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delivers = append(t.delivers, token)
	t.lastMsg = msg
	if t.rejected[token] {
		return errors.New("unregistered token")
	}
	return nil
}

func (t *fakeTransport) DeliverDryRun(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dryRuns = append(t.dryRuns, token)
	if t.rejected[token] {
		return errors.New("unregistered token")
	}
	return nil
}

func (t *fakeTransport) deliverCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.delivers)
}

func testNotification(userID string) *notification.Notification {
	return &notification.Notification{
		ID:       "n1",
		UserID:   userID,
		Kind:     notification.KindWeatherAlert,
		Title:    "Storm",
		Body:     "Rain",
		Priority: notification.PriorityHigh,
		Data:     map[string]interface{}{"city": "Lisbon", "severity": 3},
	}
}

func TestSendNoTokens(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{}
	g := NewGateway(transport, tokens.NewMemoryRegistry(), notification.NewCatalog())

	ok, err := g.Send(ctx, testNotification("u1"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, transport.deliverCount())
}

func TestSendAllSucceed(t *testing.T) {
	ctx := context.Background()
	registry := tokens.NewMemoryRegistry()
	require.NoError(t, registry.Register(ctx, "u1", "tok-a"))
	require.NoError(t, registry.Register(ctx, "u1", "tok-b"))

	transport := &fakeTransport{}
	g := NewGateway(transport, registry, notification.NewCatalog())

	ok, err := g.Send(ctx, testNotification("u1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, transport.deliverCount())
}

func TestSendPartialFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	registry := tokens.NewMemoryRegistry()
	for _, tok := range []string{"tok-a", "tok-b", "tok-c"} {
		require.NoError(t, registry.Register(ctx, "u1", tok))
	}

	transport := &fakeTransport{rejected: map[string]bool{"tok-a": true, "tok-b": true}}
	g := NewGateway(transport, registry, notification.NewCatalog())

	ok, err := g.Send(ctx, testNotification("u1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, transport.deliverCount())
}

func TestSendAllFail(t *testing.T) {
	ctx := context.Background()
	registry := tokens.NewMemoryRegistry()
	require.NoError(t, registry.Register(ctx, "u1", "tok-a"))

	transport := &fakeTransport{rejected: map[string]bool{"tok-a": true}}
	g := NewGateway(transport, registry, notification.NewCatalog())

	ok, err := g.Send(ctx, testNotification("u1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageShape(t *testing.T) {
	ctx := context.Background()
	registry := tokens.NewMemoryRegistry()
	require.NoError(t, registry.Register(ctx, "u1", "tok-a"))

	transport := &fakeTransport{}
	g := NewGateway(transport, registry, notification.NewCatalog())

	_, err := g.Send(ctx, testNotification("u1"))
	require.NoError(t, err)

	msg := transport.lastMsg
	assert.Equal(t, "Storm", msg.Title)
	assert.True(t, msg.Expedited)
	assert.Equal(t, "alert", msg.Sound)
	assert.Equal(t, "weather", msg.Channel)
	// Payload values are stringified and the kind travels with them.
	assert.Equal(t, "Lisbon", msg.Data["city"])
	assert.Equal(t, "3", msg.Data["severity"])
	assert.Equal(t, "weather_alert", msg.Data["kind"])
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{rejected: map[string]bool{"bad": true}}
	g := NewGateway(transport, tokens.NewMemoryRegistry(), notification.NewCatalog())

	assert.True(t, g.ValidateToken(ctx, "good"))
	assert.False(t, g.ValidateToken(ctx, "bad"))
}

func TestCleanupInvalidTokens(t *testing.T) {
	ctx := context.Background()
	registry := tokens.NewMemoryRegistry()
	require.NoError(t, registry.Register(ctx, "u1", "tok-a"))
	require.NoError(t, registry.Register(ctx, "u1", "tok-b"))
	require.NoError(t, registry.Register(ctx, "u2", "tok-b"))

	transport := &fakeTransport{rejected: map[string]bool{"tok-b": true}}
	g := NewGateway(transport, registry, notification.NewCatalog())

	require.NoError(t, g.CleanupInvalidTokens(ctx))

	// Shared token is validated once.
	assert.Len(t, transport.dryRuns, 2)

	u1, err := registry.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a"}, u1)

	u2, err := registry.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, u2)

	all, err := registry.All(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, "tok-b")
}
