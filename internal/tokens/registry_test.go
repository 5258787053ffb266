package tokens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	require.NoError(t, r.Register(ctx, "u1", "tok-a"))
	require.NoError(t, r.Register(ctx, "u1", "tok-a"))

	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a"}, list)
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	require.NoError(t, r.Register(ctx, "u1", "tok-a"))
	require.NoError(t, r.Unregister(ctx, "u1", "tok-a"))

	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	// The user entry itself is gone, not just emptied.
	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUnregisterUnknown(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	assert.NoError(t, r.Unregister(ctx, "ghost", "tok-a"))
}

func TestMultiDevice(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	require.NoError(t, r.Register(ctx, "u1", "tok-a"))
	require.NoError(t, r.Register(ctx, "u1", "tok-b"))
	require.NoError(t, r.Register(ctx, "u2", "tok-b"))

	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-b"}, list)

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.ElementsMatch(t, []string{"u1"}, all["tok-a"])
	assert.ElementsMatch(t, []string{"u1", "u2"}, all["tok-b"])
}
