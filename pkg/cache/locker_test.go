package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExclusive(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "group-1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "group-1", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := l.Acquire(ctx, "group-2", time.Minute)
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, "group-1", time.Minute)
	require.NoError(t, err)
	again()
}

func TestMemoryLockerExpiry(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "g", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(ctx, "g", time.Second)
	require.NoError(t, err)

	// The first holder's release must not free the second holder's lock.
	stale()
	_, err = l.Acquire(ctx, "g", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	fresh()
}
