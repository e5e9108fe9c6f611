package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("rest", 3, 0.001), "token %d", i)
	}
	assert.False(t, l.Allow("rest", 3, 0.001))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()

	assert.True(t, l.Allow("rest", 1, 0.001))
	assert.False(t, l.Allow("rest", 1, 0.001))
	assert.True(t, l.Allow("ws", 1, 0.001))
}

func TestAllowRefills(t *testing.T) {
	l := New()

	require.True(t, l.Allow("rest", 1, 100))
	require.False(t, l.Allow("rest", 1, 100))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("rest", 1, 100))
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	require.True(t, l.Allow("rest", 1, 0.001))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "rest", 1, 0.001)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
