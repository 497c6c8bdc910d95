package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, start time.Time) (*Limiter, *time.Time) {
	t.Helper()
	current := start
	limiter := New(DefaultConfig(), NewMemoryStore(), WithClock(func() time.Time {
		return current
	}))
	return limiter, &current
}

func TestCheck_FirstRequestOpensWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter, _ := testLimiter(t, start)

	result := limiter.Check("1.2.3.4", CategoryVoting)
	assert.True(t, result.Allowed)
	assert.Equal(t, 9, result.Remaining)
	assert.Equal(t, start.Add(time.Minute), result.ResetAt)
}

func TestCheck_RejectsBeyondMax(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter, _ := testLimiter(t, start)

	for i := 0; i < 5; i++ {
		result := limiter.Check("1.2.3.4", CategoryLinkGeneration)
		require.True(t, result.Allowed, "request %d should pass", i+1)
	}

	result := limiter.Check("1.2.3.4", CategoryLinkGeneration)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, start.Add(time.Minute), result.ResetAt,
		"rejected requests must not push the reset out")
}

func TestCheck_FreshWindowAfterExpiry(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter, clock := testLimiter(t, start)

	for i := 0; i < 6; i++ {
		limiter.Check("1.2.3.4", CategoryLinkGeneration)
	}
	require.False(t, limiter.Check("1.2.3.4", CategoryLinkGeneration).Allowed)

	*clock = start.Add(time.Minute + time.Second)

	result := limiter.Check("1.2.3.4", CategoryLinkGeneration)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
}

func TestCheck_CallersAreIndependent(t *testing.T) {
	limiter, _ := testLimiter(t, time.Now())

	for i := 0; i < 10; i++ {
		limiter.Check("1.2.3.4", CategoryVoting)
	}
	require.False(t, limiter.Check("1.2.3.4", CategoryVoting).Allowed)

	assert.True(t, limiter.Check("5.6.7.8", CategoryVoting).Allowed)
}

func TestCheck_CategoriesAreIndependent(t *testing.T) {
	limiter, _ := testLimiter(t, time.Now())

	for i := 0; i < 5; i++ {
		limiter.Check("1.2.3.4", CategoryLinkGeneration)
	}
	require.False(t, limiter.Check("1.2.3.4", CategoryLinkGeneration).Allowed)

	assert.True(t, limiter.Check("1.2.3.4", CategoryVoting).Allowed)
}

func TestCheck_UnknownCategoryFallsBackToAPI(t *testing.T) {
	limiter, _ := testLimiter(t, time.Now())

	result := limiter.Check("1.2.3.4", Category("mystery"))
	assert.True(t, result.Allowed)
	assert.Equal(t, 29, result.Remaining)
}

func TestSweep_PurgesExpiredWindows(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	current := start
	limiter := New(DefaultConfig(), store, WithClock(func() time.Time {
		return current
	}))

	limiter.Check("old", CategoryAPI)
	current = start.Add(30 * time.Second)
	limiter.Check("fresh", CategoryVoting)

	current = start.Add(time.Minute + time.Second)
	limiter.Sweep()

	assert.Len(t, store.Keys(), 1, "only the unexpired window survives")
	_, ok := store.Get("voting:fresh")
	assert.True(t, ok)
}
