package feedback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLock_NoRow(t *testing.T) {
	tests := []struct {
		name       string
		voterCount int
		wantLocked bool
	}{
		{"below threshold", 4, true},
		{"at threshold", 5, false},
		{"above threshold", 12, false},
		{"zero voters", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, needsWrite := EvaluateLock(nil, tt.voterCount, DefaultMinimumResponses)
			assert.Equal(t, tt.wantLocked, eval.IsLocked)
			assert.Equal(t, DefaultMinimumResponses, eval.MinimumResponses)
			// Reads never materialize a row.
			assert.False(t, needsWrite)
		})
	}
}

func TestEvaluateLock_LockedRow(t *testing.T) {
	now := time.Now()

	lock := NewReportLock("target-1", 5, now)
	require.True(t, lock.IsLocked)

	eval, needsWrite := EvaluateLock(&lock, 4, DefaultMinimumResponses)
	assert.True(t, eval.IsLocked)
	assert.False(t, needsWrite)

	eval, needsWrite = EvaluateLock(&lock, 5, DefaultMinimumResponses)
	assert.False(t, eval.IsLocked)
	assert.True(t, needsWrite, "threshold crossing must persist the flip")
}

func TestEvaluateLock_UnlockedRowIsSticky(t *testing.T) {
	now := time.Now()
	unlockedAt := now.Add(-time.Hour)
	lock := ReportLock{
		TargetID:         "target-1",
		IsLocked:         false,
		MinimumResponses: 5,
		CreatedAt:        now.Add(-2 * time.Hour),
		UnlockedAt:       &unlockedAt,
	}

	// Even if the count later drops below the threshold.
	eval, needsWrite := EvaluateLock(&lock, 1, DefaultMinimumResponses)
	assert.False(t, eval.IsLocked)
	assert.False(t, needsWrite)
}

func TestEvaluateLock_CustomMinimum(t *testing.T) {
	lock := NewReportLock("target-1", 10, time.Now())

	eval, needsWrite := EvaluateLock(&lock, 7, DefaultMinimumResponses)
	assert.True(t, eval.IsLocked)
	assert.Equal(t, 10, eval.MinimumResponses)
	assert.False(t, needsWrite)

	eval, needsWrite = EvaluateLock(&lock, 10, DefaultMinimumResponses)
	assert.False(t, eval.IsLocked)
	assert.True(t, needsWrite)
}

func TestEvaluateLock_InvalidMinimumFallsBack(t *testing.T) {
	lock := ReportLock{TargetID: "target-1", IsLocked: true, MinimumResponses: 0, CreatedAt: time.Now()}

	eval, _ := EvaluateLock(&lock, 4, DefaultMinimumResponses)
	assert.True(t, eval.IsLocked)
	assert.Equal(t, DefaultMinimumResponses, eval.MinimumResponses)

	eval, needsWrite := EvaluateLock(&lock, 5, DefaultMinimumResponses)
	assert.False(t, eval.IsLocked)
	assert.True(t, needsWrite)
}
