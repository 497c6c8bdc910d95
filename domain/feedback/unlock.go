package feedback

import "time"

// DefaultMinimumResponses is applied when a target has no lock row yet.
const DefaultMinimumResponses = 5

// ReportLock is the persisted unlock state of a target's report. At most one
// row exists per target. Once IsLocked transitions to false the row means
// "has ever unlocked"; the automatic path never sets it back to true.
type ReportLock struct {
	TargetID         string     `json:"target_id"`
	IsLocked         bool       `json:"is_locked"`
	MinimumResponses int        `json:"minimum_responses"`
	CreatedAt        time.Time  `json:"created_at"`
	UnlockedAt       *time.Time `json:"unlocked_at,omitempty"`
}

// NewReportLock creates the initial locked row for a target.
func NewReportLock(targetID string, minimumResponses int, now time.Time) ReportLock {
	if minimumResponses <= 0 {
		minimumResponses = DefaultMinimumResponses
	}
	return ReportLock{
		TargetID:         targetID,
		IsLocked:         true,
		MinimumResponses: minimumResponses,
		CreatedAt:        now,
	}
}

// Evaluation is the reported lock state for a voter count.
type Evaluation struct {
	IsLocked         bool
	MinimumResponses int
}

// EvaluateLock decides the reported lock state from the stored row (nil when
// none exists) and the current distinct voter count. The second return value
// is true when the stored row should be flipped to unlocked: only a row that
// is still locked and has met its threshold needs the write. The rules:
//
//   - no row: threshold defaults; the report reads as unlocked once the
//     count meets it, but no row is materialized by reads.
//   - row unlocked: unlocked forever, regardless of the current count.
//   - row locked: unlocked iff count >= threshold; this is the one
//     transition that must be persisted.
//
// Keeping this a pure function lets both the submit path and the report-view
// path share one source of truth.
func EvaluateLock(lock *ReportLock, voterCount, defaultMinimum int) (Evaluation, bool) {
	if defaultMinimum <= 0 {
		defaultMinimum = DefaultMinimumResponses
	}

	if lock == nil {
		return Evaluation{
			IsLocked:         voterCount < defaultMinimum,
			MinimumResponses: defaultMinimum,
		}, false
	}

	minimum := lock.MinimumResponses
	if minimum <= 0 {
		minimum = defaultMinimum
	}

	if !lock.IsLocked {
		return Evaluation{IsLocked: false, MinimumResponses: minimum}, false
	}

	if voterCount >= minimum {
		return Evaluation{IsLocked: false, MinimumResponses: minimum}, true
	}

	return Evaluation{IsLocked: true, MinimumResponses: minimum}, false
}
