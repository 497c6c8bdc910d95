package feedback

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/jeonghun43/Prism/pkg/errors"
)

// SessionToken is an opaque identifier minted once per voting pass and
// attached to every vote record in that pass. It deduplicates voters; it is
// never an identity.
type SessionToken string

// NewSessionToken mints a cryptographically random session token.
func NewSessionToken() SessionToken {
	return SessionToken(uuid.New().String())
}

// ParseSessionToken validates an externally supplied token.
func ParseSessionToken(s string) (SessionToken, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", apperrors.NewValidationError("invalid session token")
	}
	return SessionToken(s), nil
}

func (t SessionToken) String() string { return string(t) }

// VoteRecord is one answered question within a voting pass. At most one
// record exists per (target, question, session token); a session overwrites
// its own prior answer, it never accumulates duplicates.
type VoteRecord struct {
	ID           string       `json:"id"`
	TargetID     string       `json:"target_id"`
	QuestionID   string       `json:"question_id"`
	OptionID     int          `json:"selected_option_id"`
	SessionToken SessionToken `json:"session_token"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewVoteRecord creates a vote record stamped with the given time.
func NewVoteRecord(targetID, questionID string, optionID int, token SessionToken, now time.Time) VoteRecord {
	return VoteRecord{
		ID:           uuid.New().String(),
		TargetID:     targetID,
		QuestionID:   questionID,
		OptionID:     optionID,
		SessionToken: token,
		CreatedAt:    now,
	}
}

// DistinctVoterCount returns the number of distinct non-empty session tokens
// among the given records. Records without a token are legacy rows and are
// excluded.
func DistinctVoterCount(votes []VoteRecord) int {
	seen := make(map[SessionToken]struct{}, len(votes))
	for _, v := range votes {
		if v.SessionToken == "" {
			continue
		}
		seen[v.SessionToken] = struct{}{}
	}
	return len(seen)
}
