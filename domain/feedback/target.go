// Package feedback holds the core entities and decision logic of the
// anonymous feedback domain: targets identified by shareable nicknames,
// read-only questions, session-scoped vote records, the one-way report lock,
// and tag aggregation over recorded votes.
package feedback

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/jeonghun43/Prism/pkg/errors"
)

// Nickname length limits. Nicknames appear in share URLs, so spaces are
// stripped rather than rejected.
const (
	NicknameMinLength = 1
	NicknameMaxLength = 20
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	// Alphanumeric, Korean syllables and jamo, underscore and hyphen.
	nicknameAllowed = regexp.MustCompile(`[^a-zA-Z0-9가-힣ㄱ-ㅎㅏ-ㅣ_-]`)
	nicknameValid   = regexp.MustCompile(`^[a-zA-Z0-9가-힣ㄱ-ㅎㅏ-ㅣ_-]+$`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Target is a person receiving anonymous feedback through a shared link.
type Target struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTarget creates a target for a validated nickname.
func NewTarget(nickname string, now time.Time) (*Target, error) {
	normalized := NormalizeNickname(nickname)
	if err := ValidateNickname(normalized); err != nil {
		return nil, err
	}
	return &Target{
		ID:        uuid.New().String(),
		Nickname:  normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeNickname strips HTML, removes disallowed characters and all
// whitespace. The result may still fail ValidateNickname (e.g. empty).
func NormalizeNickname(input string) string {
	withoutHTML := htmlTagPattern.ReplaceAllString(input, "")
	sanitized := nicknameAllowed.ReplaceAllString(withoutHTML, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(sanitized, ""))
}

// ValidateNickname checks length and character-set rules for a display
// handle. Call NormalizeNickname first for raw user input.
func ValidateNickname(nickname string) error {
	if len([]rune(nickname)) < NicknameMinLength {
		return apperrors.NewValidationError("nickname is required")
	}
	if len([]rune(nickname)) > NicknameMaxLength {
		return apperrors.NewValidationError("nickname must be at most 20 characters")
	}
	if !nicknameValid.MatchString(nickname) {
		return apperrors.NewValidationError("nickname may only contain letters, digits and Korean characters")
	}
	return nil
}
