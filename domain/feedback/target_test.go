package feedback

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNickname(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "alice", "alice"},
		{"korean", "홍길동", "홍길동"},
		{"korean jamo", "ㅎㅎ", "ㅎㅎ"},
		{"strips html", "<b>alice</b>", "alice"},
		{"strips script tag", "<script>x</script>bob", "xbob"},
		{"removes spaces", "al ice", "alice"},
		{"removes specials", "a!l@i#c$e", "alice"},
		{"underscore and hyphen kept", "a_b-c", "a_b-c"},
		{"emoji removed", "alice🎉", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNickname(tt.input))
		})
	}
}

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name     string
		nickname string
		wantErr  bool
	}{
		{"valid ascii", "alice", false},
		{"valid korean", "홍길동", false},
		{"single char", "a", false},
		{"twenty chars", strings.Repeat("a", 20), false},
		{"twenty korean chars", strings.Repeat("가", 20), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 21), true},
		{"space inside", "al ice", true},
		{"html remnant", "<alice>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNickname(tt.nickname)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTarget(t *testing.T) {
	now := time.Now()

	target, err := NewTarget("  <b>홍길동</b>  ", now)
	require.NoError(t, err)
	assert.Equal(t, "홍길동", target.Nickname)
	assert.NotEmpty(t, target.ID)
	assert.Equal(t, now, target.CreatedAt)

	_, err = NewTarget("<b></b>", now)
	assert.Error(t, err, "nothing left after normalization")
}
