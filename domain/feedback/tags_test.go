package feedback

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagQuestions() map[string]Question {
	return map[string]Question{
		"q1": {
			ID: "q1",
			Options: []Option{
				{ID: 1, Text: "listens well", Tag: "warm"},
				{ID: 2, Text: "keeps it lively", Tag: "energetic"},
				{ID: 3, Text: "other"}, // untagged
			},
			Active: true,
		},
		"q2": {
			ID: "q2",
			Options: []Option{
				{ID: 1, Text: "helps first", Tag: "warm"},
				{ID: 2, Text: "stays calm", Tag: "calm"},
				{ID: 3, Text: "thinks it through", Tag: "thoughtful"},
			},
			Active: true,
		},
	}
}

func voteFor(questionID string, optionID int) VoteRecord {
	return NewVoteRecord("target-1", questionID, optionID, NewSessionToken(), time.Now())
}

func TestTopTags_RanksByCountDescending(t *testing.T) {
	votes := []VoteRecord{
		voteFor("q1", 1), // warm
		voteFor("q2", 1), // warm
		voteFor("q2", 2), // calm
		voteFor("q1", 2), // energetic
		voteFor("q2", 1), // warm
		voteFor("q2", 2), // calm
	}

	ranked := TopTags(votes, tagQuestions(), DefaultTopTagLimit)
	require.Len(t, ranked, 3)

	assert.Equal(t, "warm", ranked[0].Tag)
	assert.Equal(t, 3, ranked[0].Count)
	assert.Equal(t, "calm", ranked[1].Tag)
	assert.Equal(t, 2, ranked[1].Count)
	assert.Equal(t, "energetic", ranked[2].Tag)
	assert.Equal(t, 1, ranked[2].Count)
}

func TestTopTags_LimitsToThree(t *testing.T) {
	votes := []VoteRecord{
		voteFor("q1", 1), // warm
		voteFor("q1", 2), // energetic
		voteFor("q2", 2), // calm
		voteFor("q2", 3), // thoughtful
	}

	ranked := TopTags(votes, tagQuestions(), DefaultTopTagLimit)
	assert.Len(t, ranked, 3, "four distinct tags must cut to the top three")
}

func TestTopTags_TiesKeepFirstEncounterOrder(t *testing.T) {
	votes := []VoteRecord{
		voteFor("q2", 2), // calm seen first
		voteFor("q1", 2), // energetic
		voteFor("q2", 3), // thoughtful
	}

	ranked := TopTags(votes, tagQuestions(), DefaultTopTagLimit)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"calm", "energetic", "thoughtful"},
		[]string{ranked[0].Tag, ranked[1].Tag, ranked[2].Tag})
}

func TestTopTags_ExamplesAreDistinctAndCapped(t *testing.T) {
	questions := map[string]Question{
		"q1": {ID: "q1", Options: []Option{
			{ID: 1, Text: "option a", Tag: "warm"},
			{ID: 2, Text: "option b", Tag: "warm"},
			{ID: 3, Text: "option c", Tag: "warm"},
			{ID: 4, Text: "option d", Tag: "warm"},
		}},
	}

	var votes []VoteRecord
	// Repeat option a, then cover all four options.
	for _, optionID := range []int{1, 1, 2, 3, 4} {
		votes = append(votes, voteFor("q1", optionID))
	}

	ranked := TopTags(votes, questions, DefaultTopTagLimit)
	require.Len(t, ranked, 1)
	assert.Equal(t, 5, ranked[0].Count)
	assert.Equal(t, []string{"option a", "option b", "option c"}, ranked[0].Examples,
		"examples keep first-seen texts, distinct, at most three")
}

func TestTopTags_SkipsUntaggedAndUnknown(t *testing.T) {
	votes := []VoteRecord{
		voteFor("q1", 3),        // untagged option
		voteFor("q-unknown", 1), // unknown question
		voteFor("q1", 99),       // unknown option
		voteFor("q1", 1),        // warm
	}

	ranked := TopTags(votes, tagQuestions(), DefaultTopTagLimit)
	require.Len(t, ranked, 1)
	assert.Equal(t, "warm", ranked[0].Tag)
	assert.Equal(t, 1, ranked[0].Count)
}

func TestTopTags_EmptyVotes(t *testing.T) {
	assert.Empty(t, TopTags(nil, tagQuestions(), DefaultTopTagLimit))
}

func TestDistinctVoterCount(t *testing.T) {
	a := NewSessionToken()
	b := NewSessionToken()

	votes := []VoteRecord{
		{SessionToken: a},
		{SessionToken: a},
		{SessionToken: b},
		{SessionToken: ""}, // legacy row, excluded
	}
	assert.Equal(t, 2, DistinctVoterCount(votes))
	assert.Equal(t, 0, DistinctVoterCount(nil))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token := NewSessionToken()
	parsed, err := ParseSessionToken(token.String())
	require.NoError(t, err)
	assert.Equal(t, token, parsed)

	_, err = ParseSessionToken("not-a-token")
	assert.Error(t, err)
}

func TestSessionTokensAreUnique(t *testing.T) {
	seen := make(map[SessionToken]struct{})
	for i := 0; i < 100; i++ {
		token := NewSessionToken()
		_, dup := seen[token]
		require.False(t, dup, fmt.Sprintf("duplicate token at iteration %d", i))
		seen[token] = struct{}{}
	}
}
