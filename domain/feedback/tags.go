package feedback

import "sort"

// MaxTagExamples caps the number of example option texts kept per tag.
const MaxTagExamples = 3

// DefaultTopTagLimit is the number of tags a report shows.
const DefaultTopTagLimit = 3

// TagSummary is one entry of the ranked tag list: a semantic tag, how many
// votes resolved to it, and up to three distinct example option texts.
type TagSummary struct {
	Tag      string   `json:"tag"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// TopTags reduces the given votes to a ranked tag list. Each vote resolves
// its selected option through questionsByID; options without a tag and votes
// referencing unknown questions or options are skipped. Ties are broken by
// first encounter in the order votes are supplied, so callers must pass
// records in a deterministic retrieval order (newest first, matching the
// report query). Returns at most limit entries; tags never appear with a
// zero count.
func TopTags(votes []VoteRecord, questionsByID map[string]Question, limit int) []TagSummary {
	if limit <= 0 {
		limit = DefaultTopTagLimit
	}

	counts := make(map[string]*TagSummary)
	var order []string

	for _, vote := range votes {
		question, ok := questionsByID[vote.QuestionID]
		if !ok {
			continue
		}
		option, ok := question.Option(vote.OptionID)
		if !ok || option.Tag == "" {
			continue
		}

		summary, ok := counts[option.Tag]
		if !ok {
			summary = &TagSummary{Tag: option.Tag}
			counts[option.Tag] = summary
			order = append(order, option.Tag)
		}
		summary.Count++

		if len(summary.Examples) < MaxTagExamples && !containsString(summary.Examples, option.Text) {
			summary.Examples = append(summary.Examples, option.Text)
		}
	}

	ranked := make([]TagSummary, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, *counts[tag])
	}

	// Stable: insertion order decides ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
