package feedback

import "time"

// Option is one selectable answer of a question. The Tag is an optional
// semantic label shared by options across different questions; tag
// aggregation groups votes by it.
type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Tag  string `json:"tag,omitempty"`
}

// Question is a multiple-choice prompt. Questions are managed externally and
// are read-only input to this service.
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"question_text"`
	Options   []Option  `json:"options"`
	Category  string    `json:"category,omitempty"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Option returns the option with the given id, if it belongs to the question.
func (q Question) Option(optionID int) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// HasOption reports whether optionID belongs to the question's option set.
func (q Question) HasOption(optionID int) bool {
	_, ok := q.Option(optionID)
	return ok
}
