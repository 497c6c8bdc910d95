package memory

import (
	"time"

	"github.com/jeonghun43/Prism/domain/feedback"
)

// DefaultQuestions returns the built-in question set served when the memory
// backend is active. Options share tags across questions so the tag
// aggregation has something to group by.
func DefaultQuestions() []feedback.Question {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []feedback.Question{
		{
			ID:   "q-first-impression",
			Text: "이 사람의 첫인상은 어땠나요?",
			Options: []feedback.Option{
				{ID: 1, Text: "차분하고 침착해 보였어요", Tag: "calm"},
				{ID: 2, Text: "에너지가 넘쳐 보였어요", Tag: "energetic"},
				{ID: 3, Text: "다정하고 친근해 보였어요", Tag: "warm"},
				{ID: 4, Text: "신중하고 진지해 보였어요", Tag: "thoughtful"},
			},
			Category:  "impression",
			Active:    true,
			CreatedAt: base,
		},
		{
			ID:   "q-conversation",
			Text: "대화할 때 이 사람은 어떤 편인가요?",
			Options: []feedback.Option{
				{ID: 1, Text: "잘 들어주는 편이에요", Tag: "warm"},
				{ID: 2, Text: "재미있게 이끌어가요", Tag: "energetic"},
				{ID: 3, Text: "깊이 있는 이야기를 해요", Tag: "thoughtful"},
				{ID: 4, Text: "편안한 분위기를 만들어요", Tag: "calm"},
			},
			Category:  "communication",
			Active:    true,
			CreatedAt: base.Add(time.Minute),
		},
		{
			ID:   "q-teamwork",
			Text: "함께 일하거나 공부할 때 이 사람은?",
			Options: []feedback.Option{
				{ID: 1, Text: "묵묵히 제 몫을 해내요", Tag: "calm"},
				{ID: 2, Text: "분위기 메이커예요", Tag: "energetic"},
				{ID: 3, Text: "꼼꼼하게 챙겨줘요", Tag: "thoughtful"},
				{ID: 4, Text: "어려울 때 먼저 도와줘요", Tag: "warm"},
			},
			Category:  "collaboration",
			Active:    true,
			CreatedAt: base.Add(2 * time.Minute),
		},
	}
}
