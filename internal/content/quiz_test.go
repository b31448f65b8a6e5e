package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizDataFromAtoms(t *testing.T) {
	tests := []struct {
		name  string
		atoms []Atom
		want  *QuizData
	}{
		{
			name:  "no quiz atoms",
			atoms: []Atom{{ID: "v", Payload: VisualPayload{AssetID: "a.png"}}},
			want:  nil,
		},
		{
			name: "text options",
			atoms: []Atom{{ID: "quiz-001", Payload: QuizPayload{
				Question: "Which solution?",
				Options:  []QuizOption{{Text: "Water"}, {Text: "EPA disinfectant", IsCorrect: true}},
				Feedback: "Only EPA registered disinfectants qualify.",
			}}},
			want: &QuizData{
				QuizType: QuizKindFlashCard,
				Questions: []Question{{
					ID:              "quiz-001",
					Stimulus:        "Which solution?",
					Options:         []QuestionOption{{ID: "a", Text: "Water"}, {ID: "b", Text: "EPA disinfectant"}},
					CorrectOptionID: "b",
					Feedback:        "Only EPA registered disinfectants qualify.",
				}},
			},
		},
		{
			name: "image options",
			atoms: []Atom{{ID: "quiz-002", Payload: QuizPayload{
				Question: "Pick the clean station",
				Options:  []QuizOption{{Text: "clean.PNG", IsCorrect: true}, {Text: "dirty.webp?v=2"}},
			}}},
			want: &QuizData{
				QuizType: QuizKindImageSelect,
				Questions: []Question{{
					ID:              "quiz-002",
					Stimulus:        "Pick the clean station",
					Options:         []QuestionOption{{ID: "a", Text: "clean.PNG"}, {ID: "b", Text: "dirty.webp?v=2"}},
					CorrectOptionID: "a",
				}},
			},
		},
		{
			name:  "question without options",
			atoms: []Atom{{ID: "quiz-003", Payload: QuizPayload{Question: "Explain"}}},
			want: &QuizData{
				QuizType:  QuizKindFlashCard,
				Questions: []Question{{ID: "quiz-003", Stimulus: "Explain", Options: []QuestionOption{}}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, QuizDataFromAtoms(tc.atoms))
		})
	}
}

func TestOptionID(t *testing.T) {
	assert.Equal(t, "a", optionID(0))
	assert.Equal(t, "z", optionID(25))
	assert.Equal(t, "aa", optionID(26))
	assert.Equal(t, "ab", optionID(27))
}
