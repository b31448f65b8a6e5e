package content

import (
	"path"
	"strings"
)

// QuizKind selects the renderer of a QuizData.
type QuizKind string

const (
	QuizKindFlashCard   QuizKind = "FlashCard"
	QuizKindImageSelect QuizKind = "ImageSelect"
)

type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID              string           `json:"id"`
	Stimulus        string           `json:"stimulus"`
	Options         []QuestionOption `json:"options"`
	CorrectOptionID string           `json:"correct_option_id"`
	Feedback        string           `json:"feedback"`
}

// QuizData is the question set rendered for a block's quiz atoms.
type QuizData struct {
	QuizType  QuizKind   `json:"quiz_type"`
	Questions []Question `json:"questions"`
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// QuizDataFromAtoms collects the quiz atoms into QuizData.
// It returns nil when there is no quiz atom.
func QuizDataFromAtoms(atoms []Atom) *QuizData {
	var questions []Question
	allImages := true
	for _, atom := range atoms {
		p, ok := atom.Payload.(QuizPayload)
		if !ok {
			continue
		}
		q := Question{
			ID:       atom.ID,
			Stimulus: p.Question,
			Options:  make([]QuestionOption, 0, len(p.Options)),
			Feedback: p.Feedback,
		}
		for i, option := range p.Options {
			id := optionID(i)
			q.Options = append(q.Options, QuestionOption{ID: id, Text: option.Text})
			if option.IsCorrect && q.CorrectOptionID == "" {
				q.CorrectOptionID = id
			}
			if !isImagePath(option.Text) {
				allImages = false
			}
		}
		if len(p.Options) == 0 {
			allImages = false
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil
	}

	kind := QuizKindFlashCard
	if allImages {
		kind = QuizKindImageSelect
	}
	return &QuizData{QuizType: kind, Questions: questions}
}

// optionID returns a, b, ..., z, aa, ab, ...
func optionID(i int) string {
	id := ""
	for {
		id = string(rune('a'+i%26)) + id
		i = i/26 - 1
		if i < 0 {
			return id
		}
	}
}

func isImagePath(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return imageExtensions[path.Ext(s)]
}
