package content

import (
	"fmt"
	"strings"
)

const (
	// MixedAtomType is reported for blocks without atoms.
	MixedAtomType = "Mixed"

	ReviewStatusPending = "pending"
)

// Slide is a visual atom flattened for grid display.
type Slide struct {
	ID          string `json:"id"`
	AtomID      string `json:"atomId"`
	Prompt      string `json:"prompt"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// ReviewBlock is the flattened block shape consumed by reviewers.
type ReviewBlock struct {
	BlockID         string    `json:"blockId"`
	HourID          string    `json:"hourId"`
	Title           string    `json:"title"`
	LessonTitle     string    `json:"lessonTitle"`
	AtomType        string    `json:"atomType"`
	DurationMinutes int       `json:"durationMinutes"`
	Citation        string    `json:"citation"`
	Status          string    `json:"status"`
	Slides          []Slide   `json:"slides"`
	Images          []string  `json:"images"`
	Audio           string    `json:"audio,omitempty"`
	ImagePrompts    string    `json:"imagePrompts"`
	AudioScript     string    `json:"audioScript"`
	Quiz            *QuizData `json:"quiz,omitempty"`
	RawAtoms        []Atom    `json:"rawAtoms"`
}

// ProjectForReview derives the review shape of a block.
// Asset identifiers are resolved against assetURLPrefix with ResolveAssetURL.
func ProjectForReview(block Block, assetURLPrefix string) ReviewBlock {
	rb := ReviewBlock{
		BlockID:         block.ID,
		HourID:          block.HourName,
		Title:           block.Title,
		LessonTitle:     block.LessonTitle,
		AtomType:        MixedAtomType,
		DurationMinutes: block.DurationMinutes,
		Citation:        block.Citation,
		Status:          ReviewStatusPending,
		Slides:          []Slide{},
		Images:          []string{},
		RawAtoms:        block.Atoms,
		Quiz:            QuizDataFromAtoms(block.Atoms),
	}
	if rb.RawAtoms == nil {
		rb.RawAtoms = []Atom{}
	}
	if len(block.Atoms) > 0 && block.Atoms[0].Type() != "" {
		rb.AtomType = string(block.Atoms[0].Type())
	}

	var prompts, scripts []string
	for _, atom := range block.Atoms {
		switch p := atom.Payload.(type) {
		case VisualPayload:
			id := p.AssetID
			if id == "" {
				id = atom.ID
			}
			slide := Slide{
				ID:          id,
				AtomID:      atom.ID,
				Prompt:      p.Prompt,
				Description: p.Description,
				ImageURL:    ResolveAssetURL(assetURLPrefix, id),
			}
			rb.Slides = append(rb.Slides, slide)
			rb.Images = append(rb.Images, slide.ImageURL)
			prompts = append(prompts, p.Prompt)
		case ScriptPayload:
			scripts = append(scripts, transcript(p))
		case AudioPayload:
			if rb.Audio == "" && p.AssetID != "" {
				rb.Audio = ResolveAssetURL(assetURLPrefix, p.AssetID)
			}
		case QuizPayload, OtherPayload, nil:
		}
	}
	rb.ImagePrompts = strings.Join(prompts, "\n\n")
	rb.AudioScript = strings.Join(scripts, "\n\n")
	return rb
}

func transcript(p ScriptPayload) string {
	if p.Scenario == "" && p.CosmetologyConnection == "" && p.TheLaw == "" && p.FullScript != "" {
		return p.FullScript
	}
	return fmt.Sprintf("[SCENARIO]: %s\n[CONN]: %s\n[LAW]: %s", p.Scenario, p.CosmetologyConnection, p.TheLaw)
}
