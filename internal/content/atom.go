// Package content models course blocks and the atoms they are made of.
package content

import (
	"encoding/json"
	"maps"
)

// AtomType is the discriminator of an atom.
type AtomType string

const (
	AtomTypeScript        AtomType = "script"
	AtomTypeVisual        AtomType = "visual"
	AtomTypeAudio         AtomType = "audio"
	AtomTypeQuiz          AtomType = "quiz"
	AtomTypeReinforcement AtomType = "reinforcement"
	AtomTypeDownload      AtomType = "download"
)

// Payload is the type-specific part of an atom.
// The set of implementations is closed: ScriptPayload, VisualPayload,
// AudioPayload, QuizPayload and OtherPayload.
type Payload interface {
	atomType() AtomType
}

// ScriptPayload holds the structured narrative of a script atom.
type ScriptPayload struct {
	Scenario              string
	CosmetologyConnection string
	TheLaw                string
	FullScript            string
}

// VisualPayload references an image asset.
type VisualPayload struct {
	AssetID     string
	Prompt      string
	Description string
}

// AudioPayload references an audio asset narrated from a script atom.
type AudioPayload struct {
	AssetID          string
	LinkedScriptAtom string
	DurationSeconds  float64
}

// QuizOption is one answer of a quiz atom.
type QuizOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizPayload is a single question with options and feedback.
type QuizPayload struct {
	QuizType string
	Question string
	Options  []QuizOption
	Feedback string
}

// OtherPayload is used for atom types without type-specific fields,
// including types this package does not know about.
type OtherPayload struct {
	Type AtomType
}

func (ScriptPayload) atomType() AtomType  { return AtomTypeScript }
func (VisualPayload) atomType() AtomType  { return AtomTypeVisual }
func (AudioPayload) atomType() AtomType   { return AtomTypeAudio }
func (QuizPayload) atomType() AtomType    { return AtomTypeQuiz }
func (p OtherPayload) atomType() AtomType { return p.Type }

// Atom is the smallest content unit of a block.
type Atom struct {
	ID       string
	Metadata map[string]any
	Payload  Payload
}

// Type returns the atom type derived from its payload.
func (a Atom) Type() AtomType {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.atomType()
}

// MarshalJSON writes the atom back in the upstream document shape.
func (a Atom) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"atom_id":   a.ID,
		"atom_type": a.Type(),
	}
	metadata := maps.Clone(a.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}

	switch p := a.Payload.(type) {
	case ScriptPayload:
		out["content"] = map[string]string{
			"SCENARIO":               p.Scenario,
			"COSMETOLOGY_CONNECTION": p.CosmetologyConnection,
			"THE_LAW":                p.TheLaw,
		}
		if p.FullScript != "" {
			metadata["full_script"] = p.FullScript
		}
	case VisualPayload:
		out["asset_id"] = p.AssetID
		metadata["prompt"] = p.Prompt
		metadata["description"] = p.Description
	case AudioPayload:
		out["asset_id"] = p.AssetID
		if p.LinkedScriptAtom != "" {
			metadata["linked_script_atom"] = p.LinkedScriptAtom
		}
		if p.DurationSeconds > 0 {
			metadata["duration"] = p.DurationSeconds
		}
	case QuizPayload:
		out["quiz_type"] = p.QuizType
		options := p.Options
		if options == nil {
			options = []QuizOption{}
		}
		out["content"] = map[string]any{
			"question": p.Question,
			"options":  options,
			"feedback": p.Feedback,
		}
	case OtherPayload, nil:
	}

	if len(metadata) > 0 {
		out["metadata"] = metadata
	}
	return json.Marshal(out)
}

// Block is the unit of review.
type Block struct {
	ID              string `json:"block_id"`
	Title           string `json:"block_title"`
	LessonTitle     string `json:"lesson_title"`
	HourName        string `json:"hour_name"`
	DurationMinutes int    `json:"duration_minutes"`
	Citation        string `json:"tdlr_citation"`
	Atoms           []Atom `json:"atoms"`
}

// Visuals returns the visual atoms in authored order.
func (b Block) Visuals() []VisualAtom {
	var out []VisualAtom
	for _, a := range b.Atoms {
		if p, ok := a.Payload.(VisualPayload); ok {
			out = append(out, VisualAtom{ID: a.ID, VisualPayload: p})
		}
	}
	return out
}

// Scripts returns the script atoms in authored order.
func (b Block) Scripts() []ScriptPayload {
	var out []ScriptPayload
	for _, a := range b.Atoms {
		if p, ok := a.Payload.(ScriptPayload); ok {
			out = append(out, p)
		}
	}
	return out
}

// VisualAtom pairs a visual payload with its atom id.
type VisualAtom struct {
	ID string
	VisualPayload
}
