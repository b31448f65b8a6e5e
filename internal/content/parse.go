package content

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	DefaultBlockTitle  = "Untitled Block"
	DefaultLessonTitle = "Unknown Lesson"
	DefaultHourName    = "Unknown Hour"

	unknownAtomType AtomType = "unknown"
)

// ParseBlock converts an arbitrary JSON document into a Block.
// It never fails: invalid JSON or a non-object document yields a block with
// every field defaulted, and malformed atoms are skipped.
func ParseBlock(raw []byte) Block {
	doc := gjson.Result{}
	if gjson.ValidBytes(raw) {
		doc = gjson.ParseBytes(raw)
	}
	if !doc.IsObject() {
		doc = gjson.Parse("{}")
	}

	block := Block{
		ID:              stringOr(doc.Get("block_id"), ""),
		Title:           stringOr(doc.Get("block_title"), DefaultBlockTitle),
		LessonTitle:     stringOr(doc.Get("lesson_title"), DefaultLessonTitle),
		HourName:        stringOr(doc.Get("hour_name"), DefaultHourName),
		DurationMinutes: minutes(doc.Get("duration_minutes")),
		Citation:        stringOr(doc.Get("tdlr_citation"), ""),
		Atoms:           []Atom{},
	}
	if block.ID == "" {
		block.ID = uuid.NewString()
	}

	atoms := doc.Get("atoms")
	if !atoms.IsArray() {
		return block
	}
	seen := make(map[string]int)
	for i, entry := range atoms.Array() {
		if !entry.IsObject() {
			slog.Debug("skip malformed atom", "block_id", block.ID, "index", i, "raw", entry.Raw)
			continue
		}
		atom := parseAtom(i, entry)
		atom.ID = uniqueID(seen, atom.ID)
		block.Atoms = append(block.Atoms, atom)
	}
	return block
}

// ParseBlockValue is ParseBlock for an already decoded document.
func ParseBlockValue(v any) Block {
	raw, err := json.Marshal(v)
	if err != nil {
		return ParseBlock(nil)
	}
	return ParseBlock(raw)
}

func parseAtom(index int, r gjson.Result) Atom {
	atomType := AtomType(strings.ToLower(strings.TrimSpace(stringOr(r.Get("atom_type"), ""))))
	if atomType == "" {
		atomType = unknownAtomType
	}

	atom := Atom{
		ID:       stringOr(r.Get("atom_id"), ""),
		Metadata: objectValue(r.Get("metadata")),
	}
	if atom.ID == "" {
		atom.ID = fmt.Sprintf("%s-%03d", atomType, index+1)
	}

	metadata := r.Get("metadata")
	switch atomType {
	case AtomTypeScript:
		body := r.Get("content")
		payload := ScriptPayload{
			Scenario:              stringOr(body.Get("SCENARIO"), ""),
			CosmetologyConnection: stringOr(body.Get("COSMETOLOGY_CONNECTION"), ""),
			TheLaw:                stringOr(body.Get("THE_LAW"), ""),
			FullScript:            stringOr(metadata.Get("full_script"), ""),
		}
		if body.Type == gjson.String && payload.FullScript == "" {
			payload.FullScript = body.String()
		}
		atom.Payload = payload
	case AtomTypeVisual:
		atom.Payload = VisualPayload{
			AssetID:     stringOr(r.Get("asset_id"), ""),
			Prompt:      stringOr(firstOf(metadata.Get("prompt"), r.Get("prompt")), ""),
			Description: stringOr(firstOf(metadata.Get("description"), r.Get("description")), ""),
		}
	case AtomTypeAudio:
		atom.Payload = AudioPayload{
			AssetID:          stringOr(r.Get("asset_id"), ""),
			LinkedScriptAtom: stringOr(metadata.Get("linked_script_atom"), ""),
			DurationSeconds:  math.Max(0, number(metadata.Get("duration"))),
		}
	case AtomTypeQuiz:
		body := r.Get("content")
		payload := QuizPayload{
			QuizType: stringOr(r.Get("quiz_type"), ""),
			Question: stringOr(body.Get("question"), ""),
			Feedback: stringOr(body.Get("feedback"), ""),
			Options:  []QuizOption{},
		}
		for _, option := range body.Get("options").Array() {
			if option.Type == gjson.String {
				payload.Options = append(payload.Options, QuizOption{Text: option.String()})
				continue
			}
			payload.Options = append(payload.Options, QuizOption{
				Text:      stringOr(option.Get("text"), ""),
				IsCorrect: firstOf(option.Get("isCorrect"), option.Get("is_correct")).Bool(),
			})
		}
		atom.Payload = payload
	default:
		atom.Payload = OtherPayload{Type: atomType}
	}
	return atom
}

// uniqueID keeps the first occurrence of id and suffixes later ones with -2, -3...
func uniqueID(seen map[string]int, id string) string {
	n, dup := seen[id]
	if !dup {
		seen[id] = 1
		return id
	}
	for {
		n++
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, taken := seen[candidate]; !taken {
			seen[id] = n
			seen[candidate] = 1
			return candidate
		}
	}
}

// stringOr returns the textual value of r, or def when r is absent, null,
// empty or not a scalar.
func stringOr(r gjson.Result, def string) string {
	switch r.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		if s := r.String(); s != "" {
			return s
		}
	}
	return def
}

func firstOf(results ...gjson.Result) gjson.Result {
	for _, r := range results {
		if r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.String()), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func minutes(r gjson.Result) int {
	f := number(r)
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}

func objectValue(r gjson.Result) map[string]any {
	if !r.IsObject() {
		return nil
	}
	m, ok := r.Value().(map[string]any)
	if !ok {
		return nil
	}
	return m
}
