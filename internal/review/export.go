package review

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Export is the exported corrections document.
type Export struct {
	Corrections []Correction `json:"corrections"`
}

// HourExport is the exported corrections document scoped to one hour.
type HourExport struct {
	HourID           string       `json:"hourId"`
	TotalCorrections int          `json:"totalCorrections"`
	Corrections      []Correction `json:"corrections"`
}

// ExportAll serializes every correction in insertion order as
// {"corrections": [...]} with two-space indentation. Identical state always
// produces identical output.
func (s *Store) ExportAll() ([]byte, error) {
	return MarshalIndent(Export{Corrections: s.Corrections()})
}

// ExportForHour serializes the corrections of hourID as
// {"hourId", "totalCorrections", "corrections"}.
func (s *Store) ExportForHour(hourID string) ([]byte, error) {
	return MarshalHourExport(hourID, s.CorrectionsForHour(hourID))
}

// MarshalHourExport builds the hour-scoped export envelope.
func MarshalHourExport(hourID string, corrections []Correction) ([]byte, error) {
	if corrections == nil {
		corrections = []Correction{}
	}
	list, err := marshal(corrections)
	if err != nil {
		return nil, err
	}

	doc := []byte(`{}`)
	if doc, err = sjson.SetBytes(doc, "hourId", hourID); err != nil {
		return nil, fmt.Errorf("sjson.SetBytes(hourId) > %w", err)
	}
	if doc, err = sjson.SetBytes(doc, "totalCorrections", len(corrections)); err != nil {
		return nil, fmt.Errorf("sjson.SetBytes(totalCorrections) > %w", err)
	}
	if doc, err = sjson.SetRawBytes(doc, "corrections", list); err != nil {
		return nil, fmt.Errorf("sjson.SetRawBytes(corrections) > %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, doc, "", "  "); err != nil {
		return nil, fmt.Errorf("json.Indent > %w", err)
	}
	return out.Bytes(), nil
}

// MarshalIndent encodes v with two-space indentation and without HTML escaping.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
