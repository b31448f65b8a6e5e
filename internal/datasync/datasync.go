// Package datasync imports previously exported corrections files back into
// the review store.
package datasync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/sigmareview/internal/review"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	New     int
	Skipped int
	Updated int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// CorrectionStore is the part of review.Store the importer writes to.
type CorrectionStore interface {
	Correction(id string) (review.Correction, bool)
	AppendImported(ctx context.Context, corrections []review.Correction) (int, error)
	UpdateCorrectionByID(ctx context.Context, id string, patch review.CorrectionPatch) error
}

// Importer reads exported corrections files and writes them to the store.
type Importer struct {
	store  CorrectionStore
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(store CorrectionStore, writer io.Writer) *Importer {
	return &Importer{
		store:  store,
		writer: writer,
	}
}

// ImportFile imports a .json, .yaml or .yml export file.
func (imp *Importer) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var corrections []review.Correction
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		corrections, err = ParseYAML(data)
	default:
		corrections, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return imp.Import(ctx, corrections, opts)
}

// Import adds corrections whose id is not in the store yet. Existing ids are
// skipped, or overwritten when opts.UpdateExisting is set. The createdAt of
// an existing correction is never changed.
func (imp *Importer) Import(ctx context.Context, corrections []review.Correction, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	var additions []review.Correction
	pending := make(map[string]bool)

	for _, c := range corrections {
		existing, ok := imp.store.Correction(c.ID)
		if !ok {
			if pending[c.ID] {
				result.Skipped++
				fmt.Fprintf(imp.writer, "  [SKIP]  %s (duplicate in file)\n", c.ID)
				continue
			}
			pending[c.ID] = true
			additions = append(additions, c)
			result.New++
			fmt.Fprintf(imp.writer, "  [NEW]  %s (block %s)\n", c.ID, c.BlockID)
			continue
		}

		if !opts.UpdateExisting || sameFields(existing, c) {
			result.Skipped++
			fmt.Fprintf(imp.writer, "  [SKIP]  %s (block %s)\n", c.ID, c.BlockID)
			continue
		}
		if !opts.DryRun {
			if err := imp.store.UpdateCorrectionByID(ctx, c.ID, patchFrom(c)); err != nil {
				return nil, fmt.Errorf("UpdateCorrectionByID(%s) > %w", c.ID, err)
			}
		}
		result.Updated++
		fmt.Fprintf(imp.writer, "  [UPDATE]  %s (block %s)\n", c.ID, c.BlockID)
	}

	if !opts.DryRun && len(additions) > 0 {
		if _, err := imp.store.AppendImported(ctx, additions); err != nil {
			return nil, fmt.Errorf("AppendImported() > %w", err)
		}
	}
	return &result, nil
}

// ParseJSON reads the corrections of an export, either the full
// {"corrections"} document or the hour-scoped one.
func ParseJSON(data []byte) ([]review.Correction, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("export is not valid JSON")
	}
	list := gjson.GetBytes(data, "corrections")
	if !list.IsArray() {
		return nil, fmt.Errorf("export has no corrections array")
	}

	var corrections []review.Correction
	if err := json.Unmarshal([]byte(list.Raw), &corrections); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(corrections) > %w", err)
	}
	return corrections, nil
}

// ParseYAML reads a YAML rendition of an export.
func ParseYAML(data []byte) ([]review.Correction, error) {
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal() > %w", err)
	}
	converted, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal() > %w", err)
	}
	return ParseJSON(converted)
}

func sameFields(a, b review.Correction) bool {
	return a.HourID == b.HourID &&
		a.AssetType == b.AssetType &&
		a.AssetName == b.AssetName &&
		a.Issue == b.Issue &&
		a.Priority == b.Priority &&
		a.Status == b.Status &&
		a.CreatedBy == b.CreatedBy
}

func patchFrom(c review.Correction) review.CorrectionPatch {
	return review.CorrectionPatch{
		HourID:    review.Ptr(c.HourID),
		AssetType: review.Ptr(c.AssetType),
		AssetName: review.Ptr(c.AssetName),
		Issue:     review.Ptr(c.Issue),
		Priority:  review.Ptr(c.Priority),
		Status:    review.Ptr(c.Status),
		CreatedBy: review.Ptr(c.CreatedBy),
	}
}
