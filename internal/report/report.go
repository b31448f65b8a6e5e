// Package report renders the exported corrections document in the supported
// file formats.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/itchyny/json2yaml"
	"github.com/samber/lo"

	"github.com/at-ishikawa/sigmareview/internal/assets"
	"github.com/at-ishikawa/sigmareview/internal/content"
	"github.com/at-ishikawa/sigmareview/internal/pdf"
	"github.com/at-ishikawa/sigmareview/internal/review"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName returns the export file name: corrections-all-<date>.<ext>, or
// corrections-hour-<hour>-<date>.<ext> for a single hour. The date is the
// UTC calendar day of now.
func FileName(hourID string, format Format, now time.Time) string {
	date := now.UTC().Format(time.DateOnly)
	if hourID == "" {
		return fmt.Sprintf("corrections-all-%s.%s", date, format.Extension())
	}
	return fmt.Sprintf("corrections-hour-%s-%s.%s", unsafeFileChars.ReplaceAllString(hourID, "_"), date, format.Extension())
}

// Exporter renders the corrections of a review store.
type Exporter struct {
	store        *review.Store
	templatePath string
	hourTitle    func(hourID string) string
	now          func() time.Time
}

type Option func(*Exporter)

// WithTemplate overrides the embedded markdown report template.
func WithTemplate(path string) Option {
	return func(e *Exporter) {
		e.templatePath = path
	}
}

// WithHourTitles names hours in markdown and PDF reports.
func WithHourTitles(title func(hourID string) string) Option {
	return func(e *Exporter) {
		e.hourTitle = title
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

func NewExporter(store *review.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:     store,
		hourTitle: func(string) string { return "" },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render returns the corrections of hourID, or of every hour when hourID is
// empty, in format.
func (e *Exporter) Render(format Format, hourID string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return e.renderJSON(hourID)
	case FormatYAML:
		data, err := e.renderJSON(hourID)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json2yaml.Convert(&buf, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("json2yaml.Convert > %w", err)
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		return e.renderMarkdown(hourID)
	case FormatPDF:
		dir, err := os.MkdirTemp("", "sigmareview-report-*")
		if err != nil {
			return nil, fmt.Errorf("os.MkdirTemp > %w", err)
		}
		defer func() {
			_ = os.RemoveAll(dir)
		}()
		path, err := e.writePDF(filepath.Join(dir, FileName(hourID, FormatPDF, e.now())), hourID)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile writes the export into directory under FileName and returns the
// written path.
func (e *Exporter) WriteFile(directory string, format Format, hourID string) (string, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", directory, err)
	}
	path := filepath.Join(directory, FileName(hourID, format, e.now()))

	if format == FormatPDF {
		return e.writePDF(path, hourID)
	}
	data, err := e.Render(format, hourID)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return path, nil
}

func (e *Exporter) renderJSON(hourID string) ([]byte, error) {
	if hourID == "" {
		return e.store.ExportAll()
	}
	return e.store.ExportForHour(hourID)
}

func (e *Exporter) writePDF(path, hourID string) (string, error) {
	markdown, err := e.renderMarkdown(hourID)
	if err != nil {
		return "", err
	}
	written, err := pdf.WriteMarkdown(markdown, path)
	if err != nil {
		return "", fmt.Errorf("pdf.WriteMarkdown > %w", err)
	}
	return written, nil
}

func (e *Exporter) renderMarkdown(hourID string) ([]byte, error) {
	var corrections []review.Correction
	title := "Corrections"
	if hourID == "" {
		corrections = e.store.Corrections()
	} else {
		corrections = e.store.CorrectionsForHour(hourID)
		title = fmt.Sprintf("Hour %s corrections", hourID)
	}

	var buf bytes.Buffer
	if err := assets.WriteReport(&buf, e.templatePath, assets.ReportTemplate{
		Title:       title,
		GeneratedAt: e.now(),
		Total:       len(corrections),
		Hours:       e.groupByHour(corrections),
	}); err != nil {
		return nil, fmt.Errorf("assets.WriteReport > %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) groupByHour(corrections []review.Correction) []assets.ReportHour {
	groups := lo.GroupBy(corrections, func(c review.Correction) string {
		return c.HourID
	})
	hourIDs := lo.Uniq(lo.Map(corrections, func(c review.Correction, _ int) string {
		return c.HourID
	}))
	sort.SliceStable(hourIDs, func(i, j int) bool {
		return hourLess(hourIDs[i], hourIDs[j])
	})

	hours := make([]assets.ReportHour, 0, len(hourIDs))
	for _, hourID := range hourIDs {
		hours = append(hours, assets.ReportHour{
			HourID: hourID,
			Title:  e.hourTitle(hourID),
			Corrections: lo.Map(groups[hourID], func(c review.Correction, _ int) assets.ReportCorrection {
				return assets.ReportCorrection{
					ID:        c.ID,
					BlockID:   c.BlockID,
					AssetType: string(c.AssetType),
					AssetName: c.AssetName,
					Issue:     c.Issue,
					Priority:  string(c.Priority),
					Status:    string(c.Status),
					CreatedAt: c.CreatedAt,
					CreatedBy: c.CreatedBy,
				}
			}),
		})
	}
	return hours
}

// hourLess orders numbered hours numerically before any other hour ids.
func hourLess(a, b string) bool {
	na, okA := content.HourNumber(a)
	nb, okB := content.HourNumber(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}
