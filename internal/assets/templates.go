// Package assets holds the embedded report templates.
package assets

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const reportTemplateName = "corrections-report.md.go.tmpl"

//go:embed templates/corrections-report.md.go.tmpl
var fallbackReportTemplate string

// ReportTemplate is the top-level data of the corrections report template.
type ReportTemplate struct {
	Title       string
	GeneratedAt time.Time
	Total       int
	Hours       []ReportHour
}

// ReportHour groups the corrections of one hour.
type ReportHour struct {
	HourID      string
	Title       string
	Corrections []ReportCorrection
}

type ReportCorrection struct {
	ID        string
	BlockID   string
	AssetType string
	AssetName string
	Issue     string
	Priority  string
	Status    string
	CreatedAt time.Time
	CreatedBy string
}

func ParseReportTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, reportTemplateName, fallbackReportTemplate)
}

func WriteReport(output io.Writer, templatePath string, templateData ReportTemplate) error {
	tmpl, err := ParseReportTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("ParseReportTemplate() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

// cellReplacer keeps free text inside one table cell and renders markup
// characters literally.
var cellReplacer = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	"\r\n", " ",
	"\n", " ",
)

func parseTemplateWithFallback(templatePath string, fallbackName string, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"cell": cellReplacer.Replace,
		"date": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 MST")
		},
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			fileName := filepath.Base(templatePath)
			tmpl, err := template.New(fileName).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}
