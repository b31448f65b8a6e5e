package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/at-ishikawa/sigmareview/internal/bootstrap"
	"github.com/at-ishikawa/sigmareview/internal/config"
	"github.com/at-ishikawa/sigmareview/internal/review"
	"github.com/at-ishikawa/sigmareview/internal/statistics"
)

// now is replaced in tests.
var now = time.Now

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func openServices(ctx context.Context) (*bootstrap.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loadConfig() > %w", err)
	}
	services, err := bootstrap.NewServices(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap.NewServices() > %w", err)
	}
	return services, nil
}

// withServices opens the services for one command and closes them afterwards.
func withServices(ctx context.Context, fn func(s *bootstrap.Services) error) (err error) {
	services, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := services.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("services.Close() > %w", closeErr)
		}
	}()
	return fn(services)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// palette colours status words when writing to a terminal.
type palette struct {
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	bold   *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	if !shouldColorize(w) {
		for _, c := range []*color.Color{p.green, p.yellow, p.red, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) blockStatus(s statistics.BlockStatus) string {
	switch s {
	case statistics.BlockStatusReviewed:
		return p.green.Sprint(s)
	case statistics.BlockStatusCorrections:
		return p.red.Sprint(s)
	default:
		return p.yellow.Sprint(s)
	}
}

func (p palette) correctionStatus(s review.Status) string {
	if s == review.StatusFixed {
		return p.green.Sprint(s)
	}
	return p.yellow.Sprint(s)
}

func (p palette) priority(pr review.Priority) string {
	switch pr {
	case review.PriorityHigh:
		return p.red.Sprint(pr)
	case "":
		return "-"
	default:
		return string(pr)
	}
}

func relativeTime(t time.Time) string {
	return humanize.RelTime(t, now(), "ago", "from now")
}
