package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/sigmareview/internal/bootstrap"
	"github.com/at-ishikawa/sigmareview/internal/datasync"
	"github.com/at-ishikawa/sigmareview/internal/report"
)

func newExportCommand() *cobra.Command {
	var hourID string
	var outputDir string
	var toStdout bool
	format := report.FormatJSON

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export corrections as json, yaml, markdown or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if toStdout && format == report.FormatPDF {
				return fmt.Errorf("pdf export cannot be written to stdout")
			}
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				w := cmd.OutOrStdout()
				if toStdout {
					data, err := s.Exporter.Render(format, hourID)
					if err != nil {
						return fmt.Errorf("Render() > %w", err)
					}
					_, _ = w.Write(data)
					return nil
				}

				dir := outputDir
				if dir == "" {
					dir = s.Config.Outputs.ExportDirectory
				}
				path, err := s.Exporter.WriteFile(dir, format, hourID)
				if err != nil {
					return fmt.Errorf("WriteFile() > %w", err)
				}
				_, _ = fmt.Fprintf(w, "Exported to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&hourID, "hour", "", "Only export corrections of this hour")
	cmd.Flags().Var(formatValue{target: &format}, "format", "Export format: json, yaml, markdown or pdf")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to write the export to (default outputs.export_directory)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the export instead of writing a file")
	return cmd
}

func newImportCommand() *cobra.Command {
	var opts datasync.ImportOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a corrections export (.json, .yaml or .yml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				w := cmd.OutOrStdout()
				result, err := datasync.NewImporter(s.Store, w).ImportFile(cmd.Context(), args[0], opts)
				if err != nil {
					return fmt.Errorf("ImportFile() > %w", err)
				}
				suffix := ""
				if opts.DryRun {
					suffix = " (dry run)"
				}
				_, _ = fmt.Fprintf(w, "Imported: %d new, %d updated, %d skipped%s\n",
					result.New, result.Updated, result.Skipped, suffix)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "Overwrite corrections whose id already exists")
	return cmd
}
