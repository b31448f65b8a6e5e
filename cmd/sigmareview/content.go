package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/sigmareview/internal/assetaudit"
	"github.com/at-ishikawa/sigmareview/internal/bootstrap"
	"github.com/at-ishikawa/sigmareview/internal/content"
	"github.com/at-ishikawa/sigmareview/internal/review"
	"github.com/at-ishikawa/sigmareview/internal/statistics"
)

func newManifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "List every block reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				refs := s.Resolver.FetchManifest(cmd.Context())
				w := cmd.OutOrStdout()
				if len(refs) == 0 {
					_, _ = fmt.Fprintln(w, "No blocks found.")
					return nil
				}
				for _, ref := range refs {
					_, _ = fmt.Fprintln(w, ref)
				}
				return nil
			})
		},
	}
}

func newOverviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show review progress per hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				hours := make([]statistics.Hour, 0, len(s.Config.Hours))
				for _, h := range s.Config.Hours {
					hours = append(hours, statistics.Hour{ID: h.ID, Title: h.Title})
				}
				overview := statistics.CalculateOverview(hours, s.Resolver.FetchManifest(cmd.Context()), s.Store.Corrections())
				writeOverview(cmd.OutOrStdout(), overview)
				return nil
			})
		},
	}
}

func writeOverview(w io.Writer, overview statistics.Overview) {
	rows := make([][]string, 0, len(overview.Hours))
	for _, h := range overview.Hours {
		rows = append(rows, []string{
			strconv.Itoa(h.HourID),
			h.Title,
			strconv.Itoa(h.TotalBlocks),
			strconv.Itoa(h.Reviewed),
			strconv.Itoa(h.Pending),
			strconv.Itoa(h.Corrections),
			fmt.Sprintf("%d%%", h.ReviewedPercent()),
		})
	}
	_, _ = fmt.Fprintln(w, renderTable(
		[]string{"Hour", "Title", "Blocks", "Reviewed", "Pending", "Corrections", "Progress"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	_, _ = fmt.Fprintf(w, "Total: %d blocks, %d reviewed, %d pending, %d correction records\n",
		overview.TotalBlocks, overview.TotalReviewed, overview.TotalPending, overview.TotalCorrections)
}

func newHourCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hour <hour>",
		Short: "List the blocks of one hour with their review status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour := args[0]
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				w := cmd.OutOrStdout()
				refs := s.Resolver.HourManifest(cmd.Context(), hour)
				if len(refs) == 0 {
					_, _ = fmt.Fprintf(w, "No blocks found for hour %s.\n", hour)
					return nil
				}

				p := newPalette(w)
				if n, ok := content.HourNumber(hour); ok {
					if title := s.Config.HourTitle(n); title != "" {
						_, _ = fmt.Fprintln(w, p.bold.Sprintf("Hour %d: %s", n, title))
					}
				}
				rows := make([][]string, 0, len(refs))
				for _, ref := range refs {
					blockID := content.BlockIDFromReference(ref)
					corrections := s.Store.CorrectionsForBlock(blockID)
					rows = append(rows, []string{
						blockID,
						ref,
						p.blockStatus(statistics.StatusOf(corrections)),
						strconv.Itoa(len(corrections)),
					})
				}
				_, _ = fmt.Fprintln(w, renderTable(
					[]string{"Block", "Reference", "Status", "Corrections"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newShowCommand() *cobra.Command {
	var checkAssets bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <block-id>",
		Short: "Show one block as reviewers see it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blockID := args[0]
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				block, ref, ok := s.Resolver.LoadReviewBlockByID(cmd.Context(), blockID)
				if !ok {
					return fmt.Errorf("block %s not found", blockID)
				}
				missing := 0
				if checkAssets {
					missing = s.Checker.CheckReviewBlock(cmd.Context(), block)
				}

				w := cmd.OutOrStdout()
				if asJSON {
					data, err := review.MarshalIndent(block)
					if err != nil {
						return fmt.Errorf("review.MarshalIndent() > %w", err)
					}
					_, _ = fmt.Fprintln(w, string(data))
					return nil
				}
				writeBlock(w, ref, block, s.Store.CorrectionsForBlock(block.BlockID))
				if checkAssets {
					_, _ = fmt.Fprintf(w, "Missing assets: %d\n", missing)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&checkAssets, "check-assets", false, "Check slide images and audio, substituting a placeholder for missing ones")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the block as JSON")
	return cmd
}

func writeBlock(w io.Writer, ref string, block *content.ReviewBlock, corrections []review.Correction) {
	p := newPalette(w)
	_, _ = fmt.Fprintln(w, p.bold.Sprint(block.Title))
	_, _ = fmt.Fprintf(w, "Reference: %s\n", ref)
	_, _ = fmt.Fprintf(w, "Block: %s  Hour: %s  Type: %s  Duration: %d min\n",
		block.BlockID, block.HourID, block.AtomType, block.DurationMinutes)
	if block.LessonTitle != "" {
		_, _ = fmt.Fprintf(w, "Lesson: %s\n", block.LessonTitle)
	}
	if block.Citation != "" {
		_, _ = fmt.Fprintf(w, "Citation: %s\n", block.Citation)
	}

	if len(block.Slides) > 0 {
		rows := make([][]string, 0, len(block.Slides))
		for i, slide := range block.Slides {
			rows = append(rows, []string{strconv.Itoa(i + 1), slide.AtomID, slide.Description, slide.ImageURL})
		}
		_, _ = fmt.Fprintln(w, renderTable([]string{"#", "Atom", "Description", "Image"}, rows,
			[]columnAlignment{alignRight}))
	}
	if block.Audio != "" {
		_, _ = fmt.Fprintf(w, "Audio: %s\n", block.Audio)
	}
	if block.Quiz != nil {
		_, _ = fmt.Fprintf(w, "Quiz: %s (%d questions)\n", block.Quiz.QuizType, len(block.Quiz.Questions))
	}
	if block.AudioScript != "" {
		_, _ = fmt.Fprintf(w, "\nScript:\n%s\n", block.AudioScript)
	}

	_, _ = fmt.Fprintf(w, "\nCorrections (%d)\n", len(corrections))
	for _, c := range corrections {
		_, _ = fmt.Fprintf(w, "  - [%s] %s/%s: %s\n", p.correctionStatus(c.Status), c.AssetType, c.AssetName, c.Issue)
	}
}

func newCheckAssetsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check-assets <block-id>...",
		Short: "Check the assets of blocks and report missing ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				for _, blockID := range args {
					block, _, ok := s.Resolver.LoadReviewBlockByID(cmd.Context(), blockID)
					if !ok {
						return fmt.Errorf("block %s not found", blockID)
					}
					s.Checker.CheckReviewBlock(cmd.Context(), block)
				}

				w := cmd.OutOrStdout()
				writeAuditEntries(w, s.Audit.Entries())
				if output == "" {
					return nil
				}
				data, err := s.Audit.Export()
				if err != nil {
					return fmt.Errorf("audit.Export() > %w", err)
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("os.WriteFile(%s) > %w", output, err)
				}
				_, _ = fmt.Fprintf(w, "Wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the asset error log as JSON to this file")
	return cmd
}

func writeAuditEntries(w io.Writer, entries []assetaudit.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No asset errors recorded.")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{string(e.Type), e.AssetID, e.AssetPath, strings.TrimSpace(e.Message)})
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"Type", "Asset", "Path", "Message"}, rows, nil))
}
