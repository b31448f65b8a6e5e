package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/sigmareview/internal/bootstrap"
	"github.com/at-ishikawa/sigmareview/internal/review"
)

func newCorrectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage reviewer corrections",
	}
	cmd.AddCommand(
		newCorrectionsListCommand(),
		newCorrectionsAddCommand(),
		newCorrectionsUpsertCommand(),
		newCorrectionsUpdateCommand(),
		newCorrectionsDeleteCommand(),
	)
	return cmd
}

func newCorrectionsListCommand() *cobra.Command {
	var blockID string
	var hourID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List corrections, optionally for one block or hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				var corrections []review.Correction
				switch {
				case blockID != "":
					corrections = s.Store.CorrectionsForBlock(blockID)
				case hourID != "":
					corrections = s.Store.CorrectionsForHour(hourID)
				default:
					corrections = s.Store.Corrections()
				}
				writeCorrections(cmd.OutOrStdout(), corrections)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&blockID, "block", "", "Only corrections of this block")
	cmd.Flags().StringVar(&hourID, "hour", "", "Only corrections of this hour")
	return cmd
}

func writeCorrections(w io.Writer, corrections []review.Correction) {
	if len(corrections) == 0 {
		_, _ = fmt.Fprintln(w, "No corrections found.")
		return
	}
	p := newPalette(w)
	rows := make([][]string, 0, len(corrections))
	for _, c := range corrections {
		rows = append(rows, []string{
			c.ID,
			c.BlockID,
			c.HourID,
			c.AssetName,
			string(c.AssetType),
			p.priority(c.Priority),
			p.correctionStatus(c.Status),
			c.Issue,
			relativeTime(c.CreatedAt),
		})
	}
	_, _ = fmt.Fprintln(w, renderTable(
		[]string{"ID", "Block", "Hour", "Asset", "Type", "Priority", "Status", "Issue", "Created"},
		rows,
		nil,
	))
}

func newCorrectionsAddCommand() *cobra.Command {
	var in review.CorrectionInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new correction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				c, err := s.Store.AddCorrection(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("AddCorrection() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added correction %s\n", c.ID)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.BlockID, "block", "", "Block the correction belongs to")
	flags.StringVar(&in.HourID, "hour", "", "Hour of the block")
	flags.Var(assetTypeFlag(&in.AssetType), "asset-type", "Kind of asset")
	flags.StringVar(&in.AssetName, "asset-name", "", "Asset within the block, such as slide_a")
	flags.StringVar(&in.Issue, "issue", "", "What is wrong")
	flags.Var(priorityFlag(&in.Priority), "priority", "Priority")
	flags.Var(statusFlag(&in.Status), "status", "Status")
	flags.StringVar(&in.CreatedBy, "created-by", "", "Reviewer name")
	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("asset-type")
	_ = cmd.MarkFlagRequired("asset-name")
	return cmd
}

// patchFlags holds the optional fields shared by upsert and update.
type patchFlags struct {
	assetType *enumValue[review.AssetType]
	priority  *enumValue[review.Priority]
	status    *enumValue[review.Status]
}

func addPatchFlags(cmd *cobra.Command) *patchFlags {
	var assetType review.AssetType
	var priority review.Priority
	var status review.Status
	pf := &patchFlags{
		assetType: assetTypeFlag(&assetType),
		priority:  priorityFlag(&priority),
		status:    statusFlag(&status),
	}
	flags := cmd.Flags()
	flags.String("hour", "", "Hour of the block")
	flags.Var(pf.assetType, "asset-type", "Kind of asset")
	flags.String("asset-name", "", "Asset within the block")
	flags.String("issue", "", "What is wrong")
	flags.Var(pf.priority, "priority", "Priority")
	flags.Var(pf.status, "status", "Status")
	flags.String("created-by", "", "Reviewer name")
	return pf
}

func (pf *patchFlags) patch(cmd *cobra.Command) review.CorrectionPatch {
	flags := cmd.Flags()
	return review.CorrectionPatch{
		HourID:    stringFlag(flags, "hour"),
		AssetType: pf.assetType.ptr(),
		AssetName: stringFlag(flags, "asset-name"),
		Issue:     stringFlag(flags, "issue"),
		Priority:  pf.priority.ptr(),
		Status:    pf.status.ptr(),
		CreatedBy: stringFlag(flags, "created-by"),
	}
}

func newCorrectionsUpsertCommand() *cobra.Command {
	var pf *patchFlags

	cmd := &cobra.Command{
		Use:   "upsert <block-id>",
		Short: "Create or update the block-level note of a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				c, err := s.Store.UpsertCorrectionForBlock(cmd.Context(), args[0], pf.patch(cmd))
				if err != nil {
					return fmt.Errorf("UpsertCorrectionForBlock() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved correction %s for block %s\n", c.ID, c.BlockID)
				return nil
			})
		},
	}
	pf = addPatchFlags(cmd)
	return cmd
}

func newCorrectionsUpdateCommand() *cobra.Command {
	var pf *patchFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				if _, ok := s.Store.Correction(id); !ok {
					return fmt.Errorf("correction %s not found", id)
				}
				if err := s.Store.UpdateCorrectionByID(cmd.Context(), id, pf.patch(cmd)); err != nil {
					return fmt.Errorf("UpdateCorrectionByID() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated correction %s\n", id)
				return nil
			})
		},
	}
	pf = addPatchFlags(cmd)
	return cmd
}

func newCorrectionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				if _, ok := s.Store.Correction(id); !ok {
					return fmt.Errorf("correction %s not found", id)
				}
				if err := s.Store.DeleteCorrectionByID(cmd.Context(), id); err != nil {
					return fmt.Errorf("DeleteCorrectionByID() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted correction %s\n", id)
				return nil
			})
		},
	}
}

func newFeedbackCommand() *cobra.Command {
	var action review.FeedbackAction
	var hourID string
	var note string

	cmd := &cobra.Command{
		Use:   "feedback <block-id> <atom-id>",
		Short: "Record a verdict for one atom of a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := review.FeedbackCorrection(args[0], hourID, args[1], action, note)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				c, err := s.Store.AddCorrection(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("AddCorrection() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s (correction %s)\n", action, c.AssetName, c.ID)
				return nil
			})
		},
	}
	cmd.Flags().Var(feedbackActionFlag(&action), "action", "Verdict for the atom")
	cmd.Flags().StringVar(&hourID, "hour", "", "Hour of the block")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}
