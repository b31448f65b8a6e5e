package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/sigmareview/internal/bootstrap"
	"github.com/at-ishikawa/sigmareview/internal/generator"
)

func newGenerateCommand() *cobra.Command {
	var targets []string
	var allSlides bool
	var force bool

	cmd := &cobra.Command{
		Use:   "generate <block-id>",
		Short: "Ask the backend to regenerate assets of a block",
		Long: `Ask the backend to regenerate assets of a block.

Without --target the whole block is regenerated. --slides targets every
slide of the block (slide_a, slide_b, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blockID := args[0]
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				if allSlides {
					block, _, ok := s.Resolver.LoadReviewBlockByID(cmd.Context(), blockID)
					if !ok {
						return fmt.Errorf("block %s not found", blockID)
					}
					for i := range block.Slides {
						targets = append(targets, generator.SlideTarget(i))
					}
				}

				w := cmd.OutOrStdout()
				p := newPalette(w)
				res, err := s.Generator.Generate(cmd.Context(), blockID, targets, force)
				if err != nil {
					return fmt.Errorf("Generate() > %w", err)
				}
				if res.Log != "" {
					_, _ = fmt.Fprintln(w, strings.TrimRight(res.Log, "\n"))
				}
				if !res.Succeeded() {
					_, _ = fmt.Fprintln(w, p.red.Sprint(res.Message()))
					return fmt.Errorf("generation of block %s failed", blockID)
				}
				_, _ = fmt.Fprintln(w, p.green.Sprint(res.Message()))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&targets, "target", nil, "Asset to regenerate, such as slide_a or audio (repeatable)")
	cmd.Flags().BoolVar(&allSlides, "slides", false, "Regenerate every slide of the block")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even when the asset is up to date")
	return cmd
}

func newPromptCommand() *cobra.Command {
	var assetType string
	var file string
	var text string

	cmd := &cobra.Command{
		Use:   "prompt <block-id>",
		Short: "Overwrite the script or image prompts of a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := text
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("os.ReadFile(%s) > %w", file, err)
				}
				content = string(data)
			}
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				res, err := s.Generator.UpdatePrompt(cmd.Context(), args[0], generator.PromptAsset(assetType), content)
				if err != nil {
					return fmt.Errorf("UpdatePrompt() > %w", err)
				}
				if res.Path != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", res.Path)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s of block %s\n", assetType, args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&assetType, "asset-type", string(generator.PromptAssetScript), "Prompt to overwrite: script or image_prompts")
	cmd.Flags().StringVar(&file, "file", "", "Read the new content from this file")
	cmd.Flags().StringVar(&text, "content", "", "New content")
	cmd.MarkFlagsMutuallyExclusive("file", "content")
	cmd.MarkFlagsOneRequired("file", "content")
	return cmd
}

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the generation backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				w := cmd.OutOrStdout()
				p := newPalette(w)
				res := s.Generator.Health(cmd.Context())
				status := p.green.Sprint(res.Status)
				if res.Status == generator.HealthOffline {
					status = p.red.Sprint(res.Status)
				}
				_, _ = fmt.Fprintf(w, "Backend %s: %s\n", s.Generator.BaseURL(), status)
				if res.Mode != "" {
					_, _ = fmt.Fprintf(w, "Mode: %s\n", res.Mode)
				}
				return nil
			})
		},
	}
}
