package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/sigmareview/internal/bootstrap"
	"github.com/at-ishikawa/sigmareview/internal/review"
)

func newPrefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show reviewer preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				p := s.Store.Preferences()
				backend := p.BackendURL
				if backend == "" {
					backend = "-"
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Preference", "Value"},
					[][]string{
						{review.GridSizeKey.Name(), string(p.GridSize)},
						{review.DarkModeKey.Name(), strconv.FormatBool(p.DarkMode)},
						{review.BackendURLKey.Name(), backend},
					},
					nil,
				))
				return nil
			})
		},
	}
	cmd.AddCommand(newPrefsSetCommand())
	return cmd
}

func newPrefsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one preference (" + strings.Join(review.PreferenceNames, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return withServices(cmd.Context(), func(s *bootstrap.Services) error {
				if err := s.Store.SetPreferenceByName(cmd.Context(), key, value); err != nil {
					if errors.Is(err, review.ErrUnknownPreference) {
						return fmt.Errorf("unknown preference %q, expected one of %s", key, strings.Join(review.PreferenceNames, ", "))
					}
					return fmt.Errorf("SetPreferenceByName() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)
				return nil
			})
		},
	}
}
