package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studio-atelier/site-backend/internal/slug"
)

var (
	slugCandidate string
	slugExcludeID int64
	slugOffline   bool
)

var slugCmd = &cobra.Command{
	Use:   "slug",
	Short: "Slug utilities",
}

var slugPreviewCmd = &cobra.Command{
	Use:   "preview <name>",
	Short: "Show the slug a project would receive",
	Long: `Show the slug a project with the given name would receive, taking existing
projects into account. --offline only normalises the text.

Examples:
  studioctl slug preview "Sky Garden"
  studioctl slug preview "Sky Garden" --slug garden --exclude-id 4
  studioctl slug preview --offline "Café Müller"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")

		if slugOffline {
			base := slugCandidate
			if base == "" {
				base = name
			}
			s := slug.Slugify(base)
			if s == "" {
				return fmt.Errorf("%q has no usable characters", base)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		s, err := a.services.Projects.PreviewSlug(cmd.Context(), name, slugCandidate, slugExcludeID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	slugPreviewCmd.Flags().StringVar(&slugCandidate, "slug", "", "requested slug instead of the name")
	slugPreviewCmd.Flags().Int64Var(&slugExcludeID, "exclude-id", 0, "project id to ignore (when renaming)")
	slugPreviewCmd.Flags().BoolVar(&slugOffline, "offline", false, "normalise only, without checking the database")
	slugCmd.AddCommand(slugPreviewCmd)
	rootCmd.AddCommand(slugCmd)
}
