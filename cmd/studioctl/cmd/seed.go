package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/studio-atelier/site-backend/internal/seed"
)

var (
	seedFile  string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo content",
	Long: `Load demo projects and content through the same services the admin API uses,
so slugs and validation behave identically.

By default the built-in demo data is used and nothing happens when projects
already exist.

Examples:
  studioctl seed
  studioctl seed --file content.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadSeed()
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		res, err := seed.NewSeeder(a.services.Projects, a.services.Content).Run(cmd.Context(), data, seedForce)
		if errors.Is(err, seed.ErrAlreadySeeded) {
			fmt.Fprintln(cmd.OutOrStdout(), "projects already exist, use --force to seed anyway")
			return nil
		}
		printCounts(cmd, res)
		return err
	},
}

func loadSeed() (*seed.Data, error) {
	if seedFile == "" {
		return seed.Demo()
	}
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return seed.Parse(raw)
}

func printCounts(cmd *cobra.Command, res seed.Result) {
	names := make([]string, 0, len(res))
	for name := range res {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", name, res[name])
	}
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (default: built-in demo data)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when projects exist")
	rootCmd.AddCommand(seedCmd)
}
