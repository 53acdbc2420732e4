package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Public listing cache commands",
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Reload every public listing into Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		w := a.services.Warmer()
		for _, k := range w.Keys() {
			printVerbose("warming %s", k)
		}
		n, err := w.Run(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d/%d keys\n", n, len(w.Keys()))
		return err
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [prefix]",
	Short: "Delete cached listings",
	Long: `Delete cached listings whose key starts with prefix (all when omitted).

Examples:
  studioctl cache clear
  studioctl cache clear content:awards:`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		if a.services.Cache == nil {
			return errors.New("cache is not configured")
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		n, err := a.services.Cache.InvalidatePrefix(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d keys\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheWarmCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
