// Package cmd contains the studioctl commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/studio-atelier/site-backend/config"
	"github.com/studio-atelier/site-backend/internal/bootstrap"
	"github.com/studio-atelier/site-backend/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "studioctl",
	Short: "Studio site maintenance tool",
	Long: `studioctl runs maintenance tasks against the studio site database and cache.

Configuration is read from the environment (and .env) exactly like the API.

Examples:
  # Apply pending migrations
  studioctl migrate

  # Load the demo content into an empty database
  studioctl seed

  # See which slug a new project would get
  studioctl slug preview "Sky Garden"

  # Refresh every public listing in Redis
  studioctl cache warm`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// app bundles what the commands need; close releases it.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	redis    *redis.Client
	services *bootstrap.Services
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}

func openApp(ctx context.Context, withRedis bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logging.Init("studioctl", cfg.App.Environment, level)

	db, err := bootstrap.OpenDB(ctx, &cfg.Database, false)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db}
	if withRedis {
		a.redis = bootstrap.OpenRedis(ctx, &cfg.Redis)
	}
	a.services = bootstrap.NewServices(cfg, db, a.redis)
	return a, nil
}

func printVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
