package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/studio-atelier/site-backend/config"
	"github.com/studio-atelier/site-backend/internal/storage/postgres"
)

// OpenDB connects to Postgres and, when migrate is set, applies pending migrations.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig, migrate bool) (*sql.DB, error) {
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if !migrate {
		return db, nil
	}

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	if len(applied) > 0 {
		log.Info().Strs("versions", applied).Msg("migrations applied")
	}
	return db, nil
}
