package cli

import (
	"context"
	"log/slog"

	"crisis-quiz-service/internal/catalog"
	"crisis-quiz-service/internal/config"
	"crisis-quiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the built-in scenario catalog into Postgres. Reseeding
// overwrites existing rows in place.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the scenario catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, slog.Default())
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}
	if err := runMigrations(ctx, cfg, logger); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	scenarios := catalog.Scenarios()
	if err := postgres.SeedScenarios(ctx, pool, scenarios); err != nil {
		return err
	}
	logger.Info("scenarios seeded", "count", len(scenarios))
	return nil
}
