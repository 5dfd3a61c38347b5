// Command seed loads the character catalog, edition weights and artwork.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "seed the card catalog and drop configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config")
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Seed failed", slog.String("type", "error"), slog.Any("error", err))
		os.Exit(1)
	}
}

func loadConfig() (*menami.Config, error) {
	cfg, err := menami.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDB(ctx context.Context, cfg *menami.Config) (*database.DB, error) {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}
