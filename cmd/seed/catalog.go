package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <file.json>",
	Short: "import characters from a {\"series\": [\"character\", ...]} file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		added, skipped, err := importCatalog(ctx, repositories.NewCatalogRepository(db.BunDB()), f)
		if err != nil {
			return err
		}
		slog.Info("Catalog imported",
			slog.String("type", "db"),
			slog.Int("added", added),
			slog.Int("skipped", skipped))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

type catalogAdder interface {
	Add(ctx context.Context, series, name string) (bool, error)
}

// importCatalog adds every character in series order. Characters already in
// the catalog are counted as skipped.
func importCatalog(ctx context.Context, catalog catalogAdder, r io.Reader) (added, skipped int, err error) {
	var data map[string][]string
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, 0, fmt.Errorf("invalid catalog file: %w", err)
	}

	series := make([]string, 0, len(data))
	for s := range data {
		series = append(series, s)
	}
	sort.Strings(series)

	for _, s := range series {
		for _, name := range data[s] {
			ok, err := catalog.Add(ctx, s, name)
			if err != nil {
				return added, skipped, fmt.Errorf("add %s / %s: %w", s, name, err)
			}
			if ok {
				added++
			} else {
				skipped++
			}
		}
	}
	return added, skipped, nil
}
