package main

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy/drops"
)

var (
	editionCount   int
	editionWeights string
)

var editionsCmd = &cobra.Command{
	Use:   "editions",
	Short: "show or set the edition count and weights used by drops",
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

		meta := repositories.NewMetaRepository(db.BunDB())
		countSet := cmd.Flags().Changed("count")
		weightsSet := cmd.Flags().Changed("weights")

		if countSet || weightsSet {
			current, err := drops.LoadEditions(ctx, meta)
			if err != nil {
				return err
			}
			rawCount := strconv.Itoa(current.Count)
			if countSet {
				rawCount = strconv.Itoa(editionCount)
			}
			rawWeights := editionWeights
			if !weightsSet {
				kept, err := json.Marshal(current.Weights)
				if err != nil {
					return err
				}
				rawWeights = string(kept)
			}
			next := drops.NormalizeEditions(rawCount, true, rawWeights, true)
			if err := drops.SaveEditions(ctx, meta, next.Count, next.Weights); err != nil {
				return err
			}
		}

		editions, err := drops.LoadEditions(ctx, meta)
		if err != nil {
			return err
		}
		slog.Info("Editions",
			slog.String("type", "economy"),
			slog.Int("count", editions.Count),
			slog.Any("weights", editions.Weights))
		return nil
	},
}

func init() {
	editionsCmd.Flags().IntVar(&editionCount, "count", 0, "number of editions")
	editionsCmd.Flags().StringVar(&editionWeights, "weights", "", "JSON array of edition weights, e.g. [1,2,3]")
	rootCmd.AddCommand(editionsCmd)
}
