package repositories

import (
	"context"
	"math"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type CharacterStats struct {
	Series    string
	Character string
	Edition   *int

	Generated     int
	Claimed       int
	Burned        int
	InCirculation int
	ClaimRate     float64 // percent
	// AvgClaimTime is nil when no claim delay was ever recorded.
	AvgClaimTime *float64
	// CirculationByRarity counts owned cards per rarity.
	CirculationByRarity map[int]int
}

type aggregate struct {
	Total    int     `bun:"total"`
	Claimed  int     `bun:"claimed"`
	DelaySum float64 `bun:"delay_sum"`
	DelayN   int     `bun:"delay_n"`
}

func (r *cardRepository) aggregate(ctx context.Context, model interface{}, series, character string, edition *int) (aggregate, error) {
	var agg aggregate
	q := r.db.NewSelect().
		Model(model).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COALESCE(SUM(CASE WHEN grabbed_by IS NOT NULL THEN 1 ELSE 0 END), 0) AS claimed").
		ColumnExpr("COALESCE(SUM(grab_delay), 0) AS delay_sum").
		ColumnExpr("COUNT(grab_delay) AS delay_n").
		Where("series = ?", series).
		Where("character_name = ?", character)
	if edition != nil {
		q = q.Where("edition = ?", *edition)
	}
	err := q.Scan(ctx, &agg)
	return agg, err
}

// CharacterStats combines live cards with the burn archive.
func (r *cardRepository) CharacterStats(ctx context.Context, series, character string, edition *int) (*CharacterStats, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	live, err := r.aggregate(ctx, (*models.Card)(nil), series, character, edition)
	if err != nil {
		return nil, r.HandleError("stats", "card", err)
	}
	burned, err := r.aggregate(ctx, (*models.Burn)(nil), series, character, edition)
	if err != nil {
		return nil, r.HandleError("stats", "burn", err)
	}

	var rows []struct {
		Rarity int `bun:"rarity"`
		N      int `bun:"n"`
	}
	q := r.db.NewSelect().
		Model((*models.Card)(nil)).
		ColumnExpr("rarity").
		ColumnExpr("COUNT(*) AS n").
		Where("series = ?", series).
		Where("character_name = ?", character).
		Where("owned_by IS NOT NULL").
		GroupExpr("rarity")
	if edition != nil {
		q = q.Where("edition = ?", *edition)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, r.HandleError("stats", "card", err)
	}

	stats := &CharacterStats{
		Series:              series,
		Character:           character,
		Edition:             edition,
		Generated:           live.Total + burned.Total,
		Claimed:             live.Claimed + burned.Claimed,
		Burned:              burned.Total,
		CirculationByRarity: make(map[int]int, len(rows)),
	}
	for _, row := range rows {
		stats.CirculationByRarity[row.Rarity] = row.N
		stats.InCirculation += row.N
	}
	if stats.Generated > 0 {
		stats.ClaimRate = float64(stats.Claimed) / float64(stats.Generated) * 100
	}
	if n := live.DelayN + burned.DelayN; n > 0 {
		avg := math.Round((live.DelaySum+burned.DelaySum)/float64(n)*100) / 100
		stats.AvgClaimTime = &avg
	}
	return stats, nil
}
