package repositories

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type CatalogRepository interface {
	// Random picks one character uniformly. It returns NotFoundError when the
	// catalog is empty.
	Random(ctx context.Context) (*models.CatalogCharacter, error)
	Add(ctx context.Context, series, name string) (bool, error)
	All(ctx context.Context) ([]*models.CatalogCharacter, error)
	Search(ctx context.Context, query string, limit int) ([]*models.CatalogCharacter, error)
}

type catalogRepository struct {
	*BaseRepository
}

func NewCatalogRepository(db *bun.DB) CatalogRepository {
	return &catalogRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *catalogRepository) Random(ctx context.Context) (*models.CatalogCharacter, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	character := new(models.CatalogCharacter)
	err := r.db.NewSelect().Model(character).OrderExpr("RANDOM()").Limit(1).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("random", "catalog_character", "any", err)
	}
	return character, nil
}

func (r *catalogRepository) Add(ctx context.Context, series, name string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	series, name = strings.TrimSpace(series), strings.TrimSpace(name)
	res, err := r.db.NewInsert().
		Model(&models.CatalogCharacter{Series: series, Name: name}).
		On("CONFLICT (series, name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("add", "catalog_character", series+"/"+name, err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *catalogRepository) All(ctx context.Context) ([]*models.CatalogCharacter, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var characters []*models.CatalogCharacter
	if err := r.db.NewSelect().Model(&characters).OrderExpr("series ASC, name ASC").Scan(ctx); err != nil {
		err = r.HandleError("all", "catalog_character", err)
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return characters, nil
}

// catalogSource adapts catalog rows to fuzzy.Source, matching on "series name".
type catalogSource []*models.CatalogCharacter

func (s catalogSource) String(i int) string {
	return strings.ToLower(s[i].Series + " " + s[i].Name)
}

func (s catalogSource) Len() int {
	return len(s)
}

// Search ranks catalog characters against a free-text query. An exact
// character name match is always ranked first.
func (r *catalogRepository) Search(ctx context.Context, query string, limit int) ([]*models.CatalogCharacter, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(all) == 0 {
		return nil, nil
	}

	var results []*models.CatalogCharacter
	seen := make(map[int64]bool)
	for _, c := range all {
		if strings.ToLower(c.Name) == query {
			results = append(results, c)
			seen[c.ID] = true
		}
	}
	for _, m := range fuzzy.FindFrom(query, catalogSource(all)) {
		c := all[m.Index]
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		results = append(results, c)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
