package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type MetaRepository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type metaRepository struct {
	*BaseRepository
}

func NewMetaRepository(db *bun.DB) MetaRepository {
	return &metaRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *metaRepository) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	meta := new(models.Meta)
	if err := r.db.NewSelect().Model(meta).Where("key = ?", key).Scan(ctx); err != nil {
		err = r.HandleErrorWithID("get", "meta", key, err)
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return meta.Value, true, nil
}

func (r *metaRepository) Set(ctx context.Context, key, value string) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.NewInsert().
		Model(&models.Meta{Key: key, Value: value}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return r.HandleErrorWithID("set", "meta", key, err)
}
