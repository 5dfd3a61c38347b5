package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type CosmeticsRepository interface {
	// TagCard attaches the owner's tag to a card, creating the tag on first use.
	TagCard(ctx context.Context, userID, tagName, cardUID string) error
	TagsOf(ctx context.Context, userID, cardUID string) ([]string, error)
	SetDye(ctx context.Context, dye *models.CardDye) error
	GetDye(ctx context.Context, cardUID string) (*models.CardDye, error)
}

type cosmeticsRepository struct {
	*BaseRepository
}

func NewCosmeticsRepository(db *bun.DB) CosmeticsRepository {
	return &cosmeticsRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *cosmeticsRepository) TagCard(ctx context.Context, userID, tagName, cardUID string) error {
	tagName = strings.ToLower(strings.TrimSpace(tagName))

	return r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&models.Tag{UserID: userID, Name: tagName, CreatedAt: time.Now().UTC()}).
			On("CONFLICT (user_id, name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return r.HandleErrorWithID("create", "tag", tagName, err)
		}

		tag := new(models.Tag)
		if err := tx.NewSelect().Model(tag).Where("user_id = ?", userID).Where("name = ?", tagName).Scan(ctx); err != nil {
			return r.HandleErrorWithID("get", "tag", tagName, err)
		}

		_, err = tx.NewInsert().
			Model(&models.CardTag{UserID: userID, CardUID: cardUID, TagID: tag.ID}).
			On("CONFLICT (user_id, card_uid) DO UPDATE").
			Set("tag_id = EXCLUDED.tag_id").
			Exec(ctx)
		return r.HandleErrorWithID("tag", "card_tag", cardUID, err)
	})
}

func (r *cosmeticsRepository) TagsOf(ctx context.Context, userID, cardUID string) ([]string, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var names []string
	err := r.db.NewSelect().
		Model((*models.Tag)(nil)).
		Column("t.name").
		Join("JOIN card_tags AS ct ON ct.tag_id = t.id").
		Where("ct.user_id = ?", userID).
		Where("ct.card_uid = ?", cardUID).
		Scan(ctx, &names)
	if err != nil {
		err = r.HandleError("tags_of", "card_tag", err)
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return names, nil
}

// SetDye replaces the card's dye. A zero thickness stores the default width.
func (r *cosmeticsRepository) SetDye(ctx context.Context, dye *models.CardDye) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if dye.Thickness <= 0 {
		dye.Thickness = config.DefaultDyeThickness
	}
	_, err := r.db.NewInsert().
		Model(dye).
		On("CONFLICT (card_uid) DO UPDATE").
		Set("hex = EXCLUDED.hex").
		Set("name = EXCLUDED.name").
		Set("thickness = EXCLUDED.thickness").
		Exec(ctx)
	return r.HandleErrorWithID("set", "card_dye", dye.CardUID, err)
}

// GetDye returns nil without error for an undyed card.
func (r *cosmeticsRepository) GetDye(ctx context.Context, cardUID string) (*models.CardDye, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	dye := new(models.CardDye)
	if err := r.db.NewSelect().Model(dye).Where("card_uid = ?", cardUID).Scan(ctx); err != nil {
		err = r.HandleErrorWithID("get", "card_dye", cardUID, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return dye, nil
}
