package repositories

import (
	"context"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type GuildSettingsRepository interface {
	// Get never fails for an unknown guild; it returns empty settings.
	Get(ctx context.Context, guildID string) (*models.GuildSettings, error)
	SetDropChannel(ctx context.Context, guildID string, channelID *string) error
	SetDropCooldown(ctx context.Context, guildID string, seconds *int) error
}

type guildSettingsRepository struct {
	*BaseRepository
	cache *lru.Cache
}

func NewGuildSettingsRepository(db *bun.DB) GuildSettingsRepository {
	cache, err := lru.New(config.GuildSettingsCacheSize)
	if err != nil {
		slog.Error("Failed to create guild settings cache", slog.Any("error", err))
	}
	return &guildSettingsRepository{BaseRepository: NewBaseRepository(db), cache: cache}
}

func (r *guildSettingsRepository) Get(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(guildID); ok {
			s := *v.(*models.GuildSettings)
			return &s, nil
		}
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	settings := new(models.GuildSettings)
	err := r.db.NewSelect().Model(settings).Where("guild_id = ?", guildID).Scan(ctx)
	if err != nil {
		err = r.HandleErrorWithID("get", "guild_settings", guildID, err)
		if !IsNotFound(err) {
			return nil, err
		}
		settings = &models.GuildSettings{GuildID: guildID}
	}

	if r.cache != nil {
		cached := *settings
		r.cache.Add(guildID, &cached)
	}
	return settings, nil
}

func (r *guildSettingsRepository) SetDropChannel(ctx context.Context, guildID string, channelID *string) error {
	return r.update(ctx, guildID, func(s *models.GuildSettings) { s.DropChannelID = channelID })
}

func (r *guildSettingsRepository) SetDropCooldown(ctx context.Context, guildID string, seconds *int) error {
	return r.update(ctx, guildID, func(s *models.GuildSettings) { s.DropCooldownS = seconds })
}

func (r *guildSettingsRepository) update(ctx context.Context, guildID string, mutate func(*models.GuildSettings)) error {
	if r.cache != nil {
		r.cache.Remove(guildID)
	}
	current, err := r.Get(ctx, guildID)
	if err != nil {
		return err
	}
	mutate(current)

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	_, err = r.db.NewInsert().
		Model(current).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("drop_channel_id = EXCLUDED.drop_channel_id").
		Set("drop_cooldown_s = EXCLUDED.drop_cooldown_s").
		Exec(ctx)
	if r.cache != nil {
		r.cache.Remove(guildID)
	}
	return r.HandleErrorWithID("update", "guild_settings", guildID, err)
}
