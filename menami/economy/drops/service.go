package drops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/cooldown"
	"github.com/KristianLengyel/menami-bot/menami/economy/serial"
)

type CardStore interface {
	Insert(ctx context.Context, card *models.Card) error
	UIDExists(ctx context.Context, uid string) (bool, error)
	Delete(ctx context.Context, idb bun.IDB, uid string) error
}

type UserStore interface {
	Ensure(ctx context.Context, idb bun.IDB, userID string) error
}

type SettingsStore interface {
	Get(ctx context.Context, guildID string) (*models.GuildSettings, error)
}

type Config struct {
	DropSize        int
	ChannelCooldown time.Duration
	UserCooldown    time.Duration
}

type Request struct {
	GuildID   string
	ChannelID string
	UserID    string
}

// Service gates and mints drops. It does not announce them.
type Service struct {
	cfg       Config
	cards     CardStore
	users     UserStore
	settings  SettingsStore
	gate      *cooldown.Gate
	channels  *cooldown.ChannelStore
	allocator *serial.Allocator
	generator *Generator
	newUID    func() (string, error)
}

func NewService(
	cfg Config,
	cards CardStore,
	users UserStore,
	settings SettingsStore,
	gate *cooldown.Gate,
	channels *cooldown.ChannelStore,
	allocator *serial.Allocator,
	generator *Generator,
) *Service {
	if cfg.DropSize <= 0 {
		cfg.DropSize = config.DefaultDropSize
	}
	return &Service{
		cfg:       cfg,
		cards:     cards,
		users:     users,
		settings:  settings,
		gate:      gate,
		channels:  channels,
		allocator: allocator,
		generator: generator,
		newUID:    NewUID,
	}
}

func (s *Service) Config() Config {
	return s.cfg
}

// ChannelCooldown is the drop lock for a guild, honouring its override.
func (s *Service) ChannelCooldown(ctx context.Context, guildID string) time.Duration {
	if guildID == "" {
		return s.cfg.ChannelCooldown
	}
	settings, err := s.settings.Get(ctx, guildID)
	if err != nil {
		slog.Warn("Guild settings unavailable, using default drop cooldown",
			slog.String("type", "economy"),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return s.cfg.ChannelCooldown
	}
	if settings.DropCooldownS != nil && *settings.DropCooldownS >= 0 {
		return time.Duration(*settings.DropCooldownS) * time.Second
	}
	return s.cfg.ChannelCooldown
}

// Drop checks the channel restriction and both cooldowns, then mints the
// cards of one drop. Errors from the gates are *economy.WrongChannelError or
// *economy.CooldownError.
func (s *Service) Drop(ctx context.Context, req Request) ([]*models.Card, error) {
	if req.GuildID != "" {
		settings, err := s.settings.Get(ctx, req.GuildID)
		if err != nil {
			return nil, fmt.Errorf("load guild settings: %w", err)
		}
		if settings.DropChannelID != nil && *settings.DropChannelID != req.ChannelID {
			return nil, &economy.WrongChannelError{Allowed: *settings.DropChannelID}
		}
	}

	if rem, ok := s.channels.TryAcquire(req.ChannelID, s.ChannelCooldown(ctx, req.GuildID)); !ok {
		return nil, &economy.CooldownError{Scope: "channel", Remaining: rem}
	}

	cards, err := s.dropForUser(ctx, req)
	if err != nil {
		s.channels.Release(req.ChannelID)
		return nil, err
	}
	return cards, nil
}

func (s *Service) dropForUser(ctx context.Context, req Request) ([]*models.Card, error) {
	rem, err := s.gate.Remaining(ctx, req.UserID, config.TimerDrop, s.cfg.UserCooldown)
	if err != nil {
		return nil, err
	}
	if rem > 0 {
		return nil, &economy.CooldownError{Scope: "user", Remaining: rem}
	}

	if err := s.users.Ensure(ctx, nil, req.UserID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	droppedAt := s.gate.Now()
	cards := make([]*models.Card, s.cfg.DropSize)
	g, gctx := errgroup.WithContext(ctx)
	for i := range cards {
		g.Go(func() error {
			card, err := s.mint(gctx, req, droppedAt)
			if err != nil {
				return err
			}
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(ctx, cards)
		if errors.Is(err, economy.ErrCapacity) {
			slog.Error("Drop aborted, serial capacity exhausted",
				slog.String("type", "economy"),
				slog.String("channel_id", req.ChannelID),
				slog.Any("error", err))
		}
		return nil, err
	}

	if err := s.gate.Mark(ctx, req.UserID, config.TimerDrop); err != nil {
		return nil, err
	}

	slog.Info("Drop minted",
		slog.String("type", "economy"),
		slog.String("channel_id", req.ChannelID),
		slog.String("user_id", req.UserID),
		slog.Int("cards", len(cards)))
	return cards, nil
}

// discard removes the cards a failed drop already inserted, so an aborted
// drop holds no serials.
func (s *Service) discard(ctx context.Context, cards []*models.Card) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.DefaultQueryTimeout)
	defer cancel()

	for _, card := range cards {
		if card == nil {
			continue
		}
		if err := s.cards.Delete(ctx, nil, card.UID); err != nil {
			slog.Error("Failed to discard card of aborted drop",
				slog.String("type", "economy"),
				slog.String("uid", card.UID),
				slog.Any("error", err))
		}
	}
}

// mint retries on uid and print collisions. Capacity errors are not retried.
func (s *Service) mint(ctx context.Context, req Request, droppedAt time.Time) (*models.Card, error) {
	desc, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}
	key := serial.Key{Series: desc.Series, Character: desc.Character, Edition: desc.Edition}

	for attempt := 0; attempt < config.MaxMintAttempts; attempt++ {
		uid, err := s.freshUID(ctx)
		if err != nil {
			return nil, err
		}
		number, err := s.allocator.Allocate(ctx, key)
		if err != nil {
			return nil, err
		}

		card := &models.Card{
			UID:           uid,
			SerialNumber:  number,
			Rarity:        int(desc.Rarity),
			Edition:       desc.Edition,
			Series:        desc.Series,
			CharacterName: desc.Character,
			Condition:     desc.Condition,
			DroppedAt:     droppedAt,
			DroppedIn:     req.ChannelID,
			DroppedBy:     req.UserID,
		}
		err = s.cards.Insert(ctx, card)
		if err == nil {
			return card, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("insert card: %w", err)
		}
		slog.Debug("Card insert collided, retrying",
			slog.String("type", "economy"),
			slog.String("print_run", key.String()),
			slog.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("mint %s: gave up after %d attempts", key, config.MaxMintAttempts)
}

func (s *Service) freshUID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < config.MaxMintAttempts; attempt++ {
		uid, err := s.newUID()
		if err != nil {
			return "", fmt.Errorf("generate uid: %w", err)
		}
		exists, err := s.cards.UIDExists(ctx, uid)
		if err != nil {
			return "", err
		}
		if !exists {
			return uid, nil
		}
	}
	return "", fmt.Errorf("no free uid after %d attempts", config.MaxMintAttempts)
}
