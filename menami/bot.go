package menami

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy/burn"
	"github.com/KristianLengyel/menami-bot/menami/economy/claim"
	"github.com/KristianLengyel/menami-bot/menami/economy/cooldown"
	"github.com/KristianLengyel/menami-bot/menami/economy/daily"
	"github.com/KristianLengyel/menami-bot/menami/economy/drops"
	"github.com/KristianLengyel/menami-bot/menami/economy/serial"
	"github.com/KristianLengyel/menami-bot/menami/economy/upgrade"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
	"github.com/KristianLengyel/menami-bot/menami/services"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	CardRepository          repositories.CardRepository
	UserRepository          repositories.UserRepository
	TimerRepository         repositories.TimerRepository
	GuildSettingsRepository repositories.GuildSettingsRepository
	MetaRepository          repositories.MetaRepository
	CatalogRepository       repositories.CatalogRepository
	CosmeticsRepository     repositories.CosmeticsRepository

	Gate             *cooldown.Gate
	ChannelCooldowns *cooldown.ChannelStore
	DropService      *drops.Service
	Sessions         *claim.SessionManager
	BurnManager      *burn.Manager
	UpgradeManager   *upgrade.Manager
	DailyService     *daily.Service

	SpacesService *services.SpacesService
	Renderer      services.Renderer
}

// InitServices builds repositories and economy services on top of DB.
// Sessions are created in SetupBot because they announce through the client.
func (b *Bot) InitServices() {
	bunDB := b.DB.BunDB()
	b.CardRepository = repositories.NewCardRepository(bunDB)
	b.UserRepository = repositories.NewUserRepository(bunDB)
	b.TimerRepository = repositories.NewTimerRepository(bunDB)
	b.GuildSettingsRepository = repositories.NewGuildSettingsRepository(bunDB)
	b.MetaRepository = repositories.NewMetaRepository(bunDB)
	b.CatalogRepository = repositories.NewCatalogRepository(bunDB)
	b.CosmeticsRepository = repositories.NewCosmeticsRepository(bunDB)

	eco := b.Cfg.Economy
	b.Gate = cooldown.NewGate(b.TimerRepository)
	b.ChannelCooldowns = cooldown.NewChannelStore()

	b.DropService = drops.NewService(
		drops.Config{
			DropSize:        eco.DropSize,
			ChannelCooldown: eco.DropCooldown(),
			UserCooldown:    eco.UserDropCooldown(),
		},
		b.CardRepository,
		b.UserRepository,
		b.GuildSettingsRepository,
		b.Gate,
		b.ChannelCooldowns,
		serial.NewAllocator(b.CardRepository),
		drops.NewGenerator(b.CatalogRepository, b.MetaRepository, eco.RarityWeights),
	)

	txm := utils.NewEconomicTransactionManager(bunDB, b.UserRepository)
	b.BurnManager = burn.NewManager(txm, b.CardRepository, b.UserRepository)
	b.UpgradeManager = upgrade.NewManager(txm, b.CardRepository, b.UserRepository)
	b.DailyService = daily.NewService(daily.Config{
		Cooldown: eco.DailyCooldown(),
		CoinsMin: eco.DailyCoinsMin,
		CoinsMax: eco.DailyCoinsMax,
		GemsMin:  eco.DailyGemsMin,
		GemsMax:  eco.DailyGemsMax,
	}, txm, b.UserRepository, b.Gate)

	if b.Cfg.Spaces.Enabled() {
		s := b.Cfg.Spaces
		spaces, err := services.NewSpacesService(s.Key, s.Secret, s.Region, s.Bucket, s.CardRoot, s.Endpoint)
		if err != nil {
			slog.Warn("Artwork storage disabled", slog.String("type", "sys"), slog.Any("error", err))
			return
		}
		b.SpacesService = spaces
		b.Renderer = services.NewArtworkRenderer(spaces, spaces.GetCardRoot())
	}
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	b.Sessions = claim.NewSessionManager(
		claim.Config{
			Window:       b.Cfg.Economy.ClaimWindow(),
			GrabCooldown: b.Cfg.Economy.GrabCooldown(),
		},
		claim.NewSessionStore(),
		claim.NewResolver(b.CardRepository),
		b.CardRepository,
		b.Gate,
		services.NewDropAnnouncer(client.Rest()),
	)
	return nil
}

// Close stops pending claim timers and releases the database.
func (b *Bot) Close() {
	if b.Sessions != nil {
		b.Sessions.Close()
	}
	if b.DB != nil {
		b.DB.Close()
	}
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Menami is now ready",
		slog.String("type", "sys"),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithPlayingActivity("/drop"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.String("type", "error"), slog.Any("error", err))
	}
}
