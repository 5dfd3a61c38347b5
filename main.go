package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/commands"
	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/handlers"
	"github.com/KristianLengyel/menami-bot/menami/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

const (
	channelPruneInterval = 10 * time.Minute
	channelPruneAge      = 24 * time.Hour
)

func main() {
	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(logger.NewHandler(level)))

	slog.Info("Starting Menami",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := menami.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	level.Set(cfg.Log.Level)
	slog.Info("Configuration loaded successfully", slog.String("type", "sys"))

	dbStartTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("type", "db"),
			slog.String("driver", cfg.DB.Driver),
			slog.Any("error", err),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.String("type", "db"), slog.Any("error", err))
		db.Close()
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("driver", db.Driver()),
		slog.Duration("took", time.Since(dbStartTime)))

	b := menami.New(*cfg, version, commit)
	b.DB = db
	b.InitServices()
	defer b.Close()

	h := handler.New()
	h.Command("/drop", handlers.WrapWithLogging("drop", commands.DropHandler(b)))
	h.Command("/burn", handlers.WrapWithLogging("burn", commands.BurnHandler(b)))
	h.Command("/upgrade", handlers.WrapWithLogging("upgrade", commands.UpgradeHandler(b)))
	h.Command("/give", handlers.WrapWithLogging("give", commands.GiveHandler(b)))
	h.Command("/view", handlers.WrapWithLogging("view", commands.ViewHandler(b)))
	h.Command("/collection", handlers.WrapWithLogging("collection", commands.CollectionHandler(b)))
	h.Command("/cooldowns", handlers.WrapWithLogging("cooldowns", commands.CooldownsHandler(b)))
	h.Command("/daily", handlers.WrapWithLogging("daily", commands.DailyHandler(b)))
	h.Command("/lookup", handlers.WrapWithLogging("lookup", commands.LookupHandler(b)))
	h.Command("/tag", handlers.WrapWithLogging("tag", commands.TagHandler(b)))
	h.Command("/dye", handlers.WrapWithLogging("dye", commands.DyeHandler(b)))
	h.Route("/settings", func(r handler.Router) {
		r.Command("/dropchannel", handlers.WrapWithLogging("settings-dropchannel", commands.SettingsHandler(b)))
		r.Command("/dropcooldown", handlers.WrapWithLogging("settings-dropcooldown", commands.SettingsHandler(b)))
	})
	h.Component("/grab/{index}", handlers.WrapComponentWithLogging("grab", commands.GrabHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	gwCtx, gwCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gwCancel()
	if err = b.Client.OpenGateway(gwCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go pruneChannelCooldowns(runCtx, b)

	slog.Info("Bot is running. Press CTRL-C to exit.", slog.String("type", "sys"))
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...",
		slog.String("type", "sys"),
		slog.Int("open_drops", b.Sessions.Len()))
}

func pruneChannelCooldowns(ctx context.Context, b *menami.Bot) {
	ticker := time.NewTicker(channelPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.ChannelCooldowns.Prune(channelPruneAge); n > 0 {
				slog.Debug("Pruned channel cooldowns", slog.String("type", "economy"), slog.Int("count", n))
			}
		}
	}
}
