package handlers

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/KristianLengyel/menami-bot/menami/config"
)

const slowThreshold = 2 * time.Second

type interaction interface {
	User() discord.User
	GuildID() *snowflake.ID
	ChannelID() snowflake.ID
}

// WrapWithLogging logs start, outcome and duration of a slash command.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return run("cmd", name, e, func() error { return h(e) })
	}
}

// WrapComponentWithLogging is WrapWithLogging for buttons.
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		return run("component", name, e, func() error { return h(e) })
	}
}

func run(kind, name string, e interaction, fn func() error) error {
	start := time.Now()
	user := e.User()
	guildID := ""
	if g := e.GuildID(); g != nil {
		guildID = g.String()
	}

	slog.Info("Interaction started",
		slog.String("type", "cmd"),
		slog.String("kind", kind),
		slog.String("name", name),
		slog.String("user_id", user.ID.String()),
		slog.String("user_name", user.Username),
		slog.String("guild_id", guildID),
		slog.String("channel_id", e.ChannelID().String()),
	)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Interaction panicked",
					slog.String("type", "error"),
					slog.String("name", name),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
				done <- fmt.Errorf("%s %s panicked: %v", kind, name, r)
			}
		}()
		done <- fn()
	}()

	attrs := []any{
		slog.String("type", "cmd"),
		slog.String("kind", kind),
		slog.String("name", name),
		slog.String("user_id", user.ID.String()),
	}

	select {
	case err := <-done:
		took := time.Since(start)
		attrs = append(attrs, slog.Duration("took", took))
		switch {
		case err != nil:
			slog.Error("Interaction failed", append(attrs, slog.Any("error", err), slog.String("status", "failed"))...)
		case took > slowThreshold:
			slog.Warn("Interaction executed slowly", append(attrs, slog.String("status", "slow"))...)
		default:
			slog.Info("Interaction completed", append(attrs, slog.String("status", "success"))...)
		}
		return err

	case <-time.After(config.CommandExecutionTimeout):
		slog.Error("Interaction timed out", append(attrs,
			slog.String("status", "timeout"),
			slog.Duration("timeout", config.CommandExecutionTimeout))...)
		return fmt.Errorf("%s %s timed out after %s", kind, name, config.CommandExecutionTimeout)
	}
}
