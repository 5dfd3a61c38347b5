// File: utils/embedhandler.go

package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/economy"
)

// ResponseHandler provides standardized responses for commands and components
type ResponseHandler struct{}

var EH = &ResponseHandler{}

type ErrorType int

const (
	UserError ErrorType = iota
	SystemError
	NotFoundError
	PermissionError
	// BusinessLogicError covers cooldowns, balances and game rules.
	BusinessLogicError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	case BusinessLogicError:
		return "⏰"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// DescribeError turns a domain error into the text shown to the user.
// Anything it does not recognise is a SystemError with a generic message.
func DescribeError(err error) (ErrorType, string) {
	var (
		cooldown *economy.CooldownError
		channel  *economy.WrongChannelError
		short    *economy.InsufficientResourcesError
	)
	switch {
	case errors.As(err, &cooldown):
		wait := FormatDuration(cooldown.Remaining)
		switch cooldown.Scope {
		case "channel":
			return BusinessLogicError, fmt.Sprintf("This channel just had a drop. Try again in **%s**.", wait)
		case "daily":
			return BusinessLogicError, fmt.Sprintf("Your daily reward is ready in **%s**.", wait)
		default:
			return BusinessLogicError, fmt.Sprintf("You can drop again in **%s**.", wait)
		}
	case errors.As(err, &channel):
		return UserError, fmt.Sprintf("Drops are only allowed in <#%s>.", channel.Allowed)
	case errors.As(err, &short):
		parts := make([]string, 0, len(short.Shortfalls))
		for _, s := range short.Shortfalls {
			parts = append(parts, fmt.Sprintf("**%d** %s (you have %d)", s.Need, s.Resource, s.Have))
		}
		return BusinessLogicError, "You need " + strings.Join(parts, " and ") + "."
	case errors.Is(err, economy.ErrNotOwner):
		return PermissionError, "You don't own that card."
	case errors.Is(err, economy.ErrConflict):
		return BusinessLogicError, "That card changed hands while you were acting on it. Try again."
	case errors.Is(err, economy.ErrNotFound):
		return NotFoundError, "Card not found."
	case errors.Is(err, economy.ErrCapacity):
		return BusinessLogicError, "Every print of that card has been made."
	default:
		return SystemError, "Something went wrong. Please try again later."
	}
}

type messageCreator interface {
	CreateMessage(messageCreate discord.MessageCreate, opts ...rest.RequestOpt) error
}

func errorMessage(err error, ephemeral bool) discord.MessageCreate {
	errType, text := DescribeError(err)
	msg := discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: getErrorPrefix(errType) + " " + text,
			Color:       getErrorColor(errType),
		}},
	}
	if ephemeral {
		msg.Flags = discord.MessageFlagEphemeral
	}
	return msg
}

func logUnexpected(err error) {
	if errType, _ := DescribeError(err); errType == SystemError {
		slog.Error("Unexpected interaction error",
			slog.String("type", "error"),
			slog.Any("error", err))
	}
}

// HandleError answers a command or component with the description of err.
func (h *ResponseHandler) HandleError(event messageCreator, err error) error {
	logUnexpected(err)
	_, ephemeral := event.(*handler.ComponentEvent)
	return event.CreateMessage(errorMessage(err, ephemeral))
}

// UpdateError replaces a deferred command response with the description of err.
func (h *ResponseHandler) UpdateError(event *handler.CommandEvent, err error) error {
	logUnexpected(err)
	msg := errorMessage(err, false)
	_, uerr := event.UpdateInteractionResponse(discord.MessageUpdate{Embeds: &msg.Embeds})
	return uerr
}

// CreateUserError reports invalid input.
func (h *ResponseHandler) CreateUserError(event messageCreator, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: getErrorPrefix(UserError) + " " + message,
			Color:       getErrorColor(UserError),
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func (h *ResponseHandler) CreateSuccessEmbed(event messageCreator, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.SuccessColor,
		}},
	})
}

func (h *ResponseHandler) CreateInfoEmbed(event messageCreator, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.InfoColor,
		}},
	})
}

func (h *ResponseHandler) CreateEphemeralInfo(event messageCreator, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: "ℹ️ " + message,
		Flags:   discord.MessageFlagEphemeral,
	})
}
