package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/optin"
	"github.com/Sakethsreeram7/food-tracker/internal/token"
)

// Router wires Telegram updates to handlers.
type Router struct {
	bot     *tgbotapi.BotAPI
	log     *zap.Logger
	svc     *optin.Service
	issuer  *token.Issuer
	isAdmin func(chatID int64) bool
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, svc *optin.Service, issuer *token.Issuer, isAdmin func(int64) bool) *Router {
	return &Router{
		bot:     bot,
		log:     log,
		svc:     svc,
		issuer:  issuer,
		isAdmin: isAdmin,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Text commands
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)
		args := strings.Fields(text)
		if len(args) == 0 {
			return
		}

		switch strings.ToLower(args[0]) {
		case "/start":
			r.handleStart(ctx, chatID)
		case "/status":
			r.handleStatus(ctx, chatID, args[1:])
		case "/optin":
			r.handleOptChange(ctx, chatID, args[1:], true)
		case "/optout":
			r.handleOptChange(ctx, chatID, args[1:], false)
		case "/weekly":
			r.handleWeekly(ctx, chatID, args[1:])
		case "/qr":
			r.handleQR(ctx, chatID, args[1:])
		case "/regenqr":
			r.handleRegenQR(ctx, chatID, args[1:])
		case "/roster":
			r.handleRoster(ctx, chatID, args[1:])
		default:
			r.sendText(chatID, helpText)
		}
		return
	}

	// Callback queries (inline meal buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		chatID := cb.Message.Chat.ID
		data := cb.Data

		switch {
		case strings.HasPrefix(data, "optin:"):
			r.handleOptCallback(ctx, chatID, strings.TrimPrefix(data, "optin:"), true, cb.ID)
		case strings.HasPrefix(data, "optout:"):
			r.handleOptCallback(ctx, chatID, strings.TrimPrefix(data, "optout:"), false, cb.ID)
		default:
			// unknown callback, ignore
		}
		return
	}
}

// SendMessage sends a plain text message to the given chat.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
