// Package telegram is the transport layer: it routes Telegram updates to
// the orchestrator and renders results through the presenter. No business
// rules live here.
package telegram

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lingua-hub/lingua-tutor-hub/internal/application"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/interface/telegram/presenter"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the Telegram bot configuration.
type Config struct {
	// Token is the bot API token.
	Token string

	// Debug enables verbose API logging.
	Debug bool

	// UpdateTimeout is the long-polling timeout in seconds.
	UpdateTimeout int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(token string) Config {
	return Config{
		Token:         token,
		UpdateTimeout: 30,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot receives Telegram updates over long polling and dispatches them.
type Bot struct {
	api           *tgbotapi.BotAPI
	orch          *application.Orchestrator
	log           *logger.Logger
	updateTimeout int
}

// New authorizes against the Telegram API and builds the bot.
func New(cfg Config, orch *application.Orchestrator, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("telegram"))
	log.Info("bot authorized", logger.String("username", api.Self.UserName))

	timeout := cfg.UpdateTimeout
	if timeout <= 0 {
		timeout = 30
	}
	return &Bot{api: api, orch: orch, log: log, updateTimeout: timeout}, nil
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.updateTimeout

	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("update loop stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch routes one update. Each update is handled synchronously; per-user
// serialization happens at the repository layer.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SENDING
// ══════════════════════════════════════════════════════════════════════════════

// reply sends a Markdown message to a chat.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", logger.ChatID(chatID), logger.Err(err))
	}
}

// replyWithKeyboard sends a Markdown message with an inline keyboard.
func (b *Bot) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", logger.ChatID(chatID), logger.Err(err))
	}
}

// typing shows the typing indicator during the tutor call.
func (b *Bot) typing(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = b.api.Request(action)
}

// SendReminder implements the scheduler's Notifier: user IDs are Telegram
// user IDs, which double as private chat IDs.
func (b *Bot) SendReminder(userID session.UserID, dueWords int) error {
	chatID, err := strconv.ParseInt(userID.String(), 10, 64)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, presenter.Reminder(dueWords))
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err = b.api.Send(msg)
	return err
}

// displayName resolves a user's first name through the Telegram API,
// falling back to a masked identifier when the lookup fails.
func (b *Bot) displayName(userID string) string {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return session.UserID(userID).Masked()
	}

	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
	if err != nil || chat.FirstName == "" {
		return session.UserID(userID).Masked()
	}
	return chat.FirstName
}

// requestTimeout bounds one update's processing, tutor call included.
const requestTimeout = 60 * time.Second
