package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/internal/interface/telegram/presenter"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
)

// callback data prefixes for inline keyboards.
const (
	callbackLang = "lang_"
	callbackMode = "mode_"
)

func userIDOf(from *tgbotapi.User) session.UserID {
	return session.UserID(strconv.FormatInt(from.ID, 10))
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	userID := userIDOf(msg.From)
	chatID := msg.Chat.ID
	cmd := msg.Command()
	b.log.Info("command", logger.UserID(userID.String()), logger.Command(cmd))

	switch cmd {
	case "start":
		// Materialize the session so defaults exist from the first touch.
		if _, err := b.orch.Progress(ctx, userID); err != nil {
			b.fail(chatID, err)
			return
		}
		b.reply(chatID, presenter.Welcome)

	case "bantuan", "help":
		b.reply(chatID, presenter.Help)

	case "bahasa":
		b.replyWithKeyboard(chatID, presenter.ChooseLanguage, languageKeyboard())

	case "mode":
		b.replyWithKeyboard(chatID, presenter.ChooseMode, modeKeyboard())

	case "level":
		b.withSession(ctx, chatID, userID, presenter.Level)

	case "progres":
		b.withSession(ctx, chatID, userID, presenter.Progress)

	case "target":
		b.withSession(ctx, chatID, userID, presenter.Goals)

	case "streak":
		b.withSession(ctx, chatID, userID, presenter.Streak)

	case "quiz":
		b.handleStartQuiz(ctx, chatID, userID)

	case "latihan":
		words, err := b.orch.ReviewWords(ctx, userID, 10)
		if err != nil {
			b.fail(chatID, err)
			return
		}
		b.reply(chatID, presenter.ReviewWords(words))

	case "top":
		b.handleTop(ctx, chatID, userID)

	case "pengingat":
		b.handleToggleReminder(ctx, chatID, userID)

	case "reset":
		s, err := b.orch.Progress(ctx, userID)
		if err != nil {
			b.fail(chatID, err)
			return
		}
		if err := b.orch.Reset(ctx, userID); err != nil {
			b.fail(chatID, err)
			return
		}
		b.reply(chatID, presenter.ConversationReset(s.Language))

	default:
		b.reply(chatID, presenter.Help)
	}
}

// withSession loads the session and renders it with the given view.
func (b *Bot) withSession(ctx context.Context, chatID int64, userID session.UserID, render func(*session.Session) string) {
	s, err := b.orch.Progress(ctx, userID)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	b.reply(chatID, render(s))
}

func (b *Bot) handleStartQuiz(ctx context.Context, chatID int64, userID session.UserID) {
	first, err := b.orch.StartQuiz(ctx, userID, session.DefaultQuizSize)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			b.reply(chatID, presenter.NoVocabulary)
			return
		}
		b.fail(chatID, err)
		return
	}
	b.reply(chatID, presenter.QuizStarted(first))
}

func (b *Bot) handleTop(ctx context.Context, chatID int64, userID session.UserID) {
	entries, err := b.orch.Top(ctx, leaderboard.DefaultTopCount)
	if err != nil {
		b.fail(chatID, err)
		return
	}

	// Name enrichment is best effort; failures fall back to masked IDs.
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		names[e.UserID] = b.displayName(e.UserID)
	}
	text := presenter.Leaderboard(entries, names)

	if mine, err := b.orch.MyRank(ctx, userID); err == nil {
		text += presenter.MyRank(mine)
	}
	b.reply(chatID, text)
}

func (b *Bot) handleToggleReminder(ctx context.Context, chatID int64, userID session.UserID) {
	s, err := b.orch.Progress(ctx, userID)
	if err != nil {
		b.fail(chatID, err)
		return
	}

	enabled := !s.Settings.DailyReminder
	if err := b.orch.SetDailyReminder(ctx, userID, enabled); err != nil {
		b.fail(chatID, err)
		return
	}
	b.reply(chatID, presenter.ReminderToggled(enabled, s.Settings.ReminderTime))
}

// ══════════════════════════════════════════════════════════════════════════════
// FREEFORM TEXT
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	userID := userIDOf(msg.From)
	chatID := msg.Chat.ID

	b.typing(chatID)

	res, err := b.orch.Converse(ctx, userID, msg.Text)
	if err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) || errors.Is(err, shared.ErrTimeout) {
			b.reply(chatID, presenter.TutorError)
			return
		}
		b.fail(chatID, err)
		return
	}

	switch {
	case res.RateLimited:
		b.reply(chatID, presenter.RateLimited(res.WaitSeconds))
	case res.QuizSkipped:
		b.reply(chatID, presenter.QuizSkipped)
	case res.Quiz != nil:
		b.reply(chatID, presenter.QuizAnswer(res.Quiz))
	default:
		b.reply(chatID, presenter.TutorReply(res.Reply, res.Feedback))
	}
}

// fail logs the error and sends the generic apology.
func (b *Bot) fail(chatID int64, err error) {
	b.log.Error("handler failed", logger.ChatID(chatID), logger.Err(err))
	b.reply(chatID, presenter.GenericError)
}

// ══════════════════════════════════════════════════════════════════════════════
// CALLBACK QUERIES
// ══════════════════════════════════════════════════════════════════════════════

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(presenter.Languages))
	for _, l := range presenter.Languages {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.Flag+" "+l.Name, callbackLang+string(l.Code)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func modeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Santai", callbackMode+string(session.ModeCasual)),
			tgbotapi.NewInlineKeyboardButtonData("📚 Terstruktur", callbackMode+string(session.ModeStructured)),
		),
	)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	userID := userIDOf(cb.From)
	chatID := cb.Message.Chat.ID

	// Acknowledge immediately so the button stops spinning.
	_, _ = b.api.Request(tgbotapi.NewCallback(cb.ID, ""))

	data := cb.Data
	switch {
	case strings.HasPrefix(data, callbackLang):
		lang := session.Language(strings.TrimPrefix(data, callbackLang))
		if err := b.orch.SetLanguage(ctx, userID, lang); err != nil {
			b.fail(chatID, err)
			return
		}
		// A language switch starts a fresh conversation.
		if err := b.orch.Reset(ctx, userID); err != nil {
			b.fail(chatID, err)
			return
		}
		b.reply(chatID, presenter.LanguageChosen(lang))

	case strings.HasPrefix(data, callbackMode):
		mode := session.Mode(strings.TrimPrefix(data, callbackMode))
		if err := b.orch.SetMode(ctx, userID, mode); err != nil {
			b.fail(chatID, err)
			return
		}
		b.reply(chatID, presenter.ModeChosen(mode))
	}
}
