// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"

	"github.com/abelzeko/beton-control/internal/intake"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const helpText = "Доступные команды:\n" +
	"/start - добавить контроль бетона\n" +
	"/cancel - отменить ввод\n" +
	"/help - показать эту справку"

// TelegramBot maps Telegram updates onto the intake flow
type TelegramBot struct {
	bot    *tgbotapi.BotAPI
	flow   *intake.Flow
	logger *zap.Logger
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, flow *intake.Flow, logger *zap.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return NewTelegramBotWithAPI(bot, flow, logger), nil
}

// NewTelegramBotWithAPI creates a handler over an existing API client
func NewTelegramBotWithAPI(bot *tgbotapi.BotAPI, flow *intake.Flow, logger *zap.Logger) *TelegramBot {
	return &TelegramBot{
		bot:    bot,
		flow:   flow,
		logger: logger,
	}
}

// Start listens for updates until ctx is cancelled
func (t *TelegramBot) Start(ctx context.Context) error {
	t.logger.Info("Authorized on Telegram account", zap.String("username", t.bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	t.logger.Info("Bot is now listening for messages")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.logger.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update; errors are logged and never stop the bot
func (t *TelegramBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		t.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		t.handleMessage(ctx, update.Message)
	}
}

// handleMessage processes a text message or command
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	log := t.logger.With(zap.Int64("chat_id", chatID), zap.String("user", userName(message.From)))
	log.Debug("Received message", zap.String("text", message.Text))

	if !message.IsCommand() {
		t.reply(chatID, t.flow.Handle(ctx, chatID, intake.TextInput(message.Text)))
		return
	}

	switch message.Command() {
	case "start":
		log.Info("Handling /start command")
		t.reply(chatID, t.flow.Handle(ctx, chatID, intake.StartInput()))

	case "cancel":
		log.Info("Handling /cancel command")
		t.reply(chatID, t.flow.Handle(ctx, chatID, intake.CancelInput()))

	case "help":
		t.send(tgbotapi.NewMessage(chatID, helpText))

	default:
		log.Info("Received unknown command", zap.String("command", message.Command()))
		t.send(tgbotapi.NewMessage(chatID, "Неизвестная команда. "+helpText))
	}
}

// handleCallback processes an inline keyboard button press
func (t *TelegramBot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := t.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		t.logger.Warn("Failed to answer callback query", zap.Error(err))
	}
	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	chatID := query.Message.Chat.ID
	in, ok := intake.ParseCallbackData(query.Data)
	if !ok {
		t.logger.Warn("Ignoring malformed callback data", zap.Int64("chat_id", chatID), zap.String("data", query.Data))
		return
	}
	t.logger.Debug("Received choice", zap.Int64("chat_id", chatID), zap.String("tag", in.Tag), zap.Int64("key", in.Key))
	t.reply(chatID, t.flow.Handle(ctx, chatID, in))
}

func (t *TelegramBot) reply(chatID int64, reply intake.Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Options) > 0 {
		msg.ReplyMarkup = Keyboard(reply.Tag, reply.Options, reply.Columns)
	}
	t.send(msg)
}

func (t *TelegramBot) send(msg tgbotapi.MessageConfig) {
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Error sending message", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

// Keyboard lays options out as an inline keyboard with columns buttons per row.
// Button payloads carry the option index or record id, never the label.
func Keyboard(tag string, options []intake.Option, columns int) tgbotapi.InlineKeyboardMarkup {
	if columns < 1 {
		columns = 1
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for start := 0; start < len(options); start += columns {
		end := start + columns
		if end > len(options) {
			end = len(options)
		}
		row := make([]tgbotapi.InlineKeyboardButton, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(options[i].Label, intake.CallbackData(tag, i, options[i])))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func userName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return u.UserName
}
