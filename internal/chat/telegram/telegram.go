// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"musicwizard/internal/chat"
	"musicwizard/internal/core"
)

const (
	// messageLimit is Telegram's maximum message length in characters.
	messageLimit = 4096

	commandStart  = "/start"
	commandCancel = "/cancel"
)

// Frontend implements the chat.Frontend interface for Telegram.
type Frontend struct {
	config *core.TelegramConfig
	logger *zap.Logger
	bot    *bot.Bot

	eventHandler func(*chat.Event)
}

func NewFrontend(config *core.TelegramConfig, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger,
	}
}

// Start initializes the Telegram bot.
func (f *Frontend) Start(ctx context.Context) error {
	if !f.config.Enabled {
		f.logger.Info("Telegram frontend is disabled, skipping initialization")
		return nil
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(f.handleUpdate),
	}

	b, err := bot.New(f.config.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	f.bot = b
	f.logger.Info("Telegram frontend started successfully")
	return nil
}

// Listen starts long polling and delivers each normalized event to handler.
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Event)) error {
	if !f.config.Enabled {
		<-ctx.Done()
		return nil
	}

	f.eventHandler = handler
	f.bot.Start(ctx)
	return nil
}

// SendText sends a text message, splitting it at the transport limit. The
// last chunk's message ID is returned.
func (f *Frontend) SendText(ctx context.Context, chatID, text string) (string, error) {
	chatIDInt, err := parseChatID(chatID)
	if err != nil {
		return "", err
	}

	var lastID string
	for _, chunk := range chunkText(text, messageLimit) {
		msg, err := f.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatIDInt,
			Text:   chunk,
		})
		if err != nil {
			return "", fmt.Errorf("failed to send message: %w", err)
		}
		lastID = strconv.Itoa(msg.ID)
	}

	return lastID, nil
}

// SendButtons sends a text message with inline button rows.
func (f *Frontend) SendButtons(ctx context.Context, chatID, text string, rows [][]chat.Button) (string, error) {
	chatIDInt, err := parseChatID(chatID)
	if err != nil {
		return "", err
	}

	msg, err := f.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatIDInt,
		Text:        text,
		ReplyMarkup: buildKeyboard(rows),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

func (f *Frontend) EditText(ctx context.Context, chatID, messageID, text string) error {
	chatIDInt, msgIDInt, err := parseIDs(chatID, messageID)
	if err != nil {
		return err
	}

	_, err = f.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatIDInt,
		MessageID: msgIDInt,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (f *Frontend) EditButtons(ctx context.Context, chatID, messageID, text string, rows [][]chat.Button) error {
	chatIDInt, msgIDInt, err := parseIDs(chatID, messageID)
	if err != nil {
		return err
	}

	_, err = f.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatIDInt,
		MessageID:   msgIDInt,
		Text:        text,
		ReplyMarkup: buildKeyboard(rows),
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (f *Frontend) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	chatIDInt, msgIDInt, err := parseIDs(chatID, messageID)
	if err != nil {
		return err
	}

	_, err = f.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatIDInt,
		MessageID: msgIDInt,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// SendAudio uploads an audio file with caption and title/performer tags.
func (f *Frontend) SendAudio(ctx context.Context, chatID string, audio *chat.Audio) error {
	chatIDInt, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	file, err := os.Open(audio.Path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	_, err = f.bot.SendAudio(ctx, &bot.SendAudioParams{
		ChatID: chatIDInt,
		Audio: &models.InputFileUpload{
			Filename: filepath.Base(audio.Path),
			Data:     file,
		},
		Caption:   audio.Caption,
		Title:     audio.Title,
		Performer: audio.Performer,
	})
	if err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

// handleUpdate normalizes every inbound Telegram update to a chat.Event.
func (f *Frontend) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if f.eventHandler == nil {
		return
	}

	switch {
	case update.CallbackQuery != nil:
		f.handleCallback(ctx, b, update.CallbackQuery)
	case update.Message != nil:
		f.handleMessage(update.Message)
	}
}

func (f *Frontend) handleMessage(msg *models.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}

	ev := &chat.Event{
		UserID:     strconv.FormatInt(msg.From.ID, 10),
		ChatID:     strconv.FormatInt(msg.Chat.ID, 10),
		MessageID:  strconv.Itoa(msg.ID),
		SenderName: displayName(msg.From),
	}

	switch strings.TrimSpace(msg.Text) {
	case commandStart:
		ev.Kind = chat.EventRestart
	case commandCancel:
		ev.Kind = chat.EventCancel
	default:
		ev.Kind = chat.EventText
		ev.Text = msg.Text
	}

	f.eventHandler(ev)
}

func (f *Frontend) handleCallback(ctx context.Context, b *bot.Bot, query *models.CallbackQuery) {
	// Stop the client-side spinner immediately.
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	}); err != nil {
		f.logger.Debug("Failed to answer callback query", zap.Error(err))
	}

	msg := query.Message.Message
	if msg == nil {
		f.logger.Warn("Callback query without accessible message",
			zap.String("data", query.Data))
		return
	}

	f.eventHandler(&chat.Event{
		Kind:       chat.EventButton,
		UserID:     strconv.FormatInt(query.From.ID, 10),
		ChatID:     strconv.FormatInt(msg.Chat.ID, 10),
		MessageID:  strconv.Itoa(msg.ID),
		SenderName: displayName(&query.From),
		Action:     query.Data,
	})
}

// chunkText splits text into pieces of at most limit characters, breaking at
// the last newline inside the window when one exists.
func chunkText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		if idx := lastNewline(runes[:limit]); idx > 0 {
			cut = idx + 1
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

func displayName(user *models.User) string {
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	if name == "" {
		name = user.Username
	}
	return name
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat ID: %w", err)
	}
	return id, nil
}

func parseIDs(chatID, messageID string) (int64, int, error) {
	chatIDInt, err := parseChatID(chatID)
	if err != nil {
		return 0, 0, err
	}
	msgIDInt, err := strconv.Atoi(messageID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid message ID: %w", err)
	}
	return chatIDInt, msgIDInt, nil
}

func buildKeyboard(rows [][]chat.Button) *models.InlineKeyboardMarkup {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Action,
			})
		}
		keyboard = append(keyboard, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
