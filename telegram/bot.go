// Package telegram adapts the workflow engine to the Telegram Bot API:
// updates become engine inputs, prompts become messages and inline keyboards.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/vlessgen/go-vless-bot/i18n"
	"github.com/vlessgen/go-vless-bot/workflow"
)

const pollTimeoutSeconds = 30

// Engine is the slice of the workflow engine the bot drives.
type Engine interface {
	Start(ctx context.Context, userID int64) error
	Choose(ctx context.Context, userID int64, token string) error
	Text(ctx context.Context, userID int64, text string) error
	Cancel(ctx context.Context, userID int64) error
}

// Bot is the Telegram transport. It also implements workflow.Presenter, so
// the engine's prompts flow back out through the same connection.
type Bot struct {
	api *tgbotapi.BotAPI
}

// NewBot authenticates against the Telegram Bot API.
func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram authentication failed")
	}
	log.Info().Str("username", api.Self.UserName).Msg("telegram bot authenticated")
	return &Bot{api: api}, nil
}

// Username returns the authenticated bot account name.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consumes updates until ctx is done. Each update is handled on its own
// goroutine; the engine serializes per-user transitions itself.
func (b *Bot) Run(ctx context.Context, engine Engine) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, engine, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, engine Engine, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		// Acknowledge first so the button stops spinning even if the
		// transition fails.
		if _, ackErr := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); ackErr != nil {
			log.Warn().Err(ackErr).Msg("failed to answer callback query")
		}
		err = engine.Choose(ctx, update.CallbackQuery.From.ID, update.CallbackQuery.Data)

	case update.Message != nil && update.Message.IsCommand():
		switch update.Message.Command() {
		case "start":
			err = engine.Start(ctx, update.Message.Chat.ID)
		case "cancel":
			err = engine.Cancel(ctx, update.Message.Chat.ID)
		}

	case update.Message != nil && update.Message.Text != "":
		err = engine.Text(ctx, update.Message.Chat.ID, update.Message.Text)
	}

	if err != nil {
		log.Error().Err(err).Msg("update handling failed")
	}
}

var _ workflow.Presenter = (*Bot)(nil)

// Choice sends the prompt with a single-column inline keyboard.
func (b *Bot) Choice(_ context.Context, userID int64, lang i18n.Language, key string, choices []workflow.Choice) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, choice := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choice.Label, choice.Token),
		))
	}

	message := tgbotapi.NewMessage(userID, i18n.T(lang, key))
	message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.send(message)
}

// Prompt sends the plain message for key.
func (b *Bot) Prompt(_ context.Context, userID int64, lang i18n.Language, key string) error {
	return b.send(tgbotapi.NewMessage(userID, i18n.T(lang, key)))
}

// Result uploads the QR image with the credential in a monospace caption.
func (b *Bot) Result(_ context.Context, userID int64, lang i18n.Language, key, payload string, image []byte) error {
	photo := tgbotapi.NewPhoto(userID, tgbotapi.FileBytes{Name: "config.png", Bytes: image})
	photo.Caption = fmt.Sprintf("%s\n\n`%s`", i18n.T(lang, key), payload)
	photo.ParseMode = tgbotapi.ModeMarkdown
	return b.send(photo)
}

// Error sends the message for key formatted with detail.
func (b *Bot) Error(_ context.Context, userID int64, lang i18n.Language, key, detail string) error {
	return b.send(tgbotapi.NewMessage(userID, formatMessage(lang, key, detail)))
}

func (b *Bot) send(message tgbotapi.Chattable) error {
	if _, err := b.api.Send(message); err != nil {
		return errors.Wrap(err, "telegram send failed")
	}
	return nil
}

// formatMessage fills the message template for key with detail when the
// template expects one.
func formatMessage(lang i18n.Language, key, detail string) string {
	template := i18n.T(lang, key)
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, detail)
	}
	return template
}
