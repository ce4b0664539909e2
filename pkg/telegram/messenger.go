// Package telegram is the messaging side of the service: sends entries to telegram chats
// and handles subscription commands.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/notify"
)

//go:generate moq -out mocks/bot_api.go -pkg mocks -skip-ensure -fmt goimports . BotAPI

// BotAPI is the subset of telegram bot api client in use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewBotAPI makes a telegram client. Empty endpoint means the public telegram api,
// otherwise it is a format string like tgbotapi.APIEndpoint. It calls getMe, so a bad token fails here.
func NewBotAPI(token, endpoint string, client *http.Client) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("make telegram bot api: %w", err)
	}
	return api, nil
}

// Messenger sends text messages to subscribers identified by chat handles
type Messenger struct {
	api BotAPI
}

// NewMessenger makes a messenger on top of telegram api
func NewMessenger(api BotAPI) *Messenger {
	return &Messenger{api: api}
}

// Send sends text to the chat of sub. Chats that blocked the bot or are gone
// are reported as notify.ErrRecipientUnreachable.
func (m *Messenger) Send(ctx context.Context, sub domain.Subscriber, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := Unpack(sub)
	if err != nil {
		return fmt.Errorf("%w: %v", notify.ErrRecipientUnreachable, err)
	}
	if _, err := m.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return classifyError(chatID, err)
	}
	return nil
}

func classifyError(chatID int64, err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		var valErr tgbotapi.Error
		if !errors.As(err, &valErr) {
			return fmt.Errorf("send to %d: %w", chatID, err)
		}
		apiErr = &valErr
	}

	desc := strings.ToLower(apiErr.Message)
	if apiErr.Code == http.StatusForbidden ||
		(apiErr.Code == http.StatusBadRequest && strings.Contains(desc, "chat not found")) {
		return fmt.Errorf("send to %d: %w: %s", chatID, notify.ErrRecipientUnreachable, apiErr.Message)
	}
	return fmt.Errorf("send to %d: telegram error %d: %s", chatID, apiErr.Code, apiErr.Message)
}
