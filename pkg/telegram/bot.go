package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/service"
)

//go:generate moq -out mocks/subscriptions.go -pkg mocks -skip-ensure -fmt goimports . Subscriptions

// Subscriptions is the subscription management used by commands
type Subscriptions interface {
	Add(ctx context.Context, rawURL string, sub domain.Subscriber) (string, error)
	Remove(ctx context.Context, rawURL string, sub domain.Subscriber) (bool, error)
	List(ctx context.Context, sub domain.Subscriber) ([]string, error)
}

// Bot receives updates and handles subscription commands in private chats
type Bot struct {
	api         BotAPI
	subs        Subscriptions
	pollTimeout int // seconds, long polling timeout
	workers     int
}

// BotParams defines bot options
type BotParams struct {
	PollTimeout int // seconds, 60 if not set
	Workers     int // commands handled concurrently, 4 if not set
}

// NewBot makes a bot handling commands with subs
func NewBot(api BotAPI, subs Subscriptions, params BotParams) *Bot {
	if params.PollTimeout <= 0 {
		params.PollTimeout = 60
	}
	if params.Workers <= 0 {
		params.Workers = 4
	}
	return &Bot{api: api, subs: subs, pollTimeout: params.PollTimeout, workers: params.Workers}
}

// Run receives updates until the context is canceled. Commands are handled concurrently,
// a slow feed fetch in /add doesn't hold other commands.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	lgr.Printf("[INFO] telegram bot started")

	g := errgroup.Group{}
	g.SetLimit(b.workers)
	defer func() {
		_ = g.Wait()
		lgr.Printf("[INFO] telegram bot stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil || upd.Message.Chat == nil {
				continue
			}
			msg := upd.Message
			g.Go(func() error {
				b.handleMessage(ctx, msg)
				return nil
			})
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsPrivate() || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	sub := Pack(chatID)
	arg := firstArg(msg.CommandArguments())
	lgr.Printf("[DEBUG] command /%s from %d", msg.Command(), chatID)

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, msgWelcome)
	case "add":
		b.add(ctx, chatID, sub, arg)
	case "rm":
		b.remove(ctx, chatID, sub, arg)
	case "ls":
		urls, err := b.subs.List(ctx, sub)
		if err != nil {
			lgr.Printf("[WARN] failed to list feeds of %d: %v", chatID, err)
			b.reply(chatID, msgFailure)
			return
		}
		b.reply(chatID, msgFeedList(urls))
	default:
		b.reply(chatID, msgWelcome)
	}
}

// add reports progress right away, the first fetch of a feed may take a while,
// then edits that message into the result
func (b *Bot) add(ctx context.Context, chatID int64, sub domain.Subscriber, url string) {
	if url == "" {
		b.reply(chatID, msgNoURL)
		return
	}
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, msgTryAdd(url)))
	if err != nil {
		lgr.Printf("[WARN] failed to reply to %d: %v", chatID, err)
		return
	}

	var text string
	canonical, err := b.subs.Add(ctx, url, sub)
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		text = msgNoURL
	case err != nil:
		lgr.Printf("[INFO] failed to add %s for %d: %v", url, chatID, err)
		text = msgAddFailed(url, err)
	default:
		text = msgAddOK(canonical)
	}
	if _, err := b.api.Request(tgbotapi.NewEditMessageText(chatID, sent.MessageID, text)); err != nil {
		lgr.Printf("[WARN] failed to edit reply to %d: %v", chatID, err)
	}
}

func (b *Bot) remove(ctx context.Context, chatID int64, sub domain.Subscriber, url string) {
	if url == "" {
		b.reply(chatID, msgNoURL)
		return
	}
	removed, err := b.subs.Remove(ctx, url, sub)
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		b.reply(chatID, msgNoURL)
	case err != nil:
		lgr.Printf("[WARN] failed to remove %s for %d: %v", url, chatID, err)
		b.reply(chatID, msgFailure)
	case removed:
		b.reply(chatID, msgRemoveOK(url))
	default:
		b.reply(chatID, msgNotSubscribed(url))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		lgr.Printf("[WARN] failed to reply to %d: %v", chatID, err)
	}
}

func firstArg(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
