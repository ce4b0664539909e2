// Package notify fans out new feed entries to subscribers through a messenger
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedpush/pkg/domain"
)

//go:generate moq -out mocks/messenger.go -pkg mocks -skip-ensure -fmt goimports . Messenger

// ErrRecipientUnreachable is returned by Messenger when the recipient can't ever be reached,
// e.g. blocked the bot or deleted the account. Such deliveries are not retried.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

// Messenger sends a text message to a subscriber
type Messenger interface {
	Send(ctx context.Context, sub domain.Subscriber, text string) error
}

// Result summarizes delivery of one entry to all subscribers of a feed
type Result struct {
	Delivered   int
	Unreachable int
	Failed      int
	Statuses    []domain.DeliveryStatus // per subscriber, same order as the subscribers passed in
}

// AllFailed reports whether no subscriber got the entry. Unreachable recipients count
// as handled, so only transient failures of every subscriber make this true.
func (r Result) AllFailed() bool {
	return r.Failed > 0 && r.Delivered+r.Unreachable == 0
}

func (r Result) String() string {
	return fmt.Sprintf("delivered:%d, unreachable:%d, failed:%d", r.Delivered, r.Unreachable, r.Failed)
}

// Dispatcher delivers entries to subscribers with bounded parallelism
type Dispatcher struct {
	messenger Messenger
	workers   int
}

// NewDispatcher makes a dispatcher sending through messenger with up to workers concurrent sends
func NewDispatcher(messenger Messenger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{messenger: messenger, workers: workers}
}

// Deliver sends the formatted entry to every subscriber and classifies the outcomes.
// It never fails as a whole, per subscriber errors are logged and counted.
func (d *Dispatcher) Deliver(ctx context.Context, entry domain.Entry, subs []domain.Subscriber) Result {
	text := FormatEntry(entry)
	statuses := make([]domain.DeliveryStatus, len(subs))

	g := errgroup.Group{}
	g.SetLimit(d.workers)
	for i, sub := range subs {
		g.Go(func() error {
			statuses[i] = d.send(ctx, sub, text, entry.ID)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Statuses: statuses}
	for _, st := range statuses {
		switch st {
		case domain.DeliveryOK:
			res.Delivered++
		case domain.DeliveryUnreachable:
			res.Unreachable++
		default:
			res.Failed++
		}
	}
	return res
}

func (d *Dispatcher) send(ctx context.Context, sub domain.Subscriber, text, entryID string) domain.DeliveryStatus {
	err := d.messenger.Send(ctx, sub, text)
	switch {
	case err == nil:
		return domain.DeliveryOK
	case errors.Is(err, ErrRecipientUnreachable):
		lgr.Printf("[DEBUG] subscriber %s unreachable for entry %s: %v", sub, entryID, err)
		return domain.DeliveryUnreachable
	default:
		lgr.Printf("[WARN] failed to deliver entry %s to %s: %v", entryID, sub, err)
		return domain.DeliveryFailed
	}
}

var textPolicy = bluemonday.StrictPolicy()

// FormatEntry renders an entry as a message: title on the first line, link on the second.
// Markup is stripped from the title.
func FormatEntry(entry domain.Entry) string {
	title := plainText(entry.Title)
	if title == "" {
		title = "(untitled)"
	}
	link := strings.TrimSpace(entry.Link)
	if link == "" {
		link = "(no online url)"
	}
	return title + "\n" + link
}

func plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(s))), " ")
}
