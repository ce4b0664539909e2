package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/feed"
	"github.com/umputun/feedpush/pkg/repository"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// ErrInvalidURL is returned for anything that is not an absolute http(s) url
var ErrInvalidURL = errors.New("invalid feed url")

// Store is the durable subscription state
type Store interface {
	AddFeed(ctx context.Context, feed *domain.Feed) error
	AddSubscriber(ctx context.Context, url string, sub domain.Subscriber) (bool, error)
	RemoveSubscriber(ctx context.Context, url string, sub domain.Subscriber) (bool, error)
	ListSubscriptions(ctx context.Context, sub domain.Subscriber) ([]string, error)
}

// Fetcher makes the initial state of a newly subscribed feed
type Fetcher interface {
	Subscribe(ctx context.Context, url string, sub domain.Subscriber) (*domain.Feed, error)
}

// Subscriptions implements subscribe, unsubscribe and list operations for command handlers.
// It holds no state, concurrent calls and the poll loop meet only in the store.
type Subscriptions struct {
	store   Store
	fetcher Fetcher
}

// NewSubscriptions makes a subscriptions service
func NewSubscriptions(store Store, fetcher Fetcher) *Subscriptions {
	return &Subscriptions{store: store, fetcher: fetcher}
}

// Add subscribes sub to the feed at rawURL and returns the canonical url.
// A feed already in the store just gets the subscriber, a new one is fetched first
// and all its current entries count as seen.
func (s *Subscriptions) Add(ctx context.Context, rawURL string, sub domain.Subscriber) (string, error) {
	url, err := feed.CanonicalURL(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	added, err := s.store.AddSubscriber(ctx, url, sub)
	if err == nil {
		if !added {
			lgr.Printf("[DEBUG] %s already subscribed to %s", sub, url)
		}
		return url, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return url, fmt.Errorf("add subscriber to %s: %w", url, err)
	}

	f, err := s.fetcher.Subscribe(ctx, url, sub)
	if err != nil {
		return url, err
	}
	if err := s.store.AddFeed(ctx, f); err != nil {
		return url, fmt.Errorf("add feed %s: %w", url, err)
	}
	lgr.Printf("[INFO] new feed %s with %d entries, subscribed by %s", url, len(f.Seen), sub)
	return url, nil
}

// Remove unsubscribes sub from the feed, returns false if there was no such subscription
func (s *Subscriptions) Remove(ctx context.Context, rawURL string, sub domain.Subscriber) (bool, error) {
	url, err := feed.CanonicalURL(rawURL)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	removed, err := s.store.RemoveSubscriber(ctx, url, sub)
	if err != nil {
		return false, fmt.Errorf("remove subscriber from %s: %w", url, err)
	}
	return removed, nil
}

// List returns urls of all feeds sub is subscribed to
func (s *Subscriptions) List(ctx context.Context, sub domain.Subscriber) ([]string, error) {
	urls, err := s.store.ListSubscriptions(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return urls, nil
}
