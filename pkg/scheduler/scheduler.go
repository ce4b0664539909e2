package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/feed"
	"github.com/umputun/feedpush/pkg/notify"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/checker.go -pkg mocks -skip-ensure -fmt goimports . Checker
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// ErrPersistence marks a cycle that could not read or write the store
var ErrPersistence = errors.New("persistence failed")

// maxPersistFailures is the number of consecutive persistence failures Run tolerates
const maxPersistFailures = 2

// Store is the durable feed state used by the dispatch loop
type Store interface {
	DueFeeds(ctx context.Context, now time.Time) ([]*domain.Feed, error)
	UpdateFeeds(ctx context.Context, feeds []*domain.Feed) error
	CleanupFeeds(ctx context.Context) (int64, error)
}

// Checker fetches a feed and returns entries not seen before
type Checker interface {
	Check(ctx context.Context, feed *domain.Feed) ([]domain.Entry, error)
}

// Notifier delivers an entry to subscribers
type Notifier interface {
	Deliver(ctx context.Context, entry domain.Entry, subs []domain.Subscriber) notify.Result
}

// Policy defines what happens with an entry no subscriber could get
type Policy string

// delivery failure policies
const (
	PolicyRollback Policy = "rollback" // rewind the feed and offer the entries again next cycle
	PolicyDrop     Policy = "drop"     // mark the entry seen anyway
)

// Config holds scheduler configuration
type Config struct {
	Interval        time.Duration // sleep between cycles
	MaxWorkers      int           // feeds processed concurrently
	CleanupInterval time.Duration // how often feeds without subscribers are purged
	RetryDelay      time.Duration // next check delay for a feed that failed to fetch
	Policy          Policy
}

// Stats summarizes a poll cycle
type Stats struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Feeds       int           `json:"feeds"`
	FetchErrors int           `json:"fetch_errors"`
	NewEntries  int           `json:"new_entries"`
	Delivered   int           `json:"delivered"`
	Undelivered int           `json:"undelivered"`
	Resets      int           `json:"resets"`
	Error       string        `json:"error,omitempty"`
}

// Scheduler runs the poll cycle: load due feeds, check them, deliver new entries, persist the state.
// It keeps no feed state between cycles, everything goes through the store.
type Scheduler struct {
	store    Store
	checker  Checker
	notifier Notifier
	cfg      Config
	now      func() time.Time

	mu    sync.RWMutex
	stats Stats
}

// NewScheduler creates a new scheduler instance
func NewScheduler(store Store, checker Checker, notifier Notifier, cfg Config) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = feed.DefaultFetchDelay
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyRollback
	}
	return &Scheduler{store: store, checker: checker, notifier: notifier, cfg: cfg, now: time.Now}
}

// Run performs poll cycles until the context is canceled.
// A failed cycle is logged and retried after the interval, the second persistence failure
// in a row stops Run with an error wrapping ErrPersistence.
func (s *Scheduler) Run(ctx context.Context) error {
	lgr.Printf("[INFO] scheduler started, interval %v, workers %d, policy %s", s.cfg.Interval, s.cfg.MaxWorkers, s.cfg.Policy)
	defer lgr.Printf("[INFO] scheduler stopped")

	s.cleanup(ctx)
	lastCleanup := s.now()

	failures := 0
	for {
		stats, err := s.Cycle(ctx)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case err == nil:
			failures = 0
			if stats.Feeds > 0 {
				lgr.Printf("[INFO] cycle completed in %v: %d feeds, %d new entries, %d delivered, %d undelivered, %d fetch errors",
					stats.Duration, stats.Feeds, stats.NewEntries, stats.Delivered, stats.Undelivered, stats.FetchErrors)
			}
		case errors.Is(err, ErrPersistence):
			failures++
			if failures >= maxPersistFailures {
				return fmt.Errorf("%d consecutive cycles failed: %w", failures, err)
			}
			lgr.Printf("[ERROR] cycle failed, will retry: %v", err)
		default:
			lgr.Printf("[WARN] cycle failed: %v", err)
		}

		if s.now().Sub(lastCleanup) >= s.cfg.CleanupInterval {
			s.cleanup(ctx)
			lastCleanup = s.now()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.Interval):
		}
	}
}

// Cycle runs a single poll cycle. All updated feeds are written back in one batch,
// failure to load or store them is returned as ErrPersistence.
func (s *Scheduler) Cycle(ctx context.Context) (stats Stats, err error) {
	stats.StartedAt = s.now()
	defer func() {
		stats.Duration = s.now().Sub(stats.StartedAt)
		s.mu.Lock()
		s.stats = stats
		s.mu.Unlock()
	}()

	feeds, err := s.store.DueFeeds(ctx, stats.StartedAt)
	if err != nil {
		stats.Error = err.Error()
		return stats, fmt.Errorf("%w: load due feeds: %w", ErrPersistence, err)
	}
	if len(feeds) == 0 {
		return stats, nil
	}
	lgr.Printf("[DEBUG] %d feeds due", len(feeds))

	results := make([]feedResult, len(feeds))
	g := errgroup.Group{}
	g.SetLimit(s.cfg.MaxWorkers)
	for i, f := range feeds {
		g.Go(func() error {
			results[i] = s.processFeed(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	stats.Feeds = len(feeds)
	for _, r := range results {
		stats.NewEntries += r.newEntries
		stats.Delivered += r.delivered
		stats.Undelivered += r.undelivered
		if r.fetchErr {
			stats.FetchErrors++
		}
		if r.reset {
			stats.Resets++
		}
	}

	if err = s.store.UpdateFeeds(ctx, feeds); err != nil {
		stats.Error = err.Error()
		return stats, fmt.Errorf("%w: update %d feeds: %w", ErrPersistence, len(feeds), err)
	}
	return stats, nil
}

// Stats returns the summary of the last cycle
func (s *Scheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Scheduler) cleanup(ctx context.Context) {
	removed, err := s.store.CleanupFeeds(ctx)
	if err != nil {
		lgr.Printf("[WARN] failed to cleanup feeds: %v", err)
		return
	}
	if removed > 0 {
		lgr.Printf("[INFO] removed %d feeds without subscribers", removed)
	}
}
