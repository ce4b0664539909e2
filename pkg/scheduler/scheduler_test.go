package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/feed"
	"github.com/umputun/feedpush/pkg/notify"
	"github.com/umputun/feedpush/pkg/scheduler/mocks"
)

func newStore(feeds ...*domain.Feed) *mocks.StoreMock {
	return &mocks.StoreMock{
		DueFeedsFunc:     func(ctx context.Context, now time.Time) ([]*domain.Feed, error) { return feeds, nil },
		UpdateFeedsFunc:  func(ctx context.Context, feeds []*domain.Feed) error { return nil },
		CleanupFeedsFunc: func(ctx context.Context) (int64, error) { return 0, nil },
	}
}

// checkerWith returns entries and imitates a successful fetch updating the cache state
func checkerWith(now time.Time, entries ...domain.Entry) *mocks.CheckerMock {
	return &mocks.CheckerMock{CheckFunc: func(ctx context.Context, f *domain.Feed) ([]domain.Entry, error) {
		f.LastFetch = now
		f.NextFetch = now.Add(feed.DefaultFetchDelay)
		f.CacheValidator = `"v2"`
		return f.Unseen(entries), nil
	}}
}

func notifierWith(res notify.Result) *mocks.NotifierMock {
	return &mocks.NotifierMock{DeliverFunc: func(ctx context.Context, entry domain.Entry, subs []domain.Subscriber) notify.Result {
		return res
	}}
}

func TestScheduler_Cycle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e1 := domain.Entry{ID: "1", Title: "one"}
	e2 := domain.Entry{ID: "2", Title: "two"}

	t.Run("delivered entries marked seen oldest first", func(t *testing.T) {
		f := domain.NewFeed("https://example.com/feed", domain.Subscriber("a"))
		store := newStore(f)
		notifier := notifierWith(notify.Result{Delivered: 1})
		s := NewScheduler(store, checkerWith(now, e2, e1), notifier, Config{})
		s.now = func() time.Time { return now }

		stats, err := s.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Feeds)
		assert.Equal(t, 2, stats.NewEntries)
		assert.Equal(t, 2, stats.Delivered)
		assert.Equal(t, 0, stats.Undelivered)

		calls := notifier.DeliverCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, "1", calls[0].Entry.ID)
		assert.Equal(t, "2", calls[1].Entry.ID)
		assert.Equal(t, []domain.Subscriber{domain.Subscriber("a")}, calls[0].Subs)

		require.Len(t, store.UpdateFeedsCalls(), 1)
		saved := store.UpdateFeedsCalls()[0].Feeds
		require.Len(t, saved, 1)
		assert.Equal(t, []string{"1", "2"}, saved[0].SeenIDs())
		assert.Equal(t, `"v2"`, saved[0].CacheValidator)
		assert.Equal(t, stats, s.Stats())
	})

	t.Run("full failure rewinds the feed", func(t *testing.T) {
		f := domain.NewFeed("https://example.com/feed", domain.Subscriber("a"), "0")
		f.CacheValidator = `"v1"`
		store := newStore(f)
		notifier := notifierWith(notify.Result{Failed: 1})
		s := NewScheduler(store, checkerWith(now, e2, e1), notifier, Config{})
		s.now = func() time.Time { return now }

		stats, err := s.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Undelivered)
		assert.Equal(t, 1, stats.Resets)
		assert.Len(t, notifier.DeliverCalls(), 1, "delivery stops at the first entry nobody got")

		saved := store.UpdateFeedsCalls()[0].Feeds[0]
		assert.Equal(t, []string{"0"}, saved.SeenIDs())
		assert.Equal(t, []string{"1", "2"}, saved.Rewound())
		assert.Empty(t, saved.CacheValidator)
		assert.Equal(t, int64(0), saved.LastFetch.Unix())
	})

	t.Run("full failure retries after retry delay, not cache lifetime", func(t *testing.T) {
		f := domain.NewFeed("https://example.com/feed", domain.Subscriber("a"))
		store := newStore(f)
		checker := &mocks.CheckerMock{CheckFunc: func(ctx context.Context, f *domain.Feed) ([]domain.Entry, error) {
			f.LastFetch = now
			f.NextFetch = now.Add(feed.MaxFetchDelay)
			return f.Unseen([]domain.Entry{e1}), nil
		}}
		s := NewScheduler(store, checker, notifierWith(notify.Result{Failed: 1}), Config{RetryDelay: 5 * time.Minute})
		s.now = func() time.Time { return now }

		stats, err := s.Cycle(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, stats.Resets)
		saved := store.UpdateFeedsCalls()[0].Feeds[0]
		assert.Equal(t, now.Add(5*time.Minute), saved.NextFetch)
	})

	t.Run("full failure after partial delivery strikes out the whole cycle", func(t *testing.T) {
		f := domain.NewFeed("https://example.com/feed", domain.Subscriber("a"))
		store := newStore(f)
		notifier := &mocks.NotifierMock{DeliverFunc: func(ctx context.Context, entry domain.Entry, subs []domain.Subscriber) notify.Result {
			if entry.ID == "1" {
				return notify.Result{Delivered: 1}
			}
			return notify.Result{Failed: 1}
		}}
		s := NewScheduler(store, checkerWith(now, e2, e1), notifier, Config{})

		_, err := s.Cycle(context.Background())
		require.NoError(t, err)
		saved := store.UpdateFeedsCalls()[0].Feeds[0]
		assert.Empty(t, saved.SeenIDs())
		assert.Equal(t, []string{"1", "2"}, saved.Rewound())
	})

	t.Run("drop policy marks undelivered seen", func(t *testing.T) {
		f := domain.NewFeed("https://example.com/feed", domain.Subscriber("a"))
		store := newStore(f)
		notifier := notifierWith(notify.Result{Failed: 2})
		s := NewScheduler(store, checkerWith(now, e2, e1), notifier, Config{Policy: PolicyDrop})

		stats, err := s.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Undelivered)
		assert.Equal(t, 0, stats.Resets)
		assert.Len(t, notifier.DeliverCalls(), 2)

		saved := store.UpdateFeedsCalls()[0].Feeds[0]
		assert.Equal(t, []string{"1", "2"}, saved.SeenIDs())
		assert.Equal(t, `"v2"`, saved.CacheValidator)
	})

	t.Run("one delivered one unreachable", func(t *testing.T) {
		f := domain.NewFeed("https://example.com/feed", domain.Subscriber("a"))
		f.AddSubscriber(domain.Subscriber("b"))
		store := newStore(f)
		notifier := notifierWith(notify.Result{Delivered: 1, Unreachable: 1})
		s := NewScheduler(store, checkerWith(now, domain.Entry{ID: "4"}), notifier, Config{})

		_, err := s.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"4"}, store.UpdateFeedsCalls()[0].Feeds[0].SeenIDs())
	})

	t.Run("fetch error backs off and keeps state", func(t *testing.T) {
		broken := domain.NewFeed("https://example.com/broken", domain.Subscriber("a"), "1")
		broken.CacheValidator = `"v1"`
		good := domain.NewFeed("https://example.com/good", domain.Subscriber("a"))
		store := newStore(broken, good)
		checker := &mocks.CheckerMock{CheckFunc: func(ctx context.Context, f *domain.Feed) ([]domain.Entry, error) {
			if f.URL == "https://example.com/broken" {
				return nil, &feed.FetchError{URL: f.URL, Kind: feed.ErrStatus, StatusCode: 500}
			}
			return []domain.Entry{{ID: "x"}}, nil
		}}
		s := NewScheduler(store, checker, notifierWith(notify.Result{Delivered: 1}), Config{})
		s.now = func() time.Time { return now }

		stats, err := s.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Feeds)
		assert.Equal(t, 1, stats.FetchErrors)
		assert.Equal(t, 1, stats.Delivered)

		saved := store.UpdateFeedsCalls()[0].Feeds
		require.Len(t, saved, 2)
		assert.Equal(t, now.Add(feed.DefaultFetchDelay), saved[0].NextFetch)
		assert.Equal(t, []string{"1"}, saved[0].SeenIDs())
		assert.Equal(t, `"v1"`, saved[0].CacheValidator)
		assert.Equal(t, []string{"x"}, saved[1].SeenIDs())
	})

	t.Run("nothing due", func(t *testing.T) {
		store := newStore()
		s := NewScheduler(store, &mocks.CheckerMock{}, &mocks.NotifierMock{}, Config{})
		stats, err := s.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Feeds)
		assert.Empty(t, store.UpdateFeedsCalls())
	})

	t.Run("store errors", func(t *testing.T) {
		store := newStore(domain.NewFeed("https://example.com/feed", domain.Subscriber("a")))
		store.UpdateFeedsFunc = func(ctx context.Context, feeds []*domain.Feed) error { return errors.New("disk full") }
		s := NewScheduler(store, checkerWith(now), &mocks.NotifierMock{}, Config{})
		stats, err := s.Cycle(context.Background())
		require.ErrorIs(t, err, ErrPersistence)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, "disk full", stats.Error)

		store.DueFeedsFunc = func(ctx context.Context, now time.Time) ([]*domain.Feed, error) { return nil, errors.New("locked") }
		_, err = s.Cycle(context.Background())
		require.ErrorIs(t, err, ErrPersistence)
	})
}

func TestScheduler_Run(t *testing.T) {
	t.Run("stops after two persistence failures in a row", func(t *testing.T) {
		store := newStore(domain.NewFeed("https://example.com/feed", domain.Subscriber("a")))
		store.UpdateFeedsFunc = func(ctx context.Context, feeds []*domain.Feed) error { return errors.New("disk full") }
		s := NewScheduler(store, checkerWith(time.Now()), &mocks.NotifierMock{}, Config{Interval: time.Millisecond})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.Run(ctx)
		require.ErrorIs(t, err, ErrPersistence)
		assert.Len(t, store.UpdateFeedsCalls(), 2)
		assert.Len(t, store.CleanupFeedsCalls(), 1, "cleanup on start")
	})

	t.Run("single failure tolerated", func(t *testing.T) {
		var cycles int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := newStore(domain.NewFeed("https://example.com/feed", domain.Subscriber("a")))
		store.UpdateFeedsFunc = func(ctx context.Context, feeds []*domain.Feed) error {
			n := atomic.AddInt32(&cycles, 1)
			if n >= 5 {
				cancel()
			}
			if n%2 == 1 {
				return errors.New("busy")
			}
			return nil
		}
		s := NewScheduler(store, checkerWith(time.Now()), &mocks.NotifierMock{}, Config{Interval: time.Millisecond})
		require.NoError(t, s.Run(ctx))
		assert.GreaterOrEqual(t, atomic.LoadInt32(&cycles), int32(5))
	})

	t.Run("periodic cleanup", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := newStore()
		store.CleanupFeedsFunc = func(ctx context.Context) (int64, error) {
			if len(store.CleanupFeedsCalls()) >= 3 {
				cancel()
			}
			return 1, nil
		}
		s := NewScheduler(store, &mocks.CheckerMock{}, &mocks.NotifierMock{},
			Config{Interval: time.Millisecond, CleanupInterval: time.Nanosecond})
		require.NoError(t, s.Run(ctx))
		assert.GreaterOrEqual(t, len(store.CleanupFeedsCalls()), 3)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := NewScheduler(newStore(), &mocks.CheckerMock{}, &mocks.NotifierMock{}, Config{})
		assert.NoError(t, s.Run(ctx))
	})
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(newStore(), &mocks.CheckerMock{}, &mocks.NotifierMock{}, Config{})
	assert.Equal(t, 60*time.Second, s.cfg.Interval)
	assert.Equal(t, 5, s.cfg.MaxWorkers)
	assert.Equal(t, time.Hour, s.cfg.CleanupInterval)
	assert.Equal(t, feed.DefaultFetchDelay, s.cfg.RetryDelay)
	assert.Equal(t, PolicyRollback, s.cfg.Policy)
}
