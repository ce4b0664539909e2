package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/feed"
	"github.com/umputun/feedpush/pkg/repository"
	"github.com/umputun/feedpush/pkg/service/mocks"
)

func TestSubscriptions_Add(t *testing.T) {
	sub := domain.Subscriber("alice")

	t.Run("existing feed", func(t *testing.T) {
		store := &mocks.StoreMock{AddSubscriberFunc: func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
			return true, nil
		}}
		fetcher := &mocks.FetcherMock{}
		url, err := NewSubscriptions(store, fetcher).Add(context.Background(), " HTTPS://Example.com/feed.xml#x ", sub)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/feed.xml", url)
		require.Len(t, store.AddSubscriberCalls(), 1)
		assert.Equal(t, "https://example.com/feed.xml", store.AddSubscriberCalls()[0].Url)
		assert.Empty(t, fetcher.SubscribeCalls())
	})

	t.Run("already subscribed", func(t *testing.T) {
		store := &mocks.StoreMock{AddSubscriberFunc: func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
			return false, nil
		}}
		_, err := NewSubscriptions(store, &mocks.FetcherMock{}).Add(context.Background(), "https://example.com/feed.xml", sub)
		require.NoError(t, err)
	})

	t.Run("new feed", func(t *testing.T) {
		store := &mocks.StoreMock{
			AddSubscriberFunc: func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
				return false, repository.ErrNotFound
			},
			AddFeedFunc: func(ctx context.Context, f *domain.Feed) error { return nil },
		}
		fetcher := &mocks.FetcherMock{SubscribeFunc: func(ctx context.Context, url string, sub domain.Subscriber) (*domain.Feed, error) {
			return domain.NewFeed(url, sub, "1", "2"), nil
		}}
		url, err := NewSubscriptions(store, fetcher).Add(context.Background(), "https://example.com/feed.xml", sub)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/feed.xml", url)
		require.Len(t, store.AddFeedCalls(), 1)
		added := store.AddFeedCalls()[0].Feed
		assert.Equal(t, url, added.URL)
		assert.Equal(t, []string{"1", "2"}, added.SeenIDs())
	})

	t.Run("fetch failed", func(t *testing.T) {
		store := &mocks.StoreMock{AddSubscriberFunc: func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
			return false, repository.ErrNotFound
		}}
		fetcher := &mocks.FetcherMock{SubscribeFunc: func(ctx context.Context, url string, sub domain.Subscriber) (*domain.Feed, error) {
			return nil, &feed.FetchError{URL: url, Kind: feed.ErrStatus, StatusCode: 404}
		}}
		_, err := NewSubscriptions(store, fetcher).Add(context.Background(), "https://example.com/feed.xml", sub)
		var fe *feed.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, 404, fe.StatusCode)
		assert.Empty(t, store.AddFeedCalls())
	})

	t.Run("store failed", func(t *testing.T) {
		store := &mocks.StoreMock{AddSubscriberFunc: func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
			return false, errors.New("locked")
		}}
		fetcher := &mocks.FetcherMock{}
		_, err := NewSubscriptions(store, fetcher).Add(context.Background(), "https://example.com/feed.xml", sub)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")
		assert.Empty(t, fetcher.SubscribeCalls())
	})

	t.Run("invalid url", func(t *testing.T) {
		store := &mocks.StoreMock{}
		_, err := NewSubscriptions(store, &mocks.FetcherMock{}).Add(context.Background(), "ftp://example.com/feed", sub)
		require.ErrorIs(t, err, ErrInvalidURL)
		assert.Empty(t, store.AddSubscriberCalls())
	})
}

func TestSubscriptions_Remove(t *testing.T) {
	store := &mocks.StoreMock{RemoveSubscriberFunc: func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
		return url == "https://example.com/feed.xml", nil
	}}
	svc := NewSubscriptions(store, &mocks.FetcherMock{})

	removed, err := svc.Remove(context.Background(), "https://EXAMPLE.com/feed.xml", domain.Subscriber("alice"))
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(context.Background(), "https://example.com/other.xml", domain.Subscriber("alice"))
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Remove(context.Background(), "", domain.Subscriber("alice"))
	require.ErrorIs(t, err, ErrInvalidURL)

	store.RemoveSubscriberFunc = func(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
		return false, errors.New("db error")
	}
	_, err = svc.Remove(context.Background(), "https://example.com/feed.xml", domain.Subscriber("alice"))
	require.Error(t, err)
}

func TestSubscriptions_List(t *testing.T) {
	store := &mocks.StoreMock{ListSubscriptionsFunc: func(ctx context.Context, sub domain.Subscriber) ([]string, error) {
		if string(sub) == "broken" {
			return nil, errors.New("db error")
		}
		return []string{"https://a.example.com/", "https://b.example.com/"}, nil
	}}
	svc := NewSubscriptions(store, &mocks.FetcherMock{})

	urls, err := svc.List(context.Background(), domain.Subscriber("alice"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com/", "https://b.example.com/"}, urls)

	_, err = svc.List(context.Background(), domain.Subscriber("broken"))
	require.Error(t, err)
}

func TestSubscriptions_WithRepository(t *testing.T) {
	ctx := context.Background()
	repos, err := repository.NewRepositories(ctx, repository.Config{DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	defer repos.Close()

	fetcher := &mocks.FetcherMock{SubscribeFunc: func(ctx context.Context, url string, sub domain.Subscriber) (*domain.Feed, error) {
		return domain.NewFeed(url, sub, "1"), nil
	}}
	svc := NewSubscriptions(repos.Feed, fetcher)

	_, err = svc.Add(ctx, "https://example.com/feed.xml", domain.Subscriber("alice"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, "https://example.com/feed.xml", domain.Subscriber("bob"))
	require.NoError(t, err)
	assert.Len(t, fetcher.SubscribeCalls(), 1, "second subscriber joins the stored feed")

	urls, err := svc.List(ctx, domain.Subscriber("bob"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/feed.xml"}, urls)

	removed, err := svc.Remove(ctx, "https://example.com/feed.xml", domain.Subscriber("bob"))
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.Remove(ctx, "https://example.com/feed.xml", domain.Subscriber("bob"))
	require.NoError(t, err)
	assert.False(t, removed)
}
