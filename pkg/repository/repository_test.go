package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpush/pkg/domain"
)

func setupTestDB(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewRepositories(context.Background(), Config{DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repos.Close()) })
	return repos
}

func TestNewRepositories(t *testing.T) {
	repos := setupTestDB(t)
	require.NoError(t, repos.Ping(context.Background()))

	var version int
	require.NoError(t, repos.DB.Get(&version, "SELECT version FROM version"))
	assert.Equal(t, supportedVersion, version)

	var fk int
	require.NoError(t, repos.DB.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestNewRepositories_Reopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "feedpush.db") + "?_pragma=foreign_keys(1)"

	repos, err := NewRepositories(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, repos.Feed.AddFeed(ctx, domain.NewFeed("https://example.com/feed.xml", domain.Subscriber("a"), "1")))
	require.NoError(t, repos.Close())

	repos, err = NewRepositories(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	defer repos.Close()

	count, err := repos.Feed.CountFeeds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var versions int
	require.NoError(t, repos.DB.Get(&versions, "SELECT COUNT(*) FROM version"))
	assert.Equal(t, 1, versions, "version marker written once")
}

func TestNewRepositories_SchemaTooNew(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "feedpush.db")

	repos, err := NewRepositories(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	_, err = repos.DB.Exec("UPDATE version SET version = ?", supportedVersion+1)
	require.NoError(t, err)
	require.NoError(t, repos.Close())

	_, err = NewRepositories(ctx, Config{DSN: dsn})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestCriticalError(t *testing.T) {
	err := &criticalError{err: ErrNotFound}
	assert.ErrorIs(t, err, &criticalError{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, ErrNotFound.Error(), err.Error())

	assert.True(t, isLockError(assertErr("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, isLockError(assertErr("no such table: feed")))
	assert.False(t, isLockError(nil))
}

func TestWithRetry(t *testing.T) {
	t.Run("stops on critical error", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), func() error {
			calls++
			return ErrNotFound
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries lock errors", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return assertErr("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
