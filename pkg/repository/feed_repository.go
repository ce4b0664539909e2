package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedpush/pkg/domain"
)

// FeedRepository handles feed, entry and subscriber storage
type FeedRepository struct {
	db *sqlx.DB
}

type feedRow struct {
	ID             int64          `db:"id"`
	URL            string         `db:"url"`
	LastCheck      int64          `db:"last_check"`
	NextCheck      int64          `db:"next_check"`
	CacheValidator sql.NullString `db:"cache_validator"`
}

type entryRow struct {
	FeedID  int64  `db:"feed_id"`
	EntryID string `db:"entry_id"`
}

type subscriberRow struct {
	FeedID int64  `db:"feed_id"`
	Handle []byte `db:"subscriber_handle"`
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// AddFeed stores a new feed with its seen entries and subscribers.
// If the url is already known only the subscribers are added, existing feed state is kept.
// feed.ID is set to the stored id.
func (r *FeedRepository) AddFeed(ctx context.Context, feed *domain.Feed) error {
	return withRetry(ctx, func() error {
		return inTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO feed (url, last_check, next_check, cache_validator) VALUES (?, ?, ?, ?)
				 ON CONFLICT(url) DO NOTHING`,
				feed.URL, unixOrZero(feed.LastFetch), unixOrZero(feed.NextFetch), nullString(feed.CacheValidator))
			if err != nil {
				return fmt.Errorf("insert feed %s: %w", feed.URL, err)
			}
			created, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("get affected rows: %w", err)
			}

			var id int64
			if err := tx.GetContext(ctx, &id, `SELECT id FROM feed WHERE url = ?`, feed.URL); err != nil {
				return fmt.Errorf("get feed id %s: %w", feed.URL, err)
			}

			if created == 1 {
				if err := insertEntries(ctx, tx, id, feed.SeenIDs()); err != nil {
					return err
				}
			}
			for _, sub := range feed.Subscribers {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO subscriber (feed_id, subscriber_handle) VALUES (?, ?)`, id, []byte(sub)); err != nil {
					return fmt.Errorf("insert subscriber: %w", err)
				}
			}
			feed.ID = id
			return nil
		})
	})
}

// AddSubscriber subscribes sub to an already stored feed.
// Returns false if sub was subscribed before, ErrNotFound if the feed is not stored.
func (r *FeedRepository) AddSubscriber(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
	var added bool
	err := withRetry(ctx, func() error {
		return inTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
			var id int64
			err := tx.GetContext(ctx, &id, `SELECT id FROM feed WHERE url = ?`, url)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("get feed id %s: %w", url, err)
			}

			res, err := tx.ExecContext(ctx,
				`INSERT INTO subscriber (feed_id, subscriber_handle) VALUES (?, ?)`, id, []byte(sub))
			if err != nil {
				return fmt.Errorf("insert subscriber: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("get affected rows: %w", err)
			}
			added = n == 1
			return nil
		})
	})
	return added, err
}

// RemoveSubscriber unsubscribes sub from the feed, returns true if the subscription existed.
// The feed itself stays until CleanupFeeds.
func (r *FeedRepository) RemoveSubscriber(ctx context.Context, url string, sub domain.Subscriber) (bool, error) {
	var removed bool
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM subscriber WHERE subscriber_handle = ? AND feed_id = (SELECT id FROM feed WHERE url = ?)`,
			[]byte(sub), url)
		if err != nil {
			return fmt.Errorf("delete subscriber: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("get affected rows: %w", err)
		}
		removed = n == 1
		return nil
	})
	return removed, err
}

// ListSubscriptions returns urls of all feeds sub is subscribed to, sorted
func (r *FeedRepository) ListSubscriptions(ctx context.Context, sub domain.Subscriber) ([]string, error) {
	urls := []string{}
	err := r.db.SelectContext(ctx, &urls,
		`SELECT f.url FROM feed f JOIN subscriber s ON s.feed_id = f.id
		 WHERE s.subscriber_handle = ? ORDER BY f.url`, []byte(sub))
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return urls, nil
}

// DueFeeds returns feeds with next check at or before now, feeds without subscribers are skipped
func (r *FeedRepository) DueFeeds(ctx context.Context, now time.Time) ([]*domain.Feed, error) {
	var rows []feedRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, url, last_check, next_check, cache_validator FROM feed
		 WHERE next_check <= ? AND EXISTS (SELECT 1 FROM subscriber s WHERE s.feed_id = feed.id)
		 ORDER BY next_check, id`, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("get due feeds: %w", err)
	}
	return r.loadFeeds(ctx, rows)
}

// GetFeed returns the stored feed by url, ErrNotFound if there is none
func (r *FeedRepository) GetFeed(ctx context.Context, url string) (*domain.Feed, error) {
	var row feedRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, url, last_check, next_check, cache_validator FROM feed WHERE url = ?`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feed %s: %w", url, err)
	}
	feeds, err := r.loadFeeds(ctx, []feedRow{row})
	if err != nil {
		return nil, err
	}
	return feeds[0], nil
}

// UpdateFeeds writes polling state of all feeds in a single transaction: check times,
// cache validator, entries marked seen since loading and entries struck out by a full-failure reset.
// Feeds are matched by id, a feed removed from the store in the meantime is skipped even if
// its url was subscribed again.
func (r *FeedRepository) UpdateFeeds(ctx context.Context, feeds []*domain.Feed) error {
	if len(feeds) == 0 {
		return nil
	}
	return withRetry(ctx, func() error {
		return inTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
			for _, feed := range feeds {
				if feed.ID == 0 {
					continue
				}
				res, err := tx.ExecContext(ctx,
					`UPDATE feed SET last_check = ?, next_check = ?, cache_validator = ? WHERE id = ?`,
					unixOrZero(feed.LastFetch), unixOrZero(feed.NextFetch), nullString(feed.CacheValidator), feed.ID)
				if err != nil {
					return fmt.Errorf("update feed %s: %w", feed.URL, err)
				}
				n, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("get affected rows: %w", err)
				}
				if n == 0 {
					continue
				}
				if err := insertEntries(ctx, tx, feed.ID, feed.Marked()); err != nil {
					return err
				}
				for _, entryID := range feed.Rewound() {
					if _, err := tx.ExecContext(ctx,
						`DELETE FROM entry WHERE feed_id = ? AND entry_id = ?`, feed.ID, entryID); err != nil {
						return fmt.Errorf("delete entry %s: %w", entryID, err)
					}
				}
			}
			return nil
		})
	})
}

// CleanupFeeds removes feeds nobody is subscribed to, with their entries.
// Returns the number of removed feeds.
func (r *FeedRepository) CleanupFeeds(ctx context.Context) (int64, error) {
	var removed int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM feed WHERE NOT EXISTS (SELECT 1 FROM subscriber s WHERE s.feed_id = feed.id)`)
		if err != nil {
			return fmt.Errorf("cleanup feeds: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("get affected rows: %w", err)
		}
		return nil
	})
	return removed, err
}

// CountFeeds returns the number of stored feeds
func (r *FeedRepository) CountFeeds(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM feed`); err != nil {
		return 0, fmt.Errorf("count feeds: %w", err)
	}
	return count, nil
}

// loadFeeds makes domain feeds from rows, loading entries and subscribers of all of them at once
func (r *FeedRepository) loadFeeds(ctx context.Context, rows []feedRow) ([]*domain.Feed, error) {
	res := make([]*domain.Feed, 0, len(rows))
	if len(rows) == 0 {
		return res, nil
	}

	ids := make([]int64, 0, len(rows))
	byID := make(map[int64]*domain.Feed, len(rows))
	for _, row := range rows {
		f := toDomainFeed(row)
		ids = append(ids, row.ID)
		byID[row.ID] = f
		res = append(res, f)
	}

	query, args, err := sqlx.In(`SELECT feed_id, entry_id FROM entry WHERE feed_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build entries query: %w", err)
	}
	var entries []entryRow
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	for _, e := range entries {
		byID[e.FeedID].Seen[e.EntryID] = struct{}{}
	}

	query, args, err = sqlx.In(`SELECT feed_id, subscriber_handle FROM subscriber WHERE feed_id IN (?) ORDER BY rowid`, ids)
	if err != nil {
		return nil, fmt.Errorf("build subscribers query: %w", err)
	}
	var subs []subscriberRow
	if err := r.db.SelectContext(ctx, &subs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get subscribers: %w", err)
	}
	for _, s := range subs {
		byID[s.FeedID].AddSubscriber(domain.Subscriber(s.Handle))
	}
	return res, nil
}

func insertEntries(ctx context.Context, tx *sqlx.Tx, feedID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, `INSERT INTO entry (feed_id, entry_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, feedID, id); err != nil {
			return fmt.Errorf("insert entry %s: %w", id, err)
		}
	}
	return nil
}

func toDomainFeed(row feedRow) *domain.Feed {
	return &domain.Feed{
		ID:             row.ID,
		URL:            row.URL,
		Seen:           map[string]struct{}{},
		LastFetch:      time.Unix(row.LastCheck, 0).UTC(),
		NextFetch:      time.Unix(row.NextCheck, 0).UTC(),
		CacheValidator: row.CacheValidator.String,
	}
}

// unixOrZero stores times before the epoch, including the zero time, as 0
func unixOrZero(t time.Time) int64 {
	if t.IsZero() || t.Unix() < 0 {
		return 0
	}
	return t.Unix()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
