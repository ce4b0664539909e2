package scheduler

import (
	"context"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpush/pkg/domain"
)

type feedResult struct {
	fetchErr    bool
	newEntries  int
	delivered   int
	undelivered int
	reset       bool
}

// processFeed checks one feed and delivers its new entries, oldest first.
// The feed is updated in place and left for the batch write; nothing is stored here.
//
// An entry is marked seen once delivery was attempted for every subscriber. If nobody got
// an entry and the policy is rollback, delivery for the feed stops, all entries of this
// cycle are struck out and the cache state is rewound, so the next check is unconditional,
// happens after RetryDelay no matter what the cache headers said, and offers them again.
func (s *Scheduler) processFeed(ctx context.Context, f *domain.Feed) (res feedResult) {
	entries, err := s.checker.Check(ctx, f)
	if err != nil {
		lgr.Printf("[WARN] failed to check feed %s: %v", f.URL, err)
		f.ResetExpiry(s.now(), s.cfg.RetryDelay)
		return feedResult{fetchErr: true}
	}
	res.newEntries = len(entries)
	if len(entries) == 0 {
		return res
	}
	lgr.Printf("[DEBUG] feed %s has %d new entries", f.URL, len(entries))

	// feed documents list newest first
	for i := len(entries) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return res
		}
		entry := entries[i]
		result := s.notifier.Deliver(ctx, entry, f.Subscribers)
		if !result.AllFailed() {
			res.delivered++
			f.MarkSeen(entry.ID)
			continue
		}

		res.undelivered++
		if s.cfg.Policy == PolicyDrop {
			lgr.Printf("[WARN] entry %s of %s not delivered to anyone, dropped", entry.ID, f.URL)
			f.MarkSeen(entry.ID)
			continue
		}

		lgr.Printf("[WARN] entry %s of %s not delivered to anyone (%s), feed rewound", entry.ID, f.URL, result)
		f.ResetEntries(entries)
		f.ResetExpiry(s.now(), s.cfg.RetryDelay)
		res.reset = true
		return res
	}
	return res
}
