package domain

import (
	"sort"
	"time"
)

// Feed represents a subscribed feed with its polling state.
// It is a short-lived value: loaded from the store for one poll cycle or one
// command, mutated in memory and written back.
type Feed struct {
	ID             int64
	URL            string
	Subscribers    []Subscriber
	Seen           map[string]struct{}
	LastFetch      time.Time // zero (unix epoch when loaded) means the next fetch is unconditional
	NextFetch      time.Time
	CacheValidator string // entity tag from the last successful fetch, empty if none

	marked  map[string]struct{} // entries marked seen since the feed was loaded, pending insertion
	rewound map[string]struct{} // entries struck out by ResetEntries, pending deletion in the store
}

// Entry is a single item of a feed document
type Entry struct {
	ID    string
	Title string
	Link  string
}

// NewFeed makes a feed record with the given subscriber and seen entries
func NewFeed(url string, sub Subscriber, seen ...string) *Feed {
	f := &Feed{URL: url, Seen: make(map[string]struct{}, len(seen))}
	f.AddSubscriber(sub)
	for _, id := range seen {
		f.Seen[id] = struct{}{}
	}
	return f
}

// AddSubscriber adds sub to the feed, duplicates are ignored.
// Returns true if the subscriber was not there before.
func (f *Feed) AddSubscriber(sub Subscriber) bool {
	if len(sub) == 0 {
		return false
	}
	for _, s := range f.Subscribers {
		if s.Equal(sub) {
			return false
		}
	}
	f.Subscribers = append(f.Subscribers, sub)
	return true
}

// HasSeen reports whether the entry id was already delivered or present at subscription time
func (f *Feed) HasSeen(id string) bool {
	_, ok := f.Seen[id]
	return ok
}

// MarkSeen adds entry ids to the seen set
func (f *Feed) MarkSeen(ids ...string) {
	if f.Seen == nil {
		f.Seen = make(map[string]struct{}, len(ids))
	}
	if f.marked == nil {
		f.marked = make(map[string]struct{}, len(ids))
	}
	for _, id := range ids {
		f.Seen[id] = struct{}{}
		f.marked[id] = struct{}{}
		delete(f.rewound, id)
	}
}

// Unseen filters entries down to those not in the seen set, keeping the input order.
// Duplicated ids within entries are returned once.
func (f *Feed) Unseen(entries []Entry) []Entry {
	res := make([]Entry, 0, len(entries))
	dups := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if f.HasSeen(e.ID) {
			continue
		}
		if _, ok := dups[e.ID]; ok {
			continue
		}
		dups[e.ID] = struct{}{}
		res = append(res, e)
	}
	return res
}

// ResetEntries performs the full-failure reset: the given entries are struck out of
// the seen set and the cache state is rewound, so the next fetch is unconditional
// and the entries are offered again.
func (f *Feed) ResetEntries(entries []Entry) {
	f.LastFetch = time.Unix(0, 0).UTC()
	f.CacheValidator = ""
	if f.rewound == nil {
		f.rewound = make(map[string]struct{}, len(entries))
	}
	for _, e := range entries {
		delete(f.Seen, e.ID)
		delete(f.marked, e.ID)
		f.rewound[e.ID] = struct{}{}
	}
}

// ResetExpiry schedules the next fetch after the fallback delay
func (f *Feed) ResetExpiry(now time.Time, delay time.Duration) {
	f.NextFetch = now.Add(delay)
}

// Marked returns ids added by MarkSeen, sorted
func (f *Feed) Marked() []string {
	return sortedKeys(f.marked)
}

// Rewound returns ids struck out by ResetEntries, sorted
func (f *Feed) Rewound() []string {
	return sortedKeys(f.rewound)
}

// SeenIDs returns the seen set as a sorted slice
func (f *Feed) SeenIDs() []string {
	return sortedKeys(f.Seen)
}

// IsOrphan reports whether nobody is subscribed to the feed anymore
func (f *Feed) IsOrphan() bool {
	return len(f.Subscribers) == 0
}

func sortedKeys(m map[string]struct{}) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
