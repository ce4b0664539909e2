package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpush/pkg/domain"
)

// ErrorKind classifies fetch failures
type ErrorKind int

// fetch failure kinds
const (
	ErrNetwork ErrorKind = iota
	ErrStatus
	ErrParse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrStatus:
		return "status"
	case ErrParse:
		return "parse"
	default:
		return "network"
	}
}

// FetchError is returned for any failed fetch, the feed state is left untouched
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == ErrStatus {
		return fmt.Sprintf("fetch %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher performs conditional HTTP fetches of feeds
type Fetcher struct {
	client      *http.Client
	parser      *Parser
	userAgent   string
	maxBodySize int64
	now         func() time.Time
}

// FetcherParams defines fetcher options
type FetcherParams struct {
	Timeout     time.Duration // per request, including body read
	UserAgent   string
	MaxBodySize int64 // bytes, 0 means 10MB
}

// NewFetcher makes a fetcher with its own http client
func NewFetcher(params FetcherParams) *Fetcher {
	if params.Timeout == 0 {
		params.Timeout = 30 * time.Second
	}
	if params.UserAgent == "" {
		params.UserAgent = "feedpush/1.0"
	}
	if params.MaxBodySize == 0 {
		params.MaxBodySize = 10 * 1024 * 1024
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: params.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		parser:      NewParser(),
		userAgent:   params.UserAgent,
		maxBodySize: params.MaxBodySize,
		now:         time.Now,
	}
}

// Subscribe fetches the feed unconditionally and makes a new record for it.
// Every entry present at subscription time is marked as seen, so only later
// entries are delivered.
func (f *Fetcher) Subscribe(ctx context.Context, feedURL string, sub domain.Subscriber) (*domain.Feed, error) {
	resp, err := f.get(ctx, feedURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: feedURL, Kind: ErrStatus, StatusCode: resp.StatusCode}
	}

	entries, err := f.parser.Parse(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrParse, Err: err}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	res := domain.NewFeed(feedURL, sub, ids...)
	f.updateCacheState(res, resp)
	return res, nil
}

// Check performs a conditional fetch of the feed and returns entries not seen before.
// A "not modified" response is a success with no entries. On success LastFetch,
// NextFetch and CacheValidator of the feed are updated; the seen set is not touched,
// marking entries seen is up to the caller once they are delivered.
func (f *Fetcher) Check(ctx context.Context, feed *domain.Feed) ([]domain.Entry, error) {
	conditions := map[string]string{}
	if !feed.LastFetch.IsZero() && feed.LastFetch.Unix() > 0 {
		conditions["If-Modified-Since"] = feed.LastFetch.UTC().Format(http.TimeFormat)
	}
	if feed.CacheValidator != "" {
		conditions["If-None-Match"] = feed.CacheValidator
	}

	resp, err := f.get(ctx, feed.URL, conditions)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize))
		lgr.Printf("[DEBUG] feed %s not modified", feed.URL)
		f.updateCacheState(feed, resp)
		return []domain.Entry{}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: feed.URL, Kind: ErrStatus, StatusCode: resp.StatusCode}
	}

	entries, err := f.parser.Parse(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: feed.URL, Kind: ErrParse, Err: err}
	}

	f.updateCacheState(feed, resp)
	return feed.Unseen(entries), nil
}

func (f *Fetcher) get(ctx context.Context, feedURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	addFeedHeaders(req, f.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrNetwork, Err: err}
	}
	return resp, nil
}

// updateCacheState records a successful fetch: fetch time, next allowed fetch and entity tag.
// A 304 without ETag keeps the old validator, a full response without ETag clears it.
func (f *Fetcher) updateCacheState(feed *domain.Feed, resp *http.Response) {
	now := f.now()
	feed.LastFetch = now

	next, err := NextFetch(resp.Header, now)
	if err != nil {
		var hdrErr *HeaderError
		if errors.As(err, &hdrErr) {
			lgr.Printf("[DEBUG] feed %s: %v, using default delay", feed.URL, hdrErr)
		}
		next = now.Add(DefaultFetchDelay)
	}
	feed.NextFetch = next

	etag, err := headerValue(resp.Header, "ETag")
	switch {
	case err != nil:
		lgr.Printf("[DEBUG] feed %s: %v, validator dropped", feed.URL, err)
		feed.CacheValidator = ""
	case etag != "":
		feed.CacheValidator = etag
	case resp.StatusCode != http.StatusNotModified:
		feed.CacheValidator = ""
	}
}
