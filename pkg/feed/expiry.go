package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/cachecontrol/cacheobject"
)

// fetch delay limits, applied no matter what the origin server says
const (
	MinFetchDelay     = 60 * time.Second
	MaxFetchDelay     = 24 * time.Hour
	DefaultFetchDelay = 10 * time.Minute
)

// HeaderError reports a response header that can't be used for scheduling
type HeaderError struct {
	Name  string
	Value string
	Err   error
}

func (e *HeaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed header %s %q: %v", e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed header %s %q", e.Name, e.Value)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// NextFetch calculates when the feed may be checked again from response caching headers.
// Cache-Control max-age wins over Expires, with neither the default delay is used.
// The delay is clamped to [MinFetchDelay, MaxFetchDelay]; an expiration in the past
// gives the default delay. Malformed headers return *HeaderError.
func NextFetch(h http.Header, now time.Time) (time.Time, error) {
	delay, err := fetchDelay(h, now)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(clampDelay(delay)), nil
}

// NextFetchOrDefault is NextFetch falling back to the default delay on malformed headers
func NextFetchOrDefault(h http.Header, now time.Time) time.Time {
	next, err := NextFetch(h, now)
	if err != nil {
		return now.Add(DefaultFetchDelay)
	}
	return next
}

func fetchDelay(h http.Header, now time.Time) (time.Duration, error) {
	cacheControl, err := headerValue(h, "Cache-Control")
	if err != nil {
		return 0, err
	}
	if cacheControl != "" {
		directives, err := cacheobject.ParseResponseCacheControl(cacheControl)
		if err != nil {
			return 0, &HeaderError{Name: "Cache-Control", Value: cacheControl, Err: err}
		}
		if directives.MaxAge < 0 {
			return DefaultFetchDelay, nil
		}
		return time.Duration(directives.MaxAge) * time.Second, nil
	}

	expires, err := headerValue(h, "Expires")
	if err != nil {
		return 0, err
	}
	if expires == "" {
		return DefaultFetchDelay, nil
	}
	ts, err := http.ParseTime(expires)
	if err != nil {
		return 0, &HeaderError{Name: "Expires", Value: expires, Err: err}
	}
	delay := ts.Sub(now)
	if delay <= 0 {
		return DefaultFetchDelay, nil
	}
	return delay, nil
}

func clampDelay(d time.Duration) time.Duration {
	if d < MinFetchDelay {
		return MinFetchDelay
	}
	if d > MaxFetchDelay {
		return MaxFetchDelay
	}
	return d
}

// headerValue returns the first value of the header, rejecting anything that is not visible ASCII
func headerValue(h http.Header, name string) (string, error) {
	v := h.Get(name)
	for i := 0; i < len(v); i++ {
		if c := v[i]; (c < 0x20 && c != '\t') || c > 0x7e {
			return "", &HeaderError{Name: name, Value: v}
		}
	}
	return strings.TrimSpace(v), nil
}
