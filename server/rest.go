package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpush/pkg/domain"
	"github.com/umputun/feedpush/pkg/feed"
	"github.com/umputun/feedpush/pkg/service"
)

// subscriptionRequest is the body of subscribe and unsubscribe calls,
// subscriber is the base64url form of the handle
type subscriptionRequest struct {
	URL        string `json:"url"`
	Subscriber string `json:"subscriber"`
}

// statusHandler returns server status with the last poll cycle summary
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.db.CountFeeds(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to count feeds: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	status := map[string]any{
		"status":     "ok",
		"version":    s.version,
		"time":       time.Now().UTC(),
		"feeds":      feeds,
		"last_cycle": s.scheduler.Stats(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// listSubscriptionsHandler returns feeds of the subscriber
func (s *Server) listSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	sub, err := domain.ParseSubscriber(r.PathValue("subscriber"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	urls, err := s.subs.List(r.Context(), sub)
	if err != nil {
		lgr.Printf("[ERROR] failed to list subscriptions: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"subscriber": sub.String(), "feeds": urls})
}

// addSubscriptionHandler subscribes to a feed, the feed is fetched if it is new
func (s *Server) addSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	req, sub, err := decodeSubscription(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	url, err := s.subs.Add(r.Context(), req.URL, sub)
	var fetchErr *feed.FetchError
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		renderError(w, r, err, http.StatusBadRequest)
	case errors.As(err, &fetchErr):
		renderError(w, r, err, http.StatusUnprocessableEntity)
	case err != nil:
		lgr.Printf("[ERROR] failed to add subscription to %s: %v", req.URL, err)
		renderError(w, r, err, http.StatusInternalServerError)
	default:
		renderJSON(w, r, http.StatusCreated, map[string]string{"url": url, "subscriber": sub.String()})
	}
}

// removeSubscriptionHandler unsubscribes from a feed, 404 if there was no such subscription
func (s *Server) removeSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	req, sub, err := decodeSubscription(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	removed, err := s.subs.Remove(r.Context(), req.URL, sub)
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		renderError(w, r, err, http.StatusBadRequest)
	case err != nil:
		lgr.Printf("[ERROR] failed to remove subscription to %s: %v", req.URL, err)
		renderError(w, r, err, http.StatusInternalServerError)
	case !removed:
		renderError(w, r, fmt.Errorf("not subscribed to %s", req.URL), http.StatusNotFound)
	default:
		renderJSON(w, r, http.StatusOK, map[string]bool{"removed": true})
	}
}

func decodeSubscription(r *http.Request) (subscriptionRequest, domain.Subscriber, error) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, fmt.Errorf("invalid request body: %w", err)
	}
	if req.URL == "" {
		return req, nil, errors.New("url is required")
	}
	sub, err := domain.ParseSubscriber(req.Subscriber)
	if err != nil {
		return req, nil, err
	}
	return req, sub, nil
}
