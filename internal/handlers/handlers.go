package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/piraces/essentialfeed/pkg/cache"
	"github.com/piraces/essentialfeed/pkg/feed"
	"github.com/piraces/essentialfeed/pkg/metrics"
	"github.com/piraces/essentialfeed/pkg/new/app"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
	"github.com/pkg/errors"
)

type GetCachedFeedHandler interface {
	Handle(ctx context.Context) (app.CachedFeed, error)
}

type RefreshFeedHandler interface {
	Handle(ctx context.Context) ([]domainfeed.FeedItem, error)
}

type ErrorResponse struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
	ErrorCode    int    `json:"error_code"`
}

// HandleFeed serves the cached feed in the same JSON format the remote feed
// is read in.
func HandleFeed(w http.ResponseWriter, r *http.Request, handler GetCachedFeedHandler) {
	metrics.FeedRequests.Inc()

	cached, err := handler.Handle(r.Context())
	if err != nil {
		if errors.Is(err, cache.ErrEmptyCache) {
			writeError(w, http.StatusNotFound, "No feed has been cached yet")
			return
		}
		log.Printf("[ERROR] failed to read the cached feed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lastModified := cached.Timestamp.UTC().Truncate(time.Second)
	w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
	if since, err := http.ParseTime(r.Header.Get("If-Modified-Since")); err == nil && !lastModified.After(since) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeItems(w, cached.Items)
}

// HandleRefresh loads the remote feed, caches it and responds with the
// loaded items.
func HandleRefresh(w http.ResponseWriter, r *http.Request, handler RefreshFeedHandler) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	items, err := handler.Handle(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to refresh the feed: %v", err)
		if errors.Is(err, feed.ErrConnectivity) || errors.Is(err, feed.ErrInvalidData) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeItems(w, items)
}

func writeItems(w http.ResponseWriter, items []domainfeed.FeedItem) {
	response, err := feed.MarshalFeedItems(items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(response)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	response, _ := json.Marshal(ErrorResponse{
		Error:        true,
		ErrorMessage: message,
		ErrorCode:    code,
	})
	_, _ = w.Write(response)
}
