package app

import (
	"context"
	"log"
	"time"

	"github.com/piraces/essentialfeed/pkg/feed"
	"github.com/piraces/essentialfeed/pkg/metrics"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type HandlerRefreshFeed struct {
	loader      FeedLoader
	cache       FeedCache
	publisher   FeedRefreshedPublisher
	currentDate func() time.Time
}

func NewHandlerRefreshFeed(
	loader FeedLoader,
	cache FeedCache,
	publisher FeedRefreshedPublisher,
	currentDate func() time.Time,
) *HandlerRefreshFeed {
	return &HandlerRefreshFeed{
		loader:      loader,
		cache:       cache,
		publisher:   publisher,
		currentDate: currentDate,
	}
}

// Handle loads the remote feed and replaces the cached one with it. The
// returned error wraps feed.ErrConnectivity or feed.ErrInvalidData when the
// load failed.
func (h *HandlerRefreshFeed) Handle(ctx context.Context) ([]domainfeed.FeedItem, error) {
	metrics.RefreshRequests.Inc()

	items, err := h.load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error loading the feed")
	}

	refreshedAt := h.currentDate()
	if err := h.save(ctx, items, refreshedAt); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_SAVE"}).Inc()
		return nil, errors.Wrap(err, "error saving the feed")
	}
	metrics.CacheSaves.Inc()

	log.Printf("[DEBUG] feed refreshed with %d items", len(items))
	h.publisher.PublishFeedRefreshed(domainfeed.NewRefreshed(len(items), refreshedAt))

	return items, nil
}

func (h *HandlerRefreshFeed) load(ctx context.Context) ([]domainfeed.FeedItem, error) {
	metrics.FeedLoads.Inc()

	ch := make(chan feed.LoadResult, 1)
	h.loader.Load(ctx, func(result feed.LoadResult) {
		ch <- result
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			metrics.FeedLoadErrors.With(prometheus.Labels{"type": loadErrorType(result.Err)}).Inc()
			return nil, result.Err
		}
		return result.Items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// save stores items under refreshedAt, the same time the Refreshed event
// carries.
func (h *HandlerRefreshFeed) save(ctx context.Context, items []domainfeed.FeedItem, refreshedAt time.Time) error {
	ch := make(chan error, 1)
	h.cache.SaveAt(ctx, items, refreshedAt, func(err error) {
		ch <- err
	})

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func loadErrorType(err error) string {
	switch {
	case errors.Is(err, feed.ErrConnectivity):
		return "CONNECTIVITY"
	case errors.Is(err, feed.ErrInvalidData):
		return "INVALID_DATA"
	default:
		return "UNKNOWN"
	}
}
