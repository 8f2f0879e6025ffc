package app

import (
	"context"
	"time"

	"github.com/piraces/essentialfeed/pkg/cache"
	"github.com/piraces/essentialfeed/pkg/metrics"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
	"github.com/pkg/errors"
)

type CachedFeed struct {
	Items     []domainfeed.FeedItem
	Timestamp time.Time
}

type HandlerGetCachedFeed struct {
	storage CachedFeedStorage
}

func NewHandlerGetCachedFeed(storage CachedFeedStorage) *HandlerGetCachedFeed {
	return &HandlerGetCachedFeed{
		storage: storage,
	}
}

// Handle returns cache.ErrEmptyCache when nothing has been saved yet.
func (h *HandlerGetCachedFeed) Handle(ctx context.Context) (CachedFeed, error) {
	cached, err := h.storage.Retrieve(ctx)
	if err != nil {
		if errors.Is(err, cache.ErrEmptyCache) {
			metrics.CacheMiss.Inc()
		}
		return CachedFeed{}, errors.Wrap(err, "error retrieving the cached feed")
	}
	metrics.CacheHits.Inc()

	items, err := cache.ToFeedItems(cached.Images)
	if err != nil {
		return CachedFeed{}, errors.Wrap(err, "error mapping the cached feed")
	}

	return CachedFeed{Items: items, Timestamp: cached.Timestamp}, nil
}
