package app

import (
	"context"
	"sync"
	"time"

	"github.com/piraces/essentialfeed/pkg/metrics"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
)

type HandlerOnFeedRefreshed struct {
	mu          sync.Mutex
	lastRefresh time.Time
}

func NewHandlerOnFeedRefreshed() *HandlerOnFeedRefreshed {
	return &HandlerOnFeedRefreshed{}
}

// Handle ignores events older than the newest one already seen.
func (h *HandlerOnFeedRefreshed) Handle(ctx context.Context, event domainfeed.Refreshed) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.lastRefresh.IsZero() && event.Timestamp().Before(h.lastRefresh) {
		return nil
	}
	h.lastRefresh = event.Timestamp()

	metrics.CachedFeedItems.Set(float64(event.ItemCount()))
	metrics.LastRefreshTimestamp.Set(float64(event.Timestamp().Unix()))
	return nil
}

func (h *HandlerOnFeedRefreshed) LastRefresh() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRefresh
}
