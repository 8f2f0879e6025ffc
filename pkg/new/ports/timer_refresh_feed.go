package ports

import (
	"context"
	"log"
	"time"

	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
)

type HandlerRefreshFeed interface {
	Handle(ctx context.Context) ([]domainfeed.FeedItem, error)
}

type RefreshFeedTimer struct {
	handler  HandlerRefreshFeed
	interval time.Duration
}

func NewRefreshFeedTimer(handler HandlerRefreshFeed, interval time.Duration) *RefreshFeedTimer {
	return &RefreshFeedTimer{handler: handler, interval: interval}
}

// Run refreshes the feed right away and then once per interval until ctx is
// done.
func (h *RefreshFeedTimer) Run(ctx context.Context) {
	for {
		if _, err := h.handler.Handle(ctx); err != nil {
			log.Printf("[ERROR] error refreshing feed: %s", err)
		}

		select {
		case <-time.After(h.interval):
			continue
		case <-ctx.Done():
			return
		}
	}
}
