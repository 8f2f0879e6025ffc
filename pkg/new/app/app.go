package app

import (
	"context"
	"time"

	"github.com/piraces/essentialfeed/pkg/cache"
	"github.com/piraces/essentialfeed/pkg/feed"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
)

type App struct {
	RefreshFeed   *HandlerRefreshFeed
	GetCachedFeed *HandlerGetCachedFeed
}

type FeedLoader interface {
	Load(ctx context.Context, completion func(feed.LoadResult))
}

type FeedCache interface {
	SaveAt(ctx context.Context, items []domainfeed.FeedItem, timestamp time.Time, completion func(error))
}

type CachedFeedStorage interface {
	Retrieve(ctx context.Context) (cache.CachedFeed, error)
}

type FeedRefreshedPublisher interface {
	PublishFeedRefreshed(event domainfeed.Refreshed)
}
