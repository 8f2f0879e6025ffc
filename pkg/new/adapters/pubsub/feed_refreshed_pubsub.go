package pubsub

import (
	"context"

	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
)

type FeedRefreshedPubSub struct {
	pubsub *GoChannelPubSub[domainfeed.Refreshed]
}

func NewFeedRefreshedPubSub() *FeedRefreshedPubSub {
	return &FeedRefreshedPubSub{
		pubsub: NewGoChannelPubSub[domainfeed.Refreshed](),
	}
}

func (m *FeedRefreshedPubSub) PublishFeedRefreshed(event domainfeed.Refreshed) {
	m.pubsub.Publish(event)
}

func (m *FeedRefreshedPubSub) Subscribe(ctx context.Context) <-chan domainfeed.Refreshed {
	return m.pubsub.Subscribe(ctx)
}
