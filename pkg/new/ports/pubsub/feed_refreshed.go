package pubsub

import (
	"context"
	"log"

	"github.com/piraces/essentialfeed/pkg/new/adapters/pubsub"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
)

type FeedRefreshedHandler interface {
	Handle(ctx context.Context, event domainfeed.Refreshed) error
}

type FeedRefreshedSubscriber struct {
	pubsub  *pubsub.FeedRefreshedPubSub
	handler FeedRefreshedHandler
}

func NewFeedRefreshedSubscriber(
	pubsub *pubsub.FeedRefreshedPubSub,
	handler FeedRefreshedHandler,
) *FeedRefreshedSubscriber {
	return &FeedRefreshedSubscriber{
		pubsub:  pubsub,
		handler: handler,
	}
}

func (p *FeedRefreshedSubscriber) Run(ctx context.Context) {
	for event := range p.pubsub.Subscribe(ctx) {
		if err := p.handler.Handle(ctx, event); err != nil {
			log.Printf("[ERROR] error passing refresh from %s to handler: %s", event.Timestamp(), err)
		}
	}
}
