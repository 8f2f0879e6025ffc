package pubsub

import (
	"context"
	"sync"
)

// GoChannelPubSub fans published values out to every live subscriber.
// Publish blocks until each subscriber has received the value or gone away.
type GoChannelPubSub[T any] struct {
	mu          sync.Mutex
	subscribers []*subscriber[T]
}

type subscriber[T any] struct {
	ctx context.Context
	ch  chan T
}

func NewGoChannelPubSub[T any]() *GoChannelPubSub[T] {
	return &GoChannelPubSub[T]{}
}

// Subscribe returns a channel which is closed once ctx is done.
func (g *GoChannelPubSub[T]) Subscribe(ctx context.Context) <-chan T {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := &subscriber[T]{ctx: ctx, ch: make(chan T)}
	g.subscribers = append(g.subscribers, s)

	go func() {
		<-ctx.Done()

		g.mu.Lock()
		defer g.mu.Unlock()

		for i, v := range g.subscribers {
			if v == s {
				g.subscribers = append(g.subscribers[:i], g.subscribers[i+1:]...)
				break
			}
		}
		close(s.ch)
	}()

	return s.ch
}

func (g *GoChannelPubSub[T]) Publish(value T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, s := range g.subscribers {
		select {
		case s.ch <- value:
		case <-s.ctx.Done():
		}
	}
}
