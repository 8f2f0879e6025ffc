// Package cache writes loaded feeds to a local store.
package cache

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/piraces/essentialfeed/pkg/lifetime"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
)

// ErrEmptyCache is returned by stores when nothing has been cached.
var ErrEmptyCache = errors.New("cache is empty")

// LocalFeedImage is the stored form of a feed item.
type LocalFeedImage struct {
	ID          uuid.UUID
	Description *string
	Location    *string
	ImageURL    *url.URL
}

// CachedFeed is what a store holds after a successful insert.
type CachedFeed struct {
	Images    []LocalFeedImage
	Timestamp time.Time
}

// FeedStore is the storage a LocalFeedLoader writes to. Each operation
// invokes its completion once, possibly from another goroutine.
type FeedStore interface {
	DeleteCachedFeed(ctx context.Context, completion func(error))
	Insert(ctx context.Context, images []LocalFeedImage, timestamp time.Time, completion func(error))
}

type LocalFeedLoader struct {
	store       FeedStore
	currentDate func() time.Time
	token       lifetime.Token
}

func NewLocalFeedLoader(store FeedStore, currentDate func() time.Time) *LocalFeedLoader {
	return &LocalFeedLoader{store: store, currentDate: currentDate}
}

// Save replaces the cached feed with items. The previous cache is deleted
// first and items are only inserted if that succeeded. A failed insert leaves
// the cache empty.
func (l *LocalFeedLoader) Save(ctx context.Context, items []domainfeed.FeedItem, completion func(error)) {
	l.save(ctx, items, l.currentDate, completion)
}

// SaveAt is Save with the cache timestamp chosen by the caller.
func (l *LocalFeedLoader) SaveAt(ctx context.Context, items []domainfeed.FeedItem, timestamp time.Time, completion func(error)) {
	l.save(ctx, items, func() time.Time { return timestamp }, completion)
}

func (l *LocalFeedLoader) save(ctx context.Context, items []domainfeed.FeedItem, timestamp func() time.Time, completion func(error)) {
	done := lifetime.Guard(&l.token, completion)

	l.store.DeleteCachedFeed(ctx, func(err error) {
		if !l.token.Alive() {
			return
		}
		if err != nil {
			done(err)
			return
		}
		l.store.Insert(ctx, toLocal(items), timestamp(), done)
	})
}

// Close releases the loader. Saves still in flight never complete.
func (l *LocalFeedLoader) Close() error {
	l.token.Release()
	return nil
}

func toLocal(items []domainfeed.FeedItem) []LocalFeedImage {
	images := make([]LocalFeedImage, 0, len(items))
	for _, item := range items {
		images = append(images, LocalFeedImage{
			ID:          item.ID(),
			Description: item.Description(),
			Location:    item.Location(),
			ImageURL:    item.ImageURL(),
		})
	}
	return images
}

// ToFeedItems maps stored images back to feed items.
func ToFeedItems(images []LocalFeedImage) ([]domainfeed.FeedItem, error) {
	items := make([]domainfeed.FeedItem, 0, len(images))
	for _, image := range images {
		item, err := domainfeed.NewFeedItem(image.ID, image.Description, image.Location, image.ImageURL)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
