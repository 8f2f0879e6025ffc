package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/allegro/bigcache"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	bigcachestore "github.com/eko/gocache/store/bigcache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/google/uuid"
	"github.com/piraces/essentialfeed/pkg/metrics"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const feedCacheKey = "essentialfeed:feed"

// GocacheFeedStore keeps the whole cached feed as one JSON document under a
// single key of a gocache store.
type GocacheFeedStore struct {
	cache gocache.CacheInterface[any]
	key   string
	ttl   time.Duration
	ping  func(ctx context.Context) error
	close func() error
}

var _ FeedStore = &GocacheFeedStore{}

// NewGocacheFeedStore stores the feed under key. A zero ttl keeps the entry
// until the store evicts it.
func NewGocacheFeedStore(cache gocache.CacheInterface[any], key string, ttl time.Duration) *GocacheFeedStore {
	return &GocacheFeedStore{
		cache: cache,
		key:   key,
		ttl:   ttl,
		ping:  func(context.Context) error { return nil },
		close: func() error { return nil },
	}
}

// NewBigcacheFeedStore keeps the feed in process memory. Entries older than
// lifeWindow are evicted.
func NewBigcacheFeedStore(lifeWindow time.Duration) (*GocacheFeedStore, error) {
	client, err := bigcache.NewBigCache(bigcache.DefaultConfig(lifeWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "error initializing bigcache")
	}

	return NewGocacheFeedStore(gocache.New[any](bigcachestore.NewBigcache(client)), feedCacheKey, 0), nil
}

func NewRedisFeedStore(client *redis.Client, ttl time.Duration) *GocacheFeedStore {
	s := NewGocacheFeedStore(gocache.New[any](redisstore.NewRedis(client)), feedCacheKey, ttl)
	s.ping = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	s.close = client.Close
	return s
}

func (s *GocacheFeedStore) DeleteCachedFeed(ctx context.Context, completion func(error)) {
	dispatch(ctx, s.deleteCachedFeed, completion)
}

func (s *GocacheFeedStore) Insert(ctx context.Context, images []LocalFeedImage, timestamp time.Time, completion func(error)) {
	dispatch(ctx, func(ctx context.Context) error {
		return s.insert(ctx, images, timestamp)
	}, completion)
}

func (s *GocacheFeedStore) Retrieve(ctx context.Context) (CachedFeed, error) {
	raw, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if isNotFound(err) {
			return CachedFeed{}, ErrEmptyCache
		}
		metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_GET"}).Inc()
		return CachedFeed{}, pkgerrors.Wrap(err, "error reading the cached feed")
	}

	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return CachedFeed{}, pkgerrors.Errorf("unexpected cached value of type %T", raw)
	}

	var payload cachedFeedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_PARSE"}).Inc()
		return CachedFeed{}, pkgerrors.Wrap(err, "error parsing the cached feed")
	}

	return payload.cachedFeed()
}

func (s *GocacheFeedStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *GocacheFeedStore) Close() error {
	return s.close()
}

func (s *GocacheFeedStore) deleteCachedFeed(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.key); err != nil && !isNotFound(err) {
		metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_DELETE"}).Inc()
		return pkgerrors.Wrap(err, "error deleting the cached feed")
	}
	return nil
}

func (s *GocacheFeedStore) insert(ctx context.Context, images []LocalFeedImage, timestamp time.Time) error {
	data, err := json.Marshal(newCachedFeedPayload(images, timestamp))
	if err != nil {
		return pkgerrors.Wrap(err, "error marshaling the feed")
	}

	var options []store.Option
	if s.ttl > 0 {
		options = append(options, store.WithExpiration(s.ttl))
	}

	if err := s.cache.Set(ctx, s.key, data, options...); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "CACHE_SET"}).Inc()
		return pkgerrors.Wrap(err, "error storing the feed")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.NotFound{}) || errors.Is(err, bigcache.ErrEntryNotFound)
}

type cachedFeedPayload struct {
	Timestamp time.Time            `json:"timestamp"`
	Images    []cachedImagePayload `json:"images"`
}

type cachedImagePayload struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	ImageURL    string    `json:"image_url"`
}

func newCachedFeedPayload(images []LocalFeedImage, timestamp time.Time) cachedFeedPayload {
	payload := cachedFeedPayload{
		Timestamp: timestamp,
		Images:    make([]cachedImagePayload, 0, len(images)),
	}
	for _, image := range images {
		payload.Images = append(payload.Images, cachedImagePayload{
			ID:          image.ID,
			Description: image.Description,
			Location:    image.Location,
			ImageURL:    image.ImageURL.String(),
		})
	}
	return payload
}

func (p cachedFeedPayload) cachedFeed() (CachedFeed, error) {
	images := make([]LocalFeedImage, 0, len(p.Images))
	for _, image := range p.Images {
		imageURL, err := url.Parse(image.ImageURL)
		if err != nil {
			return CachedFeed{}, pkgerrors.Wrap(err, "error parsing the image url")
		}
		images = append(images, LocalFeedImage{
			ID:          image.ID,
			Description: image.Description,
			Location:    image.Location,
			ImageURL:    imageURL,
		})
	}
	return CachedFeed{Images: images, Timestamp: p.Timestamp}, nil
}
