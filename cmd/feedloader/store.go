package main

import (
	"context"
	"log"

	"github.com/piraces/essentialfeed/pkg/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type feedStore interface {
	cache.FeedStore
	Retrieve(ctx context.Context) (cache.CachedFeed, error)
	Ping(ctx context.Context) error
	Close() error
}

func newFeedStore(config Config) (feedStore, error) {
	switch config.StoreBackend {
	case backendSQLite:
		return cache.OpenSQLiteFeedStore(config.DatabaseDirectory)
	case backendBigcache:
		log.Printf("[INFO] keeping the feed in memory for %s", config.BigcacheLifeWindow)
		return cache.NewBigcacheFeedStore(config.BigcacheLifeWindow)
	case backendRedis:
		log.Printf("[INFO] keeping the feed in redis at %s", config.RedisAddress)
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		return cache.NewRedisFeedStore(client, config.CacheTTL), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", config.StoreBackend)
	}
}
