package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/logutils"
	"github.com/kelseyhightower/envconfig"
	"github.com/piraces/essentialfeed/pkg/helpers"
)

const (
	backendSQLite   = "sqlite"
	backendBigcache = "bigcache"
	backendRedis    = "redis"
)

var storeBackends = []string{backendSQLite, backendBigcache, backendRedis}

// Command line flags.
var (
	dsn = flag.String("dsn", "", "datasource name, overrides DB_DIR")
)

type Config struct {
	FeedURL            string        `envconfig:"FEED_URL" required:"true"`
	ListenAddress      string        `envconfig:"LISTEN_ADDRESS" default:":8080"`
	StoreBackend       string        `envconfig:"STORE_BACKEND" default:"sqlite"`
	DatabaseDirectory  string        `envconfig:"DB_DIR" default:"db/feed.sqlite"`
	RedisAddress       string        `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	RedisPassword      string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"0s"`
	BigcacheLifeWindow time.Duration `envconfig:"BIGCACHE_LIFE_WINDOW" default:"24h"`
	RefreshInterval    time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m"`
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	HTTPRetryMax       int           `envconfig:"HTTP_RETRY_MAX" default:"2"`
	UserAgent          string        `envconfig:"USER_AGENT" default:"essentialfeed"`
	Version            string        `envconfig:"VERSION" default:"unknown"`
}

func LoadConfig() (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, fmt.Errorf("couldn't process envconfig: %w", err)
	}

	if *dsn != "" {
		config.DatabaseDirectory = *dsn
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if !helpers.IsValidHttpUrl(c.FeedURL) {
		return fmt.Errorf("FEED_URL must be an absolute http or https url, got %q", c.FeedURL)
	}
	if !slices.Contains(storeBackends, c.StoreBackend) {
		return fmt.Errorf("STORE_BACKEND must be one of %v, got %q", storeBackends, c.StoreBackend)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.HTTPRetryMax < 0 {
		return fmt.Errorf("HTTP_RETRY_MAX must not be negative, got %d", c.HTTPRetryMax)
	}
	return nil
}

func ConfigureLogging() {
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"},
		MinLevel: logutils.LogLevel(os.Getenv("LOG_LEVEL")),
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
}
