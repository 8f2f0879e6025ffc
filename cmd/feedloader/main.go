package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/hellofresh/health-go/v5"
	"github.com/piraces/essentialfeed/internal/handlers"
	"github.com/piraces/essentialfeed/pkg/cache"
	"github.com/piraces/essentialfeed/pkg/feed"
	"github.com/piraces/essentialfeed/pkg/new/adapters/pubsub"
	"github.com/piraces/essentialfeed/pkg/new/app"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
	"github.com/piraces/essentialfeed/pkg/new/ports"
	portspubsub "github.com/piraces/essentialfeed/pkg/new/ports/pubsub"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type Service struct {
	config      Config
	app         app.App
	store       feedStore
	remote      *feed.RemoteFeedLoader
	local       *cache.LocalFeedLoader
	pubsub      *pubsub.FeedRefreshedPubSub
	onRefreshed *app.HandlerOnFeedRefreshed
	healthCheck *health.Health
}

func NewService(config Config) (*Service, error) {
	address, err := domainfeed.NewAddress(config.FeedURL)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing the feed url")
	}

	store, err := newFeedStore(config)
	if err != nil {
		return nil, errors.Wrap(err, "error creating the feed store")
	}

	client := feed.NewNetHTTPClient(config.HTTPTimeout, config.HTTPRetryMax, config.UserAgent)
	remote := feed.NewRemoteFeedLoader(address, client)
	local := cache.NewLocalFeedLoader(store, time.Now)
	feedRefreshedPubSub := pubsub.NewFeedRefreshedPubSub()

	healthCheck, err := CreateHealthCheck(config, store)
	if err != nil {
		_ = store.Close()
		return nil, errors.Wrap(err, "error creating the health check")
	}

	return &Service{
		config: config,
		app: app.App{
			RefreshFeed:   app.NewHandlerRefreshFeed(remote, local, feedRefreshedPubSub, time.Now),
			GetCachedFeed: app.NewHandlerGetCachedFeed(store),
		},
		store:       store,
		remote:      remote,
		local:       local,
		pubsub:      feedRefreshedPubSub,
		onRefreshed: app.NewHandlerOnFeedRefreshed(),
		healthCheck: healthCheck,
	}, nil
}

func CreateHealthCheck(config Config, store feedStore) (*health.Health, error) {
	return health.New(health.WithComponent(health.Component{
		Name:    "essentialfeed",
		Version: config.Version,
	}), health.WithChecks(health.Config{
		Name:      "self",
		Timeout:   time.Second * 5,
		SkipOnErr: false,
		Check: func(ctx context.Context) error {
			return nil
		},
	}, health.Config{
		Name:      config.StoreBackend,
		Timeout:   time.Second * 5,
		SkipOnErr: false,
		Check:     store.Ping,
	}))
}

func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.Path("/api/feed").Methods(http.MethodGet, http.MethodHead).HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		handlers.HandleFeed(writer, request, s.app.GetCachedFeed)
	})
	r.Path("/api/feed/refresh").HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		handlers.HandleRefresh(writer, request, s.app.RefreshFeed)
	})
	r.Path("/healthz").HandlerFunc(s.healthCheck.HandlerFunc)
	r.Path("/metrics").Handler(promhttp.Handler())
	return r
}

// Run serves HTTP and refreshes the feed in the background until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	go portspubsub.NewFeedRefreshedSubscriber(s.pubsub, s.onRefreshed).Run(ctx)
	go ports.NewRefreshFeedTimer(s.app.RefreshFeed, s.config.RefreshInterval).Run(ctx)

	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] failed to shut down the server: %v", err)
		}
	}()

	log.Printf("[INFO] listening on %s", s.config.ListenAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "error serving http")
	}
	return nil
}

// Close releases the loaders before the store so no completion outlives it.
func (s *Service) Close() error {
	var result error
	for _, closer := range []interface{ Close() error }{s.remote, s.local, s.store} {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func main() {
	flag.Parse()
	ConfigureLogging()

	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("[FATAL] invalid configuration: %v", err)
	}
	log.Printf("[INFO] Running VERSION %s:\n - FEED_URL=%s\n - STORE_BACKEND=%s\n\n", config.Version, config.FeedURL, config.StoreBackend)

	service, err := NewService(config)
	if err != nil {
		log.Fatalf("[FATAL] failed to start: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := service.Run(ctx)
	if err := service.Close(); err != nil {
		log.Printf("[ERROR] failed to release resources: %v", err)
	}
	if runErr != nil {
		log.Fatalf("[FATAL] server terminated: %v", runErr)
	}
}
