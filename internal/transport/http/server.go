package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"time"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/handler"
	"socialnet/internal/queue"
	"socialnet/internal/redis"
	"socialnet/internal/repository"
	"socialnet/internal/service"
	"socialnet/internal/social"
	"socialnet/internal/transport/ws"
)

const (
	shutdownTimeout  = 10 * time.Second
	activityMaxLen   = 100000
	readHeaderLimit  = 10 * time.Second
	defaultJWTSecret = "dev-secret-change-me"
)

// App is a fully wired network ready to serve HTTP.
type App struct {
	Directory *social.Directory
	Handler   stdhttp.Handler

	closers []func()
}

// Close releases the activity stream and Redis connection, if any.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewApp builds the directory, services and router described by cfg.
// Redis and object storage are optional; without them the activity stream
// and image uploads are disabled.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	if cfg.JWTSecret == "" {
		log.Printf("[Server] JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = defaultJWTSecret
	}

	logs := social.MultiLog{social.StdLog{}}
	var feed cache.FeedCache
	var indexer *cache.FeedIndexer
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		sink := queue.NewActivitySink(queue.NewPublisher(rdb.Client, activityMaxLen), cfg.NetworkName, cfg.ActivityStream)
		go sink.Run(context.Background())
		logs = append(logs, sink)

		feed = cache.NewFeedCache(rdb.Client, cfg.NetworkName)
		indexer = cache.NewFeedIndexer(feed)
		go indexer.Run(context.Background())

		app.closers = append(app.closers, func() { rdb.Close() }, sink.Close, indexer.Close)
		log.Printf("[Server] Activity stream enabled: %s", cfg.ActivityStream)
	}

	dir := social.NewDirectory(cfg.NetworkName, logs)
	hub := ws.NewHub(cfg.WSAllowedOrigins...)
	dir.Subscribe(hub)

	network := service.NewNetworkService(dir, repository.NewPostRepository())
	if indexer != nil {
		dir.Subscribe(indexer)
		network.UseFeed(feed)
	}
	auth := service.NewAuthService(cfg)

	var uploader handler.ImageUploader
	if cfg.StorageEnabled() {
		media, err := service.NewMediaService(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init media service: %w", err)
		}
		uploader = media
	} else {
		log.Printf("[Server] R2 storage not configured, image uploads disabled")
	}

	app.Directory = dir
	app.Handler = NewRouter(RouterConfig{
		AuthHandler:  handler.NewAuthHandler(network, auth),
		UserHandler:  handler.NewUserHandler(network),
		PostHandler:  handler.NewPostHandler(network),
		MediaHandler: handler.NewMediaHandler(uploader),
		LiveHandler:  hub,
		Tokens:       auth,
	})
	return app, nil
}

// Run serves the network on cfg.ServerPort until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Handler,
		ReadHeaderTimeout: readHeaderLimit,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] %s listening on %s", cfg.NetworkName, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
