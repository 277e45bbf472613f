package setup

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/BJS-kr/whatup/backend/internal/events"
	"github.com/BJS-kr/whatup/backend/internal/handler"
	"github.com/BJS-kr/whatup/backend/internal/service"
	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/backend/internal/storage/memory"
	"github.com/BJS-kr/whatup/backend/internal/storage/pg"
	"github.com/BJS-kr/whatup/shared/config"
	"github.com/BJS-kr/whatup/shared/jwt"
	"github.com/BJS-kr/whatup/shared/logger"
	"github.com/BJS-kr/whatup/shared/markdown"
	"github.com/BJS-kr/whatup/shared/middleware"
	"github.com/BJS-kr/whatup/shared/middleware/ratelimiter"
)

// Storage is everything the services need from a storage driver.
type Storage interface {
	storage.UserStorage
	storage.ThreadStorage
	storage.ContentStorage
	storage.NoticeStorage
	Ping(ctx context.Context) error
	Cleanup() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Dispatcher     *events.Dispatcher
	Janitor        *service.NoticeJanitor

	queue    io.Closer
	mu       sync.Mutex
	limiters []*ratelimiter.Limiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := newQueue(ctx, cfg)
	if err != nil {
		store.Cleanup()
		return nil, err
	}

	policies := service.PoliciesFromConfig(cfg.Public.Pipeline)
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	notices := service.NewNotice(store, policies.Default)
	dispatcher := events.NewDispatcher(queue, notices, events.Options{
		Workers:     cfg.Public.Events.Workers,
		MaxAttempts: cfg.Public.Events.MaxAttempts,
		PushTimeout: cfg.Public.Events.PushTimeout,
	})

	auth := service.NewAuth(store, jwtService, policies.Auth)
	threads := service.NewThread(store, markdown.New(), policies.Default, cfg.Public.TrendingLimit)
	contents := service.NewContent(store, dispatcher, policies.Default)

	h := handler.New(auth, threads, contents, notices, store, cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        store,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtService),
		Dispatcher:     dispatcher,
		Janitor:        service.NewNoticeJanitor(store, cfg.Public.Notices.Retention),
		queue:          queue,
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Public.Storage {
	case "memory":
		logger.Log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		s, err := pg.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return s, nil
	}
}

type closingQueue interface {
	events.Queue
	io.Closer
}

func newQueue(ctx context.Context, cfg *config.Config) (closingQueue, error) {
	switch cfg.Public.Events.Driver {
	case "redis":
		q, err := events.NewRedisQueue(ctx, cfg.Private.RedisURL, cfg.Public.Events.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return q, nil
	default:
		return events.NewChannelQueue(cfg.Public.Events.Buffer), nil
	}
}

// Track registers a limiter so Close stops it.
func (d *Dependencies) Track(l *ratelimiter.Limiter) *ratelimiter.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limiters = append(d.limiters, l)
	return l
}

// Start launches the dispatcher workers and the notice janitor. Both stop
// when ctx is cancelled.
func (d *Dependencies) Start(ctx context.Context) error {
	d.Dispatcher.Start(ctx)
	if schedule := d.Config.Public.Notices.JanitorSchedule; schedule != "" {
		if err := d.Janitor.Start(ctx, schedule); err != nil {
			return fmt.Errorf("start notice janitor: %w", err)
		}
	}
	return nil
}

// Close drains the dispatcher and releases connections.
func (d *Dependencies) Close() {
	d.Dispatcher.Stop()

	d.mu.Lock()
	for _, l := range d.limiters {
		l.Stop()
	}
	d.mu.Unlock()

	if err := d.queue.Close(); err != nil {
		logger.Log.Error("failed to close event queue", "error", err)
	}
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
