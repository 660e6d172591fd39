package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/eventbooking-api/internal/api"
	"github.com/vietanh2810/eventbooking-api/internal/config"
	"github.com/vietanh2810/eventbooking-api/internal/db"
	"github.com/vietanh2810/eventbooking-api/internal/logger"
	"github.com/vietanh2810/eventbooking-api/internal/queue"
	"github.com/vietanh2810/eventbooking-api/internal/repository/memory"
	"github.com/vietanh2810/eventbooking-api/internal/service"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	repos, err := openRepositories(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	var opts []api.Option
	if rdb := openRedis(conf); rdb != nil {
		defer func() { _ = rdb.Close() }()
		opts = append(opts, api.WithRedis(rdb))
	}
	if conf.RabbitMQ.URL != "" {
		opts = append(opts, api.WithNotifier(queue.NewPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Queue)))
	}

	s := api.NewServer(conf, repos, opts...)

	config.WatchBooking(func(b config.BookingConfig) {
		s.Booking.SetPolicy(service.BookingPolicy{
			LockTimeout:  b.LockTimeout,
			MaxRetries:   b.MaxRetries,
			RetryBackoff: b.RetryBackoff,
		})
		zap.L().Info("booking policy reloaded",
			zap.Duration("lock_timeout", b.LockTimeout),
			zap.Int("max_retries", b.MaxRetries),
			zap.Duration("retry_backoff", b.RetryBackoff),
		)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.Feed.Run(ctx)

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down the server -> %w", err)
		}
	}

	return nil
}

func openRepositories(conf *config.AppConfig) (api.Repositories, error) {
	var (
		gdb *gorm.DB
		err error
	)

	switch conf.Database.Driver {
	case "memory":
		zap.L().Warn("using in-memory storage, data is lost on restart")
		return api.NewMemoryRepositories(memory.NewStore()), nil
	case "sqlite":
		gdb, err = db.OpenSQLite(conf.SQLite.Path)
	case "mysql":
		gdb, err = db.OpenMySQL(conf.MySQL)
	case "postgres", "":
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			gdb, err = db.OpenPostgresWithURL(dbURL)
		} else {
			gdb, err = db.OpenPostgres(conf.Postgres)
		}
	default:
		return api.Repositories{}, fmt.Errorf("unknown database driver %q", conf.Database.Driver)
	}
	if err != nil {
		return api.Repositories{}, err
	}

	return api.NewSQLRepositories(gdb), nil
}

// openRedis returns nil when rate limiting is off or Redis is unreachable;
// the limiter then lets every request through.
func openRedis(conf *config.AppConfig) *redis.Client {
	if !conf.RateLimit.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	return rdb
}
