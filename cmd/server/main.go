// Command server runs the admin console: server-rendered admin views backed
// by the remote catalog API, with sessions kept in Redis, MongoDB or memory.
//
// @title       Admin console
// @version     1.0
// @description Session endpoints of the admin console backend.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/chaldal/admin-console/internal/api"
	"github.com/chaldal/admin-console/internal/api/handler"
	"github.com/chaldal/admin-console/internal/api/view"
	"github.com/chaldal/admin-console/internal/core/service"
	"github.com/chaldal/admin-console/internal/infrastructure/apiclient"
	mongodb "github.com/chaldal/admin-console/internal/infrastructure/db/mongo"
	redisdb "github.com/chaldal/admin-console/internal/infrastructure/db/redis"
	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
	"github.com/chaldal/admin-console/internal/pkg/config"
	"github.com/chaldal/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "admin-console",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, readiness, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := tokenstore.New(backend, tokenstore.Options{
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	}, logger.Component("tokenstore"))

	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, service.ContextAuth{}, logger.Component("apiclient"))

	renderer, err := view.New(cfg.API.StorageBaseURL)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		Store:     store,
		API:       client,
		Renderer:  renderer,
		Readiness: readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.API.BaseURL).Str("store", cfg.Session.Backend).Msg("admin console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openBackend connects the configured session store and returns its
// readiness checks and a close func.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (tokenstore.Backend, map[string]handler.Pinger, func(), error) {
	switch cfg.Session.Backend {
	case config.StoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("redis: %w", err)
		}
		slots := redisdb.NewSlotStore(rdb)
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis")
			}
		}
		return slots, map[string]handler.Pinger{"redis": slots}, closeFn, nil

	case config.StoreMongo:
		db, err := mongodb.Open(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mongo: %w", err)
		}
		slots := mongodb.NewSlotStore(db.Database())
		if err := slots.EnsureIndexes(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("close mongo")
			}
		}
		return slots, map[string]handler.Pinger{"mongodb": db}, closeFn, nil

	default:
		log.Warn().Msg("sessions are kept in memory and lost on restart")
		slots := tokenstore.NewMemoryBackend()
		return slots, map[string]handler.Pinger{"memory": slots}, func() {}, nil
	}
}
