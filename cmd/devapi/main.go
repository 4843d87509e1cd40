// Command devapi runs an in-memory stand-in of the remote admin API for
// local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/devapi"
	"github.com/chaldal/admin-console/internal/pkg/config"
	"github.com/chaldal/admin-console/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "devapi",
	})

	auth := devapi.NewAuthService(cfg.DevAPI.JWTSecret, cfg.DevAPI.TokenTTL)
	catalog := devapi.NewCatalog()
	err := devapi.Seed(auth, catalog, []devapi.SeedAccount{
		{Name: "Admin", Phone: cfg.DevAPI.AdminPhone, Password: cfg.DevAPI.AdminPassword, Role: domain.RoleAdmin},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed devapi")
	}

	e := devapi.NewServer(auth, catalog, log).Router()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.DevAPI.Port).Str("phone", cfg.DevAPI.AdminPhone).Msg("devapi listening")
		if err := e.Start(":" + cfg.DevAPI.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("devapi stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("devapi shutdown")
	}
}
