// Package main Subscription Catalog API
//
// @title           Subscription Catalog API
// @version         1.0
// @description     API каталога сервисов и подписок пользователей

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	subscriptioncatalog "github.com/magabrotheeeer/subscription-catalog/internal/app/subscription-catalog"
	"github.com/magabrotheeeer/subscription-catalog/internal/config"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/logger"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting subscription-catalog", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := subscriptioncatalog.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("subscription-catalog stopped gracefully")
}
