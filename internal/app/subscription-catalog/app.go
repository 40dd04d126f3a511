// Package subscriptioncatalog собирает зависимости сервиса каталога подписок
// и управляет жизненным циклом HTTP-сервера.
package subscriptioncatalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-catalog/internal/cache"
	"github.com/magabrotheeeer/subscription-catalog/internal/config"
	"github.com/magabrotheeeer/subscription-catalog/internal/events"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/migrations"
	"github.com/magabrotheeeer/subscription-catalog/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-catalog/internal/services/user"
	"github.com/magabrotheeeer/subscription-catalog/internal/services/usersubscription"
	"github.com/magabrotheeeer/subscription-catalog/internal/storage"
)

// App сервис каталога подписок.
type App struct {
	cfg    *config.Config
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
	events *events.Publisher
}

// New подключается к PostgreSQL, применяет миграции, при необходимости
// подключает Redis и RabbitMQ и собирает HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "subscriptioncatalog.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{cfg: cfg, logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath, logger); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		subCache  subscription.Cache
		userCache user.Cache
		linkCache usersubscription.Cache
	)
	if cfg.RedisConnection.Enabled {
		a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subCache, userCache, linkCache = a.cache, a.cache, a.cache
		logger.Info("redis cache enabled", slog.String("address", cfg.RedisConnection.AddressRedis))
	}

	var publisher subscription.EventPublisher = events.Noop{}
	if cfg.RabbitMQ.Enabled {
		a.amqp, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupChannel(a.amqp, cfg.RabbitMQ.Exchange, events.Queues(cfg.RabbitMQ.Queue))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.events = events.NewPublisher(ch, cfg.RabbitMQ.Exchange, logger)
		publisher = a.events
		logger.Info("event publishing enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	ttl := cfg.RedisConnection.CacheTTL
	services := Services{
		Subscriptions:     subscription.New(db, subCache, publisher, ttl, logger),
		Users:             user.New(db, userCache, publisher, ttl, logger),
		UserSubscriptions: usersubscription.New(db, linkCache, publisher, logger),
		Health:            db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.RateLimit, middlewarectx.NewMetrics(prometheus.DefaultRegisterer), services)

	a.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return a, nil
}

// Run запускает HTTP-сервер и блокируется до отмены ctx или ошибки сервера.
// После отмены ctx сервер завершается в пределах ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func (a *App) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("failed to close event channel", sl.Err(err))
		}
	}
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
