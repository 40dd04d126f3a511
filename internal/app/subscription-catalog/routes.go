package subscriptioncatalog

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-catalog/internal/config"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/health"
	subcreate "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/subscription/create"
	sublist "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/subscription/list"
	subremove "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/subscription/top"
	subupdate "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/subscription/update"
	usercreate "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/user/remove"
	userupdate "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/usersubscription/add"
	linklist "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/usersubscription/list"
	linkremove "github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/usersubscription/remove"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers/usersubscription/status"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/middlewarectx"

	_ "github.com/magabrotheeeer/subscription-catalog/docs"
)

// SubscriptionService операции каталога, доступные через HTTP.
type SubscriptionService interface {
	subcreate.Service
	subupdate.Service
	sublist.Service
	subremove.Service
	top.Service
}

// UserService операции над пользователями, доступные через HTTP.
type UserService interface {
	usercreate.Service
	read.Service
	userupdate.Service
	userremove.Service
}

// UserSubscriptionService операции над подписками пользователей, доступные через HTTP.
type UserSubscriptionService interface {
	add.Service
	linklist.Service
	status.Service
	linkremove.Service
}

// Services набор сервисов, обслуживающих маршруты.
type Services struct {
	Subscriptions     SubscriptionService
	Users             UserService
	UserSubscriptions UserSubscriptionService
	Health            health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, limit config.RateLimit, metrics *middlewarectx.Metrics, s Services) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimit(logger, limit.RPS, limit.Burst))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/top", top.New(logger, s.Subscriptions).ServeHTTP)
			r.Post("/", subcreate.New(logger, s.Subscriptions).ServeHTTP)
			r.Get("/", sublist.New(logger, s.Subscriptions).ServeHTTP)
			r.Put("/{id}", subupdate.New(logger, s.Subscriptions).ServeHTTP)
			r.Delete("/{id}", subremove.New(logger, s.Subscriptions).ServeHTTP)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", usercreate.New(logger, s.Users).ServeHTTP)
			r.Get("/{id}", read.New(logger, s.Users).ServeHTTP)
			r.Put("/{id}", userupdate.New(logger, s.Users).ServeHTTP)
			r.Delete("/{id}", userremove.New(logger, s.Users).ServeHTTP)

			r.Post("/{id}/subscriptions", add.New(logger, s.UserSubscriptions).ServeHTTP)
			r.Get("/{id}/subscriptions", linklist.New(logger, s.UserSubscriptions).ServeHTTP)
			r.Patch("/{id}/subscriptions/{sub_id}", status.New(logger, s.UserSubscriptions).ServeHTTP)
			r.Delete("/{id}/subscriptions/{sub_id}", linkremove.New(logger, s.UserSubscriptions).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
