package top

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-catalog/internal/http/response"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

// Handler отдаёт рейтинг популярных сервисов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service определяет интерфейс бизнес-логики, используемый обработчиком.
type Service interface {
	TopPopular(ctx context.Context) ([]models.PopularSubscription, error)
}

// New создаёт новый обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает до трёх сервисов с наибольшим числом подписчиков.
//
// @Summary Топ-3 популярных сервисов
// @Description При равном числе подписчиков выше сервис с меньшим ID.
// @Tags Subscriptions
// @Produce json
// @Success 200 {array} response.PopularSubscription "Рейтинг"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/top [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.top"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	top, err := h.service.TopPopular(r.Context())
	if err != nil {
		log.Error("failed to get top subscriptions", sl.Err(err))
		response.ServiceError(w, r, err, "could not get top subscriptions")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(response.FromPopular(top)))
}
