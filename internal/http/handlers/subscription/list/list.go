package list

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

// Handler обрабатывает HTTP-запросы на получение каталога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service определяет интерфейс бизнес-логики, используемый обработчиком.
type Service interface {
	List(ctx context.Context) (*models.SubscriptionList, error)
}

// New создаёт новый обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает весь каталог.
//
// @Summary Список сервисов каталога
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} response.Subscriptions "Каталог"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		response.ServiceError(w, r, err, "could not list subscriptions")
		return
	}

	log.Debug("subscriptions listed", slog.Int("count", list.Count))
	render.JSON(w, r, response.StatusOKWithData(response.FromSubscriptionList(*list)))
}
