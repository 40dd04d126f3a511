package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/response"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, id int64) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP удаляет сервис из каталога вместе с подписками пользователей на него.
//
// @Summary Удалить сервис каталога
// @Tags Subscriptions
// @Param id path int true "ID сервиса"
// @Success 204 "Сервис удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Сервис не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := handlers.ParseID(r, "id")
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		response.BadRequest(w, r, "invalid id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete subscription", sl.Err(err))
		response.ServiceError(w, r, err, "failed to delete subscription")
		return
	}

	log.Info("subscription deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}
