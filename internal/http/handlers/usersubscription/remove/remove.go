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
	Remove(ctx context.Context, userID, subscriptionID int64) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP отписывает пользователя от сервиса каталога.
//
// @Summary Отписать пользователя от сервиса
// @Tags UserSubscriptions
// @Param id path int true "ID пользователя"
// @Param sub_id path int true "ID сервиса каталога"
// @Success 204 "Подписка удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Пользователь не подписан на сервис"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/subscriptions/{sub_id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usersubscription.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := handlers.ParseID(r, "id")
	if err != nil {
		log.Error("invalid user id", sl.Err(err))
		response.BadRequest(w, r, "invalid user id")
		return
	}
	subID, err := handlers.ParseID(r, "sub_id")
	if err != nil {
		log.Error("invalid subscription id", sl.Err(err))
		response.BadRequest(w, r, "invalid subscription id")
		return
	}

	if err := h.service.Remove(r.Context(), userID, subID); err != nil {
		log.Error("failed to remove subscription", sl.Err(err))
		response.ServiceError(w, r, err, "failed to remove subscription")
		return
	}

	log.Info("subscription removed",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", subID),
	)
	w.WriteHeader(http.StatusNoContent)
}
