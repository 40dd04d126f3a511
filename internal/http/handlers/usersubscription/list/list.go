package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/response"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	ListForUser(ctx context.Context, userID int64) (*models.UserSubscriptionList, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает подписки пользователя.
//
// @Summary Подписки пользователя
// @Tags UserSubscriptions
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.UserSubscriptions "Подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usersubscription.list"

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

	list, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to list user subscriptions", sl.Err(err))
		response.ServiceError(w, r, err, "could not list user subscriptions")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(response.FromUserSubscriptionList(*list)))
}
