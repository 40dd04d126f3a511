package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-catalog/internal/http/handlers"
	"github.com/magabrotheeeer/subscription-catalog/internal/http/response"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

// Handler обрабатывает HTTP-запросы на изменение статуса подписки пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service определяет интерфейс бизнес-логики, используемый обработчиком.
type Service interface {
	ChangeStatus(ctx context.Context, userID, subscriptionID int64, status models.Status) (*models.UserSubscription, error)
}

// New создаёт новый обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP устанавливает статус подписки.
//
// @Summary Изменить статус подписки
// @Description Допускается установка текущего статуса, дата изменения обновляется всегда.
// @Tags UserSubscriptions
// @Accept  json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param sub_id path int true "ID сервиса каталога"
// @Param request body models.ChangeStatusRequest true "Новый статус"
// @Success 200 {object} response.UserSubscription "Статус изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Пользователь не подписан на сервис"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/subscriptions/{sub_id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usersubscription.status"

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

	var req models.ChangeStatusRequest
	if err = render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "failed to decode request")
		return
	}

	if err = h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	us, err := h.service.ChangeStatus(r.Context(), userID, subID, req.Status)
	if err != nil {
		log.Error("failed to change status", sl.Err(err))
		response.ServiceError(w, r, err, "could not change subscription status")
		return
	}

	log.Info("subscription status changed", slog.String("status", req.Status.String()))
	render.JSON(w, r, response.StatusOKWithData(response.FromUserSubscription(*us)))
}
