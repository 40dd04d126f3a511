package add

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

// Handler обрабатывает HTTP-запросы на подписку пользователя на сервис каталога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service определяет интерфейс бизнес-логики, используемый обработчиком.
type Service interface {
	Add(ctx context.Context, userID int64, req models.UserSubscriptionRequest) (*models.UserSubscription, error)
}

// New создаёт новый обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP подписывает пользователя на сервис каталога.
//
// @Summary Подписать пользователя на сервис
// @Description Создаёт подписку со статусом ACTIVE и указанной ценой.
// @Tags UserSubscriptions
// @Accept  json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param request body models.UserSubscriptionRequest true "Сервис и цена"
// @Success 201 {object} response.UserSubscription "Подписка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Пользователь или сервис не найден"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже подписан"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usersubscription.add"

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

	var req models.UserSubscriptionRequest
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

	us, err := h.service.Add(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to add subscription", sl.Err(err))
		response.ServiceError(w, r, err, "could not add subscription")
		return
	}

	log.Info("subscription added",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", req.SubscriptionID),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(response.FromUserSubscription(*us)))
}
