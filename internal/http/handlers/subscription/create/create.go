package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-catalog/internal/http/response"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

// Handler обрабатывает HTTP-запросы на добавление сервиса в каталог.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service определяет интерфейс бизнес-логики, используемый обработчиком.
type Service interface {
	Create(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error)
}

// New создаёт новый обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос на добавление сервиса в каталог.
//
// @Summary Добавить сервис в каталог
// @Description Создаёт запись каталога. Название должно быть уникальным.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.SubscriptionRequest true "Данные сервиса"
// @Success 201 {object} response.Subscription "Сервис добавлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Название уже занято"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SubscriptionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "failed to decode request")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	sub, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		response.ServiceError(w, r, err, "could not create subscription")
		return
	}

	log.Info("subscription created", slog.Int64("id", sub.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(response.FromSubscription(*sub)))
}
