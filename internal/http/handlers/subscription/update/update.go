package update

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

// Handler обрабатывает HTTP-запросы на изменение сервиса каталога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service определяет интерфейс бизнес-логики, используемый обработчиком.
type Service interface {
	Update(ctx context.Context, id int64, req models.SubscriptionRequest) (*models.Subscription, error)
}

// New создаёт новый обработчик.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос на изменение сервиса каталога.
//
// @Summary Изменить сервис каталога
// @Description Перезаписывает название, имя сервиса и URL. Дата создания не меняется.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param id path int true "ID сервиса"
// @Param request body models.SubscriptionRequest true "Новые данные сервиса"
// @Success 200 {object} response.Subscription "Сервис изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Сервис не найден"
// @Failure 409 {object} response.ErrorResponse "Название уже занято"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := handlers.ParseID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		response.BadRequest(w, r, "failed to decode id from url")
		return
	}

	var req models.SubscriptionRequest
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

	sub, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update subscription", sl.Err(err))
		response.ServiceError(w, r, err, "could not update subscription")
		return
	}

	log.Info("subscription updated", slog.Int64("id", id))
	render.JSON(w, r, response.StatusOKWithData(response.FromSubscription(*sub)))
}
