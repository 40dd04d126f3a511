package read

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
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает пользователя по ID.
//
// @Summary Получить пользователя
// @Tags Users
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.User "Пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read"

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

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		log.Error("failed to read user", sl.Err(err))
		response.ServiceError(w, r, err, "could not read user")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(response.FromUser(*u)))
}
