package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "пользователь найден",
			url:  "/users/5",
			setupMock: func(m *MockService) {
				m.On("GetByID", mock.Anything, int64(5)).
					Return(&models.User{ID: 5, Username: "alice", Email: "alice@example.com"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email":"alice@example.com"`,
		},
		{
			name:           "некорректный id",
			url:            "/users/abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid id"}`,
		},
		{
			name: "пользователь не найден",
			url:  "/users/5",
			setupMock: func(m *MockService) {
				m.On("GetByID", mock.Anything, int64(5)).
					Return(nil, apperr.NotFound("user with id %d not found", 5)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"user with id 5 not found"}`,
		},
		{
			name: "ошибка сервиса",
			url:  "/users/5",
			setupMock: func(m *MockService) {
				m.On("GetByID", mock.Anything, int64(5)).Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not read user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/users/"))
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
