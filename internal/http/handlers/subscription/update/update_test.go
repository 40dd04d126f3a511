package update

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id int64, req models.SubscriptionRequest) (*models.Subscription, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.SubscriptionRequest{
		SubscriptionName: "Netflix",
		ServiceName:      "Netflix Standard",
		ServiceURL:       "https://netflix.com",
	}

	tests := []struct {
		name           string
		url            string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное обновление",
			url:         "/subscriptions/123",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(123), valid).
					Return(&models.Subscription{ID: 123, Name: "Netflix"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":123`,
		},
		{
			name:           "некорректный JSON",
			url:            "/subscriptions/123",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "ошибка валидации",
			url:            "/subscriptions/123",
			requestBody:    models.SubscriptionRequest{SubscriptionName: "Netflix", ServiceName: "Netflix"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field ServiceURL is a required field"}`,
		},
		{
			name:           "некорректный id в url",
			url:            "/subscriptions/abc",
			requestBody:    valid,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name:        "сервис не найден",
			url:         "/subscriptions/123",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(123), valid).
					Return(nil, apperr.NotFound("subscription with id %d not found", 123)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"subscription with id 123 not found"}`,
		},
		{
			name:        "ошибка сервиса",
			url:         "/subscriptions/123",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(123), valid).Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not update subscription"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			// Устанавливаем URL параметр id для chi
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/subscriptions/"))
			req = req.WithContext(context.WithValue(ctx, chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
