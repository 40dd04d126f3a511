package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.SubscriptionRequest{
		SubscriptionName: "YouTube",
		ServiceName:      "YouTube Premium",
		ServiceURL:       "https://youtube.com/premium",
	}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное создание",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).
					Return(&models.Subscription{ID: 1, Name: "YouTube", ServiceName: "YouTube Premium", ServiceURL: "https://youtube.com/premium"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"subscription_name":"YouTube"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    models.SubscriptionRequest{ServiceURL: "not-a-url"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field SubscriptionName is a required field, field ServiceName is a required field, field ServiceURL must be a valid url"}`,
		},
		{
			name:        "название занято",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).
					Return(nil, apperr.AlreadyExists("subscription with name %q already exists", "YouTube")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `subscription with name \"YouTube\" already exists`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create subscription"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
