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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.UserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.UserRequest{Username: "User_1", Email: "user@example.com"}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная регистрация",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).
					Return(&models.User{ID: 1, Username: "User_1", Email: "user@example.com"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"username":"User_1"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "{",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "некорректный email",
			requestBody:    models.UserRequest{Username: "User_1", Email: "nope"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Email must be a valid email"}`,
		},
		{
			name:           "пустые поля",
			requestBody:    models.UserRequest{},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Username is a required field, field Email is a required field"}`,
		},
		{
			name:        "username занят",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).
					Return(nil, apperr.AlreadyExists("user with username %q already exists", "User_1")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `already exists`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
