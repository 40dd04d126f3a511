package update

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id int64, req models.UserRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newRequest(t *testing.T, id string, body any) *http.Request {
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/users/"+id, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.UserRequest{Username: "bob", Email: "bob@example.com"}

	tests := []struct {
		name           string
		id             string
		body           any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное обновление",
			id:   "7",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(7), valid).
					Return(&models.User{ID: 7, Username: "bob", Email: "bob@example.com"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"username":"bob"`,
		},
		{
			name:           "некорректный id",
			id:             "0",
			body:           valid,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name:           "ошибка валидации",
			id:             "7",
			body:           models.UserRequest{Username: "bob"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Email is a required field"}`,
		},
		{
			name: "email занят",
			id:   "7",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(7), valid).
					Return(nil, apperr.AlreadyExists("user with email %q already exists", "bob@example.com")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `already exists`,
		},
		{
			name: "пользователь не найден",
			id:   "7",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(7), valid).
					Return(nil, apperr.NotFound("user with id %d not found", 7)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"user with id 7 not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, newRequest(t, tt.id, tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
