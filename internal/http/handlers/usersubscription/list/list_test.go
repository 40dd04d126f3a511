package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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

func (m *MockService) ListForUser(ctx context.Context, userID int64) (*models.UserSubscriptionList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscriptionList), args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "подписки со снимком сервиса",
			userID: "1",
			setupMock: func(m *MockService) {
				m.On("ListForUser", mock.Anything, int64(1)).Return(&models.UserSubscriptionList{
					Count: 1,
					Subscriptions: []models.UserSubscription{{
						ID: 1, UserID: 1, SubscriptionID: 2, Status: models.StatusInactive,
						Subscription: models.Subscription{ID: 2, Name: "Netflix"},
					}},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subscription_name":"Netflix"`,
		},
		{
			name:           "некорректный id",
			userID:         "-4",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid user id"}`,
		},
		{
			name:   "пользователь не найден",
			userID: "1",
			setupMock: func(m *MockService) {
				m.On("ListForUser", mock.Anything, int64(1)).
					Return(nil, apperr.NotFound("user with id %d not found", 1)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"user with id 1 not found"}`,
		},
		{
			name:   "ошибка сервиса",
			userID: "1",
			setupMock: func(m *MockService) {
				m.On("ListForUser", mock.Anything, int64(1)).Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not list user subscriptions"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.userID+"/subscriptions", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.userID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
