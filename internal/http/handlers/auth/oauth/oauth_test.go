package oauth

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

	"github.com/marketpulse/account-service/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) LoginExternal(ctx context.Context, email, name string) (string, *models.User, error) {
	args := m.Called(ctx, email, name)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestOAuthHandler_ServeHTTP(t *testing.T) {
	testUser := &models.User{
		UID:   "uid-1",
		Email: "oauth@example.com",
		Name:  "OAuth User",
		Role:  models.RoleUser,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockUser       *models.User
		mockErr        error
		callService    bool
		wantStatusCode int
		wantToken      string
		wantError      string
	}{
		{
			name:           "valid external login",
			requestBody:    Request{Email: "oauth@example.com", Name: "OAuth User"},
			mockToken:      "tok",
			mockUser:       testUser,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantToken:      "tok",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing name",
			requestBody:    Request{Email: "oauth@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Name is a required field",
		},
		{
			name:           "service error",
			requestBody:    Request{Email: "oauth@example.com", Name: "OAuth User"},
			mockErr:        errors.New("db error"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			if tt.callService {
				req := tt.requestBody.(Request)
				authMock.On("LoginExternal", mock.Anything, req.Email, req.Name).
					Return(tt.mockToken, tt.mockUser, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/oauth", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, tt.wantToken, got["token"])
				user, ok := got["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, testUser.Email, user["email"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
