package login

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
	authservice "github.com/marketpulse/account-service/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	testUser := &models.User{
		UID:   "uid-1",
		Email: "user@example.com",
		Name:  "Test User",
		Role:  models.RoleUser,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantToken      string
		wantError      string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "user@example.com", Password: "password123"},
			mockToken:      "tok",
			mockUser:       testUser,
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
			name:           "validation error - missing password",
			requestBody:    Request{Email: "user@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
		},
		{
			name:           "validation error - bad email",
			requestBody:    Request{Email: "not-an-email", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email address",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Email: "user@example.com", Password: "wrongpass"},
			mockErr:        authservice.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid email or password",
		},
		{
			name:           "service error",
			requestBody:    Request{Email: "user@example.com", Password: "password123"},
			mockErr:        errors.New("db error"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			if tt.mockToken != "" || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, req.Email, req.Password).
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

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
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
				assert.Equal(t, testUser.UID, user["id"])
				assert.Equal(t, testUser.Email, user["email"])
				// Хэш пароля никогда не попадает в ответ.
				assert.NotContains(t, user, "password_hash")
			}

			authMock.AssertExpectations(t)
		})
	}
}
