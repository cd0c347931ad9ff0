package forgot

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
)

type ResetServiceMock struct {
	mock.Mock
}

func (m *ResetServiceMock) RequestReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestForgotHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockErr        error
		callService    bool
		wantStatusCode int
		wantSuccess    bool
		wantError      string
	}{
		{
			name:           "known email",
			requestBody:    Request{Email: "user@example.com"},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing email",
			requestBody:    Request{},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Email is required.",
		},
		{
			name:           "service error",
			requestBody:    Request{Email: "user@example.com"},
			mockErr:        errors.New("db error"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetMock := new(ResetServiceMock)
			handler := New(newNoopLogger(), resetMock)

			if tt.callService {
				req := tt.requestBody.(Request)
				resetMock.On("RequestReset", mock.Anything, req.Email).Return(tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewReader(bodyBytes))
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
				assert.Equal(t, tt.wantSuccess, got["success"])
			}

			resetMock.AssertExpectations(t)
		})
	}
}

// Ответ для неизвестного email байт в байт совпадает с ответом для
// известного: сервис в обоих случаях возвращает nil.
func TestForgotHandler_UniformResponse(t *testing.T) {
	resetMock := new(ResetServiceMock)
	resetMock.On("RequestReset", mock.Anything, mock.Anything).Return(nil).Twice()

	handler := New(newNoopLogger(), resetMock)

	var bodies [2]string
	for i, email := range []string{"known@example.com", "unknown@example.com"} {
		body, _ := json.Marshal(Request{Email: email})
		req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		bodies[i] = rec.Body.String()
	}
	assert.Equal(t, bodies[0], bodies[1])

	resetMock.AssertExpectations(t)
}
