package services_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/marketpulse/account-service/internal/lib/password"
	"github.com/marketpulse/account-service/internal/models"
	services "github.com/marketpulse/account-service/internal/services/reset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Мок для Repository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreateResetToken(ctx context.Context, token models.ResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RepoMock) GetResetToken(ctx context.Context, token string) (*models.ResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResetToken), args.Error(1)
}

func (m *RepoMock) DeleteResetToken(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateUserPassword(ctx context.Context, userUID, passwordHash string) error {
	args := m.Called(ctx, userUID, passwordHash)
	return args.Error(0)
}

// Мок для EmailPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(msg models.EmailMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResetService_RequestReset(t *testing.T) {
	testUser := &models.User{
		UID:   "uid-1",
		Email: "test@example.com",
		Name:  "Test User",
	}

	tests := []struct {
		name       string
		email      string
		setupMocks func(r *RepoMock, p *PublisherMock)
		wantErr    bool
		errMsg     string
	}{
		{
			name:  "known email issues token and queues email",
			email: "test@example.com",
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				r.On("CreateResetToken", mock.Anything, mock.MatchedBy(func(tok models.ResetToken) bool {
					return tok.UserUID == "uid-1" &&
						len(tok.Token) == 64 &&
						tok.ExpiresAt.After(time.Now().UTC())
				})).Return(nil).Once()
				p.On("Publish", mock.MatchedBy(func(msg models.EmailMessage) bool {
					return msg.To == "test@example.com" && msg.Subject == "Password Reset"
				})).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name:  "unknown email succeeds without issuing token",
			email: "ghost@example.com",
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "ghost@example.com").
					Return(nil, sql.ErrNoRows).Once()
			},
			wantErr: false,
		},
		{
			name:  "publish failure does not fail the request",
			email: "test@example.com",
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				r.On("CreateResetToken", mock.Anything, mock.Anything).Return(nil).Once()
				p.On("Publish", mock.Anything).Return(errors.New("broker down")).Once()
			},
			wantErr: false,
		},
		{
			name:  "repository error",
			email: "test@example.com",
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").
					Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
			errMsg:  "db error",
		},
		{
			name:  "token insert error",
			email: "test@example.com",
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				r.On("CreateResetToken", mock.Anything, mock.Anything).
					Return(errors.New("db error")).Once()
			},
			wantErr: true,
			errMsg:  "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			publisher := new(PublisherMock)
			svc := services.NewResetService(repo, publisher, newNoopLogger(), time.Hour, "http://localhost:3000/reset")

			tt.setupMocks(repo, publisher)

			err := svc.RequestReset(context.Background(), tt.email)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

// Ссылка в письме должна вести на базовый URL с токеном в пути.
func TestResetService_RequestReset_Link(t *testing.T) {
	testUser := &models.User{UID: "uid-1", Email: "test@example.com"}

	var issuedToken string
	repo := new(RepoMock)
	repo.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
	repo.On("CreateResetToken", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			issuedToken = args.Get(1).(models.ResetToken).Token
		}).Return(nil).Once()

	publisher := new(PublisherMock)
	publisher.On("Publish", mock.MatchedBy(func(msg models.EmailMessage) bool {
		return issuedToken != "" &&
			strings.Contains(msg.HTMLBody, "https://app.example.com/reset/"+issuedToken)
	})).Return(nil).Once()

	svc := services.NewResetService(repo, publisher, newNoopLogger(), time.Hour, "https://app.example.com/reset")

	err := svc.RequestReset(context.Background(), "test@example.com")
	assert.NoError(t, err)

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestResetService_ConsumeReset(t *testing.T) {
	validToken := &models.ResetToken{
		ID:        7,
		UserUID:   "uid-1",
		Token:     "a1b2c3",
		ExpiresAt: time.Now().UTC().Add(30 * time.Minute),
	}
	expiredToken := &models.ResetToken{
		ID:        8,
		UserUID:   "uid-1",
		Token:     "d4e5f6",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	tests := []struct {
		name        string
		token       string
		newPassword string
		setupMocks  func(r *RepoMock)
		wantErr     error
		errMsg      string
	}{
		{
			name:        "successful reset",
			token:       "a1b2c3",
			newPassword: "newpassword",
			setupMocks: func(r *RepoMock) {
				r.On("GetResetToken", mock.Anything, "a1b2c3").Return(validToken, nil).Once()
				r.On("UpdateUserPassword", mock.Anything, "uid-1",
					mock.MatchedBy(func(hash string) bool {
						return password.CompareHash(hash, "newpassword") == nil
					})).Return(nil).Once()
				r.On("DeleteResetToken", mock.Anything, int64(7)).Return(int64(1), nil).Once()
			},
		},
		{
			name:        "unknown token",
			token:       "missing",
			newPassword: "newpassword",
			setupMocks: func(r *RepoMock) {
				r.On("GetResetToken", mock.Anything, "missing").Return(nil, sql.ErrNoRows).Once()
			},
			wantErr: services.ErrInvalidOrExpiredToken,
		},
		{
			name:        "expired token",
			token:       "d4e5f6",
			newPassword: "newpassword",
			setupMocks: func(r *RepoMock) {
				r.On("GetResetToken", mock.Anything, "d4e5f6").Return(expiredToken, nil).Once()
			},
			wantErr: services.ErrInvalidOrExpiredToken,
		},
		{
			name:        "repository error on update",
			token:       "a1b2c3",
			newPassword: "newpassword",
			setupMocks: func(r *RepoMock) {
				r.On("GetResetToken", mock.Anything, "a1b2c3").Return(validToken, nil).Once()
				r.On("UpdateUserPassword", mock.Anything, "uid-1", mock.Anything).
					Return(errors.New("db error")).Once()
			},
			errMsg: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			publisher := new(PublisherMock)
			svc := services.NewResetService(repo, publisher, newNoopLogger(), time.Hour, "http://localhost:3000/reset")

			tt.setupMocks(repo)

			err := svc.ConsumeReset(context.Background(), tt.token, tt.newPassword)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

// Токен одноразовый: после погашения повторный запрос отвечает так же,
// как на неизвестный токен.
func TestResetService_ConsumeReset_SingleUse(t *testing.T) {
	stored := &models.ResetToken{
		ID:        7,
		UserUID:   "uid-1",
		Token:     "a1b2c3",
		ExpiresAt: time.Now().UTC().Add(30 * time.Minute),
	}

	repo := new(RepoMock)
	repo.On("GetResetToken", mock.Anything, "a1b2c3").Return(stored, nil).Once()
	repo.On("UpdateUserPassword", mock.Anything, "uid-1", mock.Anything).Return(nil).Once()
	repo.On("DeleteResetToken", mock.Anything, int64(7)).Return(int64(1), nil).Once()
	// После удаления токена хранилище его больше не находит.
	repo.On("GetResetToken", mock.Anything, "a1b2c3").Return(nil, sql.ErrNoRows).Once()

	svc := services.NewResetService(repo, new(PublisherMock), newNoopLogger(), time.Hour, "http://localhost:3000/reset")

	assert.NoError(t, svc.ConsumeReset(context.Background(), "a1b2c3", "firstpassword"))
	assert.ErrorIs(t,
		svc.ConsumeReset(context.Background(), "a1b2c3", "secondpassword"),
		services.ErrInvalidOrExpiredToken)

	repo.AssertExpectations(t)
}
