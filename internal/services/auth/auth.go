// Package services содержит логику бизнес-уровня для аутентификации
// и выпуска сессионных токенов.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marketpulse/account-service/internal/lib/jwt"
	"github.com/marketpulse/account-service/internal/lib/password"
	"github.com/marketpulse/account-service/internal/models"
)

// Ошибки аутентификации, видимые на границе HTTP.
var (
	// ErrInvalidCredentials возвращается и для несуществующего email,
	// и для неверного пароля: ответы неразличимы, чтобы не раскрывать,
	// зарегистрирован ли адрес.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken возвращается при регистрации на занятый email.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за регистрацию, вход и валидацию сессионных токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (string, error) {
	const op = "auth.Register"
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         models.RoleUser, // дефолтная роль при регистрации
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и выпускает сессионный токен.
//
// Отсутствие пользователя и неверный пароль дают один и тот же результат:
// ErrInvalidCredentials без каких-либо уточнений.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Name, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// LoginExternal выпускает сессию по подтвержденному утверждению внешнего
// провайдера идентификации. Если пользователя с таким email нет, он
// создается без пароля с ролью "user".
func (s *AuthService) LoginExternal(ctx context.Context, email, name string) (string, *models.User, error) {
	const op = "auth.LoginExternal"
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		newUser := models.User{
			Email: email,
			Name:  name,
			Role:  models.RoleUser,
		}
		uid, err := s.users.RegisterUser(ctx, newUser)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		newUser.UID = uid
		user = &newUser
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Name, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет сессионный токен и возвращает идентичность пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.User{
		UID:   claims.UserUID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}
