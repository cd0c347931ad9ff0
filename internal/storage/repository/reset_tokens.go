package repository

import (
	"context"
	"fmt"

	"github.com/marketpulse/account-service/internal/models"
)

// CreateResetToken сохраняет выданный токен сброса пароля.
// Несколько действующих токенов на одного пользователя допустимы.
func (s *Storage) CreateResetToken(ctx context.Context, token models.ResetToken) error {
	const op = "storage.CreateResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO password_resets (user_uid, token, expires_at)
			  VALUES ($1, $2, $3);`
	if _, err := s.DB.ExecContext(ctx, query,
		token.UserUID, token.Token, token.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetResetToken возвращает запись токена по его точному значению.
func (s *Storage) GetResetToken(ctx context.Context, token string) (*models.ResetToken, error) {
	const op = "storage.GetResetToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, token, expires_at, created_at
			  FROM password_resets
			  WHERE token = $1`
	rt := &models.ResetToken{}
	row := s.DB.QueryRowContext(ctx, query, token)
	if err := row.Scan(&rt.ID, &rt.UserUID, &rt.Token,
		&rt.ExpiresAt, &rt.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rt, nil
}

// DeleteResetToken удаляет токен после использования, возвращает число
// удаленных строк. Повторное удаление того же токена возвращает ноль.
func (s *Storage) DeleteResetToken(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteResetToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM password_resets WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// DeleteExpiredResetTokens удаляет все токены с истекшим сроком действия.
func (s *Storage) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	const op = "storage.DeleteExpiredResetTokens"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM password_resets WHERE expires_at <= now()`
	res, err := s.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
