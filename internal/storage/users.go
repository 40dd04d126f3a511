package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

const userColumns = `id, username, email, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает сохранённую запись.
func (s *Storage) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, email)
			  VALUES ($1, $2)
			  RETURNING ` + userColumns
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, username, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// UpdateUser перезаписывает username и email пользователя и обновляет updated_at.
func (s *Storage) UpdateUser(ctx context.Context, id int64, username, email string) (*models.User, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET username = $1, email = $2, updated_at = NOW()
			  WHERE id = $3
			  RETURNING ` + userColumns
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, username, email, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// DeleteUser удаляет пользователя вместе со всеми его подписками.
// Возвращает количество удалённых подписок пользователя.
func (s *Storage) DeleteUser(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var removed int64
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM user_subscriptions WHERE user_id = $1`, id)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = s.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return removed, nil
}

// ExistsUser проверяет существование пользователя.
func (s *Storage) ExistsUser(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "storage.ExistsUser",
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

// ExistsUserByUsername проверяет, занят ли username.
func (s *Storage) ExistsUserByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "storage.ExistsUserByUsername",
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

// ExistsUserByUsernameExcludingID проверяет, занят ли username другим пользователем.
func (s *Storage) ExistsUserByUsernameExcludingID(ctx context.Context, username string, id int64) (bool, error) {
	return s.exists(ctx, "storage.ExistsUserByUsernameExcludingID",
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, id)
}

// ExistsUserByEmail проверяет, занят ли email.
func (s *Storage) ExistsUserByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "storage.ExistsUserByEmail",
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// ExistsUserByEmailExcludingID проверяет, занят ли email другим пользователем.
func (s *Storage) ExistsUserByEmailExcludingID(ctx context.Context, email string, id int64) (bool, error) {
	return s.exists(ctx, "storage.ExistsUserByEmailExcludingID",
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, id)
}
