package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

const subscriptionColumns = `id, subscription_name, service_name, service_url, created_at`

func scanSubscription(row scanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	if err := row.Scan(&sub.ID, &sub.Name, &sub.ServiceName, &sub.ServiceURL, &sub.CreatedAt); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateSubscription сохраняет новую запись каталога.
func (s *Storage) CreateSubscription(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (subscription_name, service_name, service_url)
			  VALUES ($1, $2, $3)
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query,
		req.SubscriptionName, req.ServiceName, req.ServiceURL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// GetSubscription возвращает запись каталога по ID.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE id = $1`
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// UpdateSubscription перезаписывает название, имя сервиса и URL. created_at не меняется.
func (s *Storage) UpdateSubscription(ctx context.Context, id int64, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET subscription_name = $1, service_name = $2, service_url = $3
			  WHERE id = $4
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query,
		req.SubscriptionName, req.ServiceName, req.ServiceURL, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// ListSubscriptions возвращает все записи каталога, упорядоченные по ID.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  ORDER BY id`
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	res := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeleteSubscription удаляет запись каталога вместе со всеми подписками пользователей на неё.
// Возвращает количество удалённых подписок пользователей.
func (s *Storage) DeleteSubscription(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var removed int64
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM user_subscriptions WHERE subscription_id = $1`, id)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = s.conn(ctx).ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
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

// ExistsSubscription проверяет существование записи каталога.
func (s *Storage) ExistsSubscription(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "storage.ExistsSubscription",
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1)`, id)
}

// ExistsSubscriptionByName проверяет, занято ли название.
func (s *Storage) ExistsSubscriptionByName(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "storage.ExistsSubscriptionByName",
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscription_name = $1)`, name)
}

// ExistsSubscriptionByNameExcludingID проверяет, занято ли название другой записью.
func (s *Storage) ExistsSubscriptionByNameExcludingID(ctx context.Context, name string, id int64) (bool, error) {
	return s.exists(ctx, "storage.ExistsSubscriptionByNameExcludingID",
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscription_name = $1 AND id <> $2)`, name, id)
}

// TopSubscriptions возвращает не более limit записей каталога с наибольшим
// числом подписчиков. При равенстве выше запись с меньшим ID.
func (s *Storage) TopSubscriptions(ctx context.Context, limit int) ([]models.PopularSubscription, error) {
	const op = "storage.TopSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.subscription_name, s.service_name, s.service_url, s.created_at,
			      COUNT(us.id) AS subscribers
			  FROM subscriptions s
			  LEFT JOIN user_subscriptions us ON us.subscription_id = s.id
			  GROUP BY s.id
			  ORDER BY subscribers DESC, s.id ASC
			  LIMIT $1`
	rows, err := s.conn(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	res := make([]models.PopularSubscription, 0, limit)
	for rows.Next() {
		var p models.PopularSubscription
		if err := rows.Scan(&p.Subscription.ID, &p.Subscription.Name, &p.Subscription.ServiceName,
			&p.Subscription.ServiceURL, &p.Subscription.CreatedAt, &p.Subscribers); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
