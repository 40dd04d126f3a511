package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

// userSubscriptionSelect выбирает подписку пользователя вместе со снимком сервиса каталога.
const userSubscriptionSelect = `SELECT us.id, us.user_id, us.subscription_id, us.price, us.status,
			      us.subscribed_at, us.updated_at,
			      s.id, s.subscription_name, s.service_name, s.service_url, s.created_at`

func scanUserSubscription(row scanner) (*models.UserSubscription, error) {
	us := &models.UserSubscription{}
	var status string
	if err := row.Scan(&us.ID, &us.UserID, &us.SubscriptionID, &us.Price, &status,
		&us.SubscribedAt, &us.UpdatedAt,
		&us.Subscription.ID, &us.Subscription.Name, &us.Subscription.ServiceName,
		&us.Subscription.ServiceURL, &us.Subscription.CreatedAt); err != nil {
		return nil, err
	}
	us.Status = models.Status(status)
	return us, nil
}

// CreateUserSubscription подписывает пользователя на сервис каталога со статусом ACTIVE.
func (s *Storage) CreateUserSubscription(ctx context.Context, userID, subscriptionID int64, price decimal.Decimal) (*models.UserSubscription, error) {
	const op = "storage.CreateUserSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `WITH us AS (
			      INSERT INTO user_subscriptions (user_id, subscription_id, price, status)
			      VALUES ($1, $2, $3, $4)
			      RETURNING id, user_id, subscription_id, price, status, subscribed_at, updated_at
			  )
			  ` + userSubscriptionSelect + `
			  FROM us
			  JOIN subscriptions s ON s.id = us.subscription_id`
	us, err := scanUserSubscription(s.conn(ctx).QueryRowContext(ctx, query,
		userID, subscriptionID, price, string(models.StatusActive)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return us, nil
}

// GetUserSubscription возвращает подписку пользователя на сервис каталога.
func (s *Storage) GetUserSubscription(ctx context.Context, userID, subscriptionID int64) (*models.UserSubscription, error) {
	const op = "storage.GetUserSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := userSubscriptionSelect + `
			  FROM user_subscriptions us
			  JOIN subscriptions s ON s.id = us.subscription_id
			  WHERE us.user_id = $1 AND us.subscription_id = $2`
	us, err := scanUserSubscription(s.conn(ctx).QueryRowContext(ctx, query, userID, subscriptionID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return us, nil
}

// UpdateUserSubscriptionStatus устанавливает статус подписки и обновляет updated_at,
// даже если статус не изменился.
func (s *Storage) UpdateUserSubscriptionStatus(ctx context.Context, userID, subscriptionID int64, status models.Status) (*models.UserSubscription, error) {
	const op = "storage.UpdateUserSubscriptionStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `WITH us AS (
			      UPDATE user_subscriptions
			      SET status = $1, updated_at = NOW()
			      WHERE user_id = $2 AND subscription_id = $3
			      RETURNING id, user_id, subscription_id, price, status, subscribed_at, updated_at
			  )
			  ` + userSubscriptionSelect + `
			  FROM us
			  JOIN subscriptions s ON s.id = us.subscription_id`
	us, err := scanUserSubscription(s.conn(ctx).QueryRowContext(ctx, query,
		string(status), userID, subscriptionID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return us, nil
}

// ExistsUserSubscription проверяет, подписан ли пользователь на сервис каталога.
func (s *Storage) ExistsUserSubscription(ctx context.Context, userID, subscriptionID int64) (bool, error) {
	return s.exists(ctx, "storage.ExistsUserSubscription",
		`SELECT EXISTS(SELECT 1 FROM user_subscriptions WHERE user_id = $1 AND subscription_id = $2)`,
		userID, subscriptionID)
}

// ListUserSubscriptions возвращает все подписки пользователя, упорядоченные по ID.
func (s *Storage) ListUserSubscriptions(ctx context.Context, userID int64) ([]models.UserSubscription, error) {
	const op = "storage.ListUserSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := userSubscriptionSelect + `
			  FROM user_subscriptions us
			  JOIN subscriptions s ON s.id = us.subscription_id
			  WHERE us.user_id = $1
			  ORDER BY us.id`
	rows, err := s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	res := make([]models.UserSubscription, 0)
	for rows.Next() {
		us, err := scanUserSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, *us)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeleteUserSubscription отписывает пользователя от сервиса каталога.
func (s *Storage) DeleteUserSubscription(ctx context.Context, userID, subscriptionID int64) error {
	const op = "storage.DeleteUserSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM user_subscriptions WHERE user_id = $1 AND subscription_id = $2`,
		userID, subscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
