// Package usersubscription содержит бизнес-логику подписок пользователей
// на сервисы каталога.
package usersubscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-catalog/internal/cache"
	"github.com/magabrotheeeer/subscription-catalog/internal/events"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
	"github.com/magabrotheeeer/subscription-catalog/internal/storage"
)

// Repository определяет методы хранилища для работы с подписками пользователей.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	ExistsUser(ctx context.Context, id int64) (bool, error)
	ExistsSubscription(ctx context.Context, id int64) (bool, error)
	ExistsUserSubscription(ctx context.Context, userID, subscriptionID int64) (bool, error)
	CreateUserSubscription(ctx context.Context, userID, subscriptionID int64, price decimal.Decimal) (*models.UserSubscription, error)
	UpdateUserSubscriptionStatus(ctx context.Context, userID, subscriptionID int64, status models.Status) (*models.UserSubscription, error)
	ListUserSubscriptions(ctx context.Context, userID int64) ([]models.UserSubscription, error)
	DeleteUserSubscription(ctx context.Context, userID, subscriptionID int64) error
}

// Cache нужен только для сброса рейтинга популярности.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Manager реализует бизнес-логику подписок пользователей.
type Manager struct {
	repo      Repository
	cache     Cache
	publisher EventPublisher
	log       *slog.Logger
}

// New создаёт Manager. cache может быть nil.
func New(repo Repository, cache Cache, publisher EventPublisher, log *slog.Logger) *Manager {
	return &Manager{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

func userNotFound(id int64) error {
	return apperr.NotFound("user with id %d not found", id)
}

func subscriptionNotFound(id int64) error {
	return apperr.NotFound("subscription with id %d not found", id)
}

func notSubscribed(userID, subscriptionID int64) error {
	return apperr.NotFound("user with id %d is not subscribed to subscription with id %d", userID, subscriptionID)
}

func alreadySubscribed(userID, subscriptionID int64) error {
	return apperr.AlreadyExists("user with id %d is already subscribed to subscription with id %d", userID, subscriptionID)
}

// Add подписывает пользователя на сервис каталога со статусом ACTIVE.
// Проверяется наличие пользователя, затем сервиса, затем отсутствие подписки.
func (m *Manager) Add(ctx context.Context, userID int64, req models.UserSubscriptionRequest) (*models.UserSubscription, error) {
	const op = "services.usersubscription.Add"
	subID := req.SubscriptionID

	var created *models.UserSubscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := m.repo.ExistsUser(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return userNotFound(userID)
		}

		ok, err = m.repo.ExistsSubscription(ctx, subID)
		if err != nil {
			return err
		}
		if !ok {
			return subscriptionNotFound(subID)
		}

		ok, err = m.repo.ExistsUserSubscription(ctx, userID, subID)
		if err != nil {
			return err
		}
		if ok {
			return alreadySubscribed(userID, subID)
		}

		created, err = m.repo.CreateUserSubscription(ctx, userID, subID, req.Price)
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return alreadySubscribed(userID, subID)
		case errors.Is(err, storage.ErrReferenceMissing):
			if storage.ViolatedConstraint(err) == storage.ConstraintUserSubscriptionUser {
				return userNotFound(userID)
			}
			return subscriptionNotFound(subID)
		}
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	m.log.Info("user subscribed",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", subID),
	)
	m.invalidateTop(ctx)
	m.publish(ctx, events.UserSubscriptionAdded, events.UserSubscriptionPayload{
		UserID:         userID,
		SubscriptionID: subID,
		Status:         created.Status.String(),
		Price:          created.Price.String(),
	})
	return created, nil
}

// ChangeStatus устанавливает статус подписки. Допускается повторная установка
// текущего статуса, дата изменения обновляется в любом случае.
// Статус вне ACTIVE/INACTIVE считается ошибкой вызывающего кода: HTTP-слой
// отсекает его валидацией, поэтому возвращается обычная ошибка без доменного вида.
func (m *Manager) ChangeStatus(ctx context.Context, userID, subscriptionID int64, status models.Status) (*models.UserSubscription, error) {
	const op = "services.usersubscription.ChangeStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: unknown status %q", op, status)
	}

	var updated *models.UserSubscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = m.repo.UpdateUserSubscriptionStatus(ctx, userID, subscriptionID, status)
		if errors.Is(err, storage.ErrNotFound) {
			return notSubscribed(userID, subscriptionID)
		}
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	m.log.Info("subscription status changed",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", subscriptionID),
		slog.String("status", status.String()),
	)
	m.publish(ctx, events.UserSubscriptionStatusChanged, events.UserSubscriptionPayload{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		Status:         status.String(),
	})
	return updated, nil
}

// ListForUser возвращает все подписки пользователя вместе со снимками сервисов каталога.
func (m *Manager) ListForUser(ctx context.Context, userID int64) (*models.UserSubscriptionList, error) {
	const op = "services.usersubscription.ListForUser"

	var subs []models.UserSubscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := m.repo.ExistsUser(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return userNotFound(userID)
		}

		subs, err = m.repo.ListUserSubscriptions(ctx, userID)
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	return &models.UserSubscriptionList{
		Count:         len(subs),
		Subscriptions: subs,
	}, nil
}

// Remove отписывает пользователя от сервиса каталога.
func (m *Manager) Remove(ctx context.Context, userID, subscriptionID int64) error {
	const op = "services.usersubscription.Remove"

	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		err := m.repo.DeleteUserSubscription(ctx, userID, subscriptionID)
		if errors.Is(err, storage.ErrNotFound) {
			return notSubscribed(userID, subscriptionID)
		}
		return err
	})
	if err != nil {
		return wrap(op, err)
	}

	m.log.Info("user unsubscribed",
		slog.Int64("user_id", userID),
		slog.Int64("subscription_id", subscriptionID),
	)
	m.invalidateTop(ctx)
	m.publish(ctx, events.UserSubscriptionRemoved, events.UserSubscriptionPayload{
		UserID:         userID,
		SubscriptionID: subscriptionID,
	})
	return nil
}

func (m *Manager) invalidateTop(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(context.WithoutCancel(ctx), cache.TopSubscriptionsKey); err != nil {
		m.log.Warn("failed to invalidate cache", slog.String("key", cache.TopSubscriptionsKey), sl.Err(err))
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, payload any) {
	if err := m.publisher.Publish(ctx, eventType, payload); err != nil {
		m.log.Warn("failed to publish event", slog.String("type", eventType), sl.Err(err))
	}
}

func wrap(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
