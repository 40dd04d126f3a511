// Package subscription содержит бизнес-логику каталога сервисов:
// создание, изменение, удаление и рейтинг популярности.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-catalog/internal/cache"
	"github.com/magabrotheeeer/subscription-catalog/internal/events"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
	"github.com/magabrotheeeer/subscription-catalog/internal/storage"
)

// TopLimit размер рейтинга популярных сервисов.
const TopLimit = 3

// Repository определяет методы хранилища, нужные каталогу.
type Repository interface {
	// WithinTx выполняет fn в одной транзакции.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateSubscription(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, req models.SubscriptionRequest) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	// DeleteSubscription возвращает количество удалённых подписок пользователей.
	DeleteSubscription(ctx context.Context, id int64) (int64, error)
	ExistsSubscriptionByName(ctx context.Context, name string) (bool, error)
	ExistsSubscriptionByNameExcludingID(ctx context.Context, name string, id int64) (bool, error)
	TopSubscriptions(ctx context.Context, limit int) ([]models.PopularSubscription, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	// Generation возвращает поколение ключа, его нужно запомнить до чтения из базы.
	Generation(ctx context.Context, key string) (int64, error)
	// SetIfGeneration не записывает значение, если ключ инвалидировали после чтения gen.
	SetIfGeneration(ctx context.Context, key string, gen int64, value any, expiration time.Duration) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Manager реализует бизнес-логику каталога сервисов.
type Manager struct {
	repo      Repository
	cache     Cache
	publisher EventPublisher
	cacheTTL  time.Duration
	log       *slog.Logger
}

// New создаёт Manager. cache может быть nil, тогда кеширование отключено.
func New(repo Repository, cache Cache, publisher EventPublisher, cacheTTL time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

func nameTaken(name string) error {
	return apperr.AlreadyExists("subscription with name %q already exists", name)
}

func notFound(id int64) error {
	return apperr.NotFound("subscription with id %d not found", id)
}

// Create добавляет сервис в каталог. Название должно быть уникальным.
func (m *Manager) Create(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "services.subscription.Create"

	var created *models.Subscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := m.repo.ExistsSubscriptionByName(ctx, req.SubscriptionName)
		if err != nil {
			return err
		}
		if taken {
			return nameTaken(req.SubscriptionName)
		}

		created, err = m.repo.CreateSubscription(ctx, req)
		if errors.Is(err, storage.ErrDuplicate) {
			return nameTaken(req.SubscriptionName)
		}
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	m.log.Info("subscription created", slog.Int64("id", created.ID), slog.String("name", created.Name))
	m.invalidate(ctx, cache.TopSubscriptionsKey)
	return created, nil
}

// Update перезаписывает название, имя сервиса и URL.
// Уникальность названия проверяется, только если оно изменилось.
func (m *Manager) Update(ctx context.Context, id int64, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "services.subscription.Update"

	var updated *models.Subscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := m.repo.GetSubscription(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(id)
		}
		if err != nil {
			return err
		}

		if current.Name != req.SubscriptionName {
			taken, err := m.repo.ExistsSubscriptionByNameExcludingID(ctx, req.SubscriptionName, id)
			if err != nil {
				return err
			}
			if taken {
				return nameTaken(req.SubscriptionName)
			}
		}

		updated, err = m.repo.UpdateSubscription(ctx, id, req)
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return nameTaken(req.SubscriptionName)
		case errors.Is(err, storage.ErrNotFound):
			return notFound(id)
		}
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	m.log.Info("subscription updated", slog.Int64("id", id))
	m.invalidate(ctx, cache.TopSubscriptionsKey)
	return updated, nil
}

// List возвращает весь каталог, упорядоченный по ID.
func (m *Manager) List(ctx context.Context) (*models.SubscriptionList, error) {
	const op = "services.subscription.List"

	var subs []models.Subscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		subs, err = m.repo.ListSubscriptions(ctx)
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	return &models.SubscriptionList{
		Count:         len(subs),
		Subscriptions: subs,
	}, nil
}

// Delete удаляет сервис из каталога вместе со всеми подписками пользователей на него.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	const op = "services.subscription.Delete"

	var removed int64
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		removed, err = m.repo.DeleteSubscription(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(id)
		}
		return err
	})
	if err != nil {
		return wrap(op, err)
	}

	m.log.Info("subscription deleted", slog.Int64("id", id), slog.Int64("removed_links", removed))
	m.invalidate(ctx, cache.TopSubscriptionsKey)
	m.publish(ctx, events.SubscriptionDeleted, events.SubscriptionDeletedPayload{
		SubscriptionID: id,
		RemovedLinks:   removed,
	})
	return nil
}

// TopPopular возвращает не более трёх сервисов с наибольшим числом подписчиков.
// При равенстве выше сервис с меньшим ID.
func (m *Manager) TopPopular(ctx context.Context) ([]models.PopularSubscription, error) {
	const op = "services.subscription.TopPopular"

	if m.cache != nil {
		var cached []models.PopularSubscription
		found, err := m.cache.Get(ctx, cache.TopSubscriptionsKey, &cached)
		if err != nil {
			m.log.Warn("failed to read top from cache", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}
	gen, cacheable := m.generation(ctx, cache.TopSubscriptionsKey)

	var top []models.PopularSubscription
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		top, err = m.repo.TopSubscriptions(ctx, TopLimit)
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	if cacheable {
		if _, err := m.cache.SetIfGeneration(ctx, cache.TopSubscriptionsKey, gen, top, m.cacheTTL); err != nil {
			m.log.Warn("failed to cache top", sl.Err(err))
		}
	}
	return top, nil
}

// generation запоминает поколение ключа перед чтением из базы.
// Без поколения результат в кеш не пишется.
func (m *Manager) generation(ctx context.Context, key string) (int64, bool) {
	if m.cache == nil {
		return 0, false
	}
	gen, err := m.cache.Generation(ctx, key)
	if err != nil {
		m.log.Warn("failed to read cache generation", slog.String("key", key), sl.Err(err))
		return 0, false
	}
	return gen, true
}

func (m *Manager) invalidate(ctx context.Context, keys ...string) {
	if m.cache == nil {
		return
	}
	// Инвалидация выполняется и после отмены запроса: изменение уже зафиксировано.
	if err := m.cache.Invalidate(context.WithoutCancel(ctx), keys...); err != nil {
		m.log.Warn("failed to invalidate cache", slog.Any("keys", keys), sl.Err(err))
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, payload any) {
	if err := m.publisher.Publish(ctx, eventType, payload); err != nil {
		m.log.Warn("failed to publish event", slog.String("type", eventType), sl.Err(err))
	}
}

// wrap оставляет доменные ошибки как есть, инфраструктурные оборачивает op.
func wrap(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
