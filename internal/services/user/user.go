// Package user содержит бизнес-логику управления пользователями.
package user

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

// Repository определяет методы хранилища для работы с пользователями.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateUser(ctx context.Context, username, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, username, email string) (*models.User, error)
	// DeleteUser возвращает количество удалённых подписок пользователя.
	DeleteUser(ctx context.Context, id int64) (int64, error)
	ExistsUserByUsername(ctx context.Context, username string) (bool, error)
	ExistsUserByUsernameExcludingID(ctx context.Context, username string, id int64) (bool, error)
	ExistsUserByEmail(ctx context.Context, email string) (bool, error)
	ExistsUserByEmailExcludingID(ctx context.Context, email string, id int64) (bool, error)
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

// Manager реализует бизнес-логику работы с пользователями.
type Manager struct {
	repo      Repository
	cache     Cache
	publisher EventPublisher
	cacheTTL  time.Duration
	log       *slog.Logger
}

// New создаёт Manager. cache может быть nil.
func New(repo Repository, cache Cache, publisher EventPublisher, cacheTTL time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

func usernameTaken(username string) error {
	return apperr.AlreadyExists("user with username %q already exists", username)
}

func emailTaken(email string) error {
	return apperr.AlreadyExists("user with email %q already exists", email)
}

func notFound(id int64) error {
	return apperr.NotFound("user with id %d not found", id)
}

// duplicateError переводит нарушение уникальности в доменную ошибку
// по имени ограничения.
func duplicateError(err error, req models.UserRequest) error {
	if !errors.Is(err, storage.ErrDuplicate) {
		return err
	}
	if storage.ViolatedConstraint(err) == storage.ConstraintEmail {
		return emailTaken(req.Email)
	}
	return usernameTaken(req.Username)
}

// Create регистрирует пользователя. Сначала проверяется username, затем email.
func (m *Manager) Create(ctx context.Context, req models.UserRequest) (*models.User, error) {
	const op = "services.user.Create"

	var created *models.User
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := m.repo.ExistsUserByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if taken {
			return usernameTaken(req.Username)
		}

		taken, err = m.repo.ExistsUserByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if taken {
			return emailTaken(req.Email)
		}

		created, err = m.repo.CreateUser(ctx, req.Username, req.Email)
		return duplicateError(err, req)
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	m.log.Info("user created", slog.Int64("id", created.ID))
	return created, nil
}

// GetByID возвращает пользователя, сначала пробуя кеш.
func (m *Manager) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.user.GetByID"

	key := cache.UserKey(id)
	if m.cache != nil {
		var cached models.User
		found, err := m.cache.Get(ctx, key, &cached)
		if err != nil {
			m.log.Warn("failed to read user from cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}
	gen, cacheable := m.generation(ctx, key)

	var u *models.User
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = m.repo.GetUser(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(id)
		}
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	if cacheable {
		if _, err := m.cache.SetIfGeneration(ctx, key, gen, u, m.cacheTTL); err != nil {
			m.log.Warn("failed to cache user", slog.String("key", key), sl.Err(err))
		}
	}
	return u, nil
}

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

// Update перезаписывает username и email. Каждое поле проверяется на
// уникальность, только если изменилось. Ошибка по username приоритетнее.
func (m *Manager) Update(ctx context.Context, id int64, req models.UserRequest) (*models.User, error) {
	const op = "services.user.Update"

	var updated *models.User
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := m.repo.GetUser(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(id)
		}
		if err != nil {
			return err
		}

		if current.Username != req.Username {
			taken, err := m.repo.ExistsUserByUsernameExcludingID(ctx, req.Username, id)
			if err != nil {
				return err
			}
			if taken {
				return usernameTaken(req.Username)
			}
		}
		if current.Email != req.Email {
			taken, err := m.repo.ExistsUserByEmailExcludingID(ctx, req.Email, id)
			if err != nil {
				return err
			}
			if taken {
				return emailTaken(req.Email)
			}
		}

		updated, err = m.repo.UpdateUser(ctx, id, req.Username, req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(id)
		}
		return duplicateError(err, req)
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	m.log.Info("user updated", slog.Int64("id", id))
	m.invalidate(ctx, cache.UserKey(id))
	return updated, nil
}

// Delete удаляет пользователя вместе со всеми его подписками.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	const op = "services.user.Delete"

	var removed int64
	err := m.repo.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		removed, err = m.repo.DeleteUser(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(id)
		}
		return err
	})
	if err != nil {
		return wrap(op, err)
	}

	m.log.Info("user deleted", slog.Int64("id", id), slog.Int64("removed_subscriptions", removed))
	m.invalidate(ctx, cache.UserKey(id), cache.TopSubscriptionsKey)
	if err := m.publisher.Publish(ctx, events.UserDeleted, events.UserDeletedPayload{
		UserID:               id,
		RemovedSubscriptions: removed,
	}); err != nil {
		m.log.Warn("failed to publish event", slog.String("type", events.UserDeleted), sl.Err(err))
	}
	return nil
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

func wrap(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
