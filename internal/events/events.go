// Package events публикует доменные события каталога в RabbitMQ.
// События отправляются после фиксации транзакции. Ошибка публикации
// не отменяет уже выполненную операцию.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-catalog/internal/lib/rabbitmq"
)

// Типы событий. Используются также как ключи маршрутизации.
const (
	UserSubscriptionAdded         = "user_subscription.added"
	UserSubscriptionStatusChanged = "user_subscription.status_changed"
	UserSubscriptionRemoved       = "user_subscription.removed"
	UserDeleted                   = "user.deleted"
	SubscriptionDeleted           = "subscription.deleted"
)

// Types все типы событий сервиса.
func Types() []string {
	return []string{
		UserSubscriptionAdded,
		UserSubscriptionStatusChanged,
		UserSubscriptionRemoved,
		UserDeleted,
		SubscriptionDeleted,
	}
}

// Queues очереди, которые объявляются при старте.
// Очередь queueName получает все события сервиса.
func Queues(queueName string) []rabbitmq.QueueConfig {
	return []rabbitmq.QueueConfig{
		{QueueName: queueName, RoutingKeys: Types()},
	}
}

// Event конверт публикуемого события.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// UserSubscriptionPayload данные событий о подписке пользователя.
type UserSubscriptionPayload struct {
	UserID         int64  `json:"user_id"`
	SubscriptionID int64  `json:"subscription_id"`
	Status         string `json:"status,omitempty"`
	Price          string `json:"price,omitempty"`
}

// UserDeletedPayload данные события удаления пользователя.
type UserDeletedPayload struct {
	UserID               int64 `json:"user_id"`
	RemovedSubscriptions int64 `json:"removed_subscriptions"`
}

// SubscriptionDeletedPayload данные события удаления сервиса из каталога.
type SubscriptionDeletedPayload struct {
	SubscriptionID int64 `json:"subscription_id"`
	RemovedLinks   int64 `json:"removed_links"`
}

// Publisher публикует события в exchange. Безопасен для конкурентного использования.
type Publisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
	now      func() time.Time
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel, exchange string, log *slog.Logger) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		log:      log,
		now:      time.Now,
	}
}

// Publish публикует событие eventType с данными payload.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	const op = "events.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	ev := New(eventType, payload, p.now())

	p.mu.Lock()
	defer p.mu.Unlock()
	err := rabbitmq.PublishMessage(p.ch, p.exchange, eventType, rabbitmq.Message{
		ID:        ev.ID,
		Type:      ev.Type,
		Timestamp: ev.OccurredAt,
		Body:      ev,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Debug("event published", slog.String("type", eventType), slog.String("event_id", ev.ID))
	return nil
}

// Close закрывает канал.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}

// New собирает конверт события с новым идентификатором.
func New(eventType string, payload any, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

// Noop публикатор, который ничего не отправляет. Используется, когда RabbitMQ выключен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, string, any) error {
	return nil
}
