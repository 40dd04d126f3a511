package response

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-catalog/internal/models"
)

// Subscription представление сервиса каталога.
type Subscription struct {
	ID               int64     `json:"id" example:"1"`
	SubscriptionName string    `json:"subscription_name" example:"YouTube"`
	ServiceName      string    `json:"service_name" example:"YouTube Premium"`
	ServiceURL       string    `json:"service_url" example:"https://youtube.com/premium"`
	CreatedAt        time.Time `json:"created_at"`
}

// Subscriptions представление каталога.
type Subscriptions struct {
	Count         int            `json:"count" example:"1"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// PopularSubscription сервис каталога с числом подписчиков.
type PopularSubscription struct {
	Subscription
	Subscribers int64 `json:"subscribers" example:"42"`
}

// User представление пользователя.
type User struct {
	ID        int64     `json:"id" example:"1"`
	Username  string    `json:"username" example:"User_1"`
	Email     string    `json:"email" example:"user@example.com"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSubscription представление подписки пользователя со снимком сервиса каталога.
type UserSubscription struct {
	ID           int64           `json:"id" example:"1"`
	UserID       int64           `json:"user_id" example:"1"`
	Price        decimal.Decimal `json:"price" swaggertype:"string" example:"4.875"`
	Status       string          `json:"status" example:"ACTIVE"`
	SubscribedAt time.Time       `json:"subscribed_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Subscription Subscription    `json:"subscription"`
}

// UserSubscriptions представление подписок пользователя.
type UserSubscriptions struct {
	Count         int                `json:"count" example:"1"`
	Subscriptions []UserSubscription `json:"subscriptions"`
}

// FromSubscription строит представление сервиса каталога.
func FromSubscription(s models.Subscription) Subscription {
	return Subscription{
		ID:               s.ID,
		SubscriptionName: s.Name,
		ServiceName:      s.ServiceName,
		ServiceURL:       s.ServiceURL,
		CreatedAt:        s.CreatedAt,
	}
}

// FromSubscriptionList строит представление каталога.
func FromSubscriptionList(l models.SubscriptionList) Subscriptions {
	subs := make([]Subscription, 0, len(l.Subscriptions))
	for _, s := range l.Subscriptions {
		subs = append(subs, FromSubscription(s))
	}
	return Subscriptions{
		Count:         l.Count,
		Subscriptions: subs,
	}
}

// FromPopular строит представление рейтинга популярности.
func FromPopular(top []models.PopularSubscription) []PopularSubscription {
	res := make([]PopularSubscription, 0, len(top))
	for _, p := range top {
		res = append(res, PopularSubscription{
			Subscription: FromSubscription(p.Subscription),
			Subscribers:  p.Subscribers,
		})
	}
	return res
}

// FromUser строит представление пользователя.
func FromUser(u models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FromUserSubscription строит представление подписки пользователя.
func FromUserSubscription(us models.UserSubscription) UserSubscription {
	return UserSubscription{
		ID:           us.ID,
		UserID:       us.UserID,
		Price:        us.Price,
		Status:       us.Status.String(),
		SubscribedAt: us.SubscribedAt,
		UpdatedAt:    us.UpdatedAt,
		Subscription: FromSubscription(us.Subscription),
	}
}

// FromUserSubscriptionList строит представление подписок пользователя.
func FromUserSubscriptionList(l models.UserSubscriptionList) UserSubscriptions {
	subs := make([]UserSubscription, 0, len(l.Subscriptions))
	for _, us := range l.Subscriptions {
		subs = append(subs, FromUserSubscription(us))
	}
	return UserSubscriptions{
		Count:         l.Count,
		Subscriptions: subs,
	}
}
