package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status статус подписки пользователя.
type Status string

const (
	// StatusActive подписка активна. С этим статусом подписка создаётся.
	StatusActive Status = "ACTIVE"
	// StatusInactive подписка приостановлена.
	StatusInactive Status = "INACTIVE"
)

// Valid сообщает, является ли s одним из известных статусов.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

func (s Status) String() string {
	return string(s)
}

// UserSubscription связь пользователя с сервисом каталога.
// Пара (UserID, SubscriptionID) уникальна.
type UserSubscription struct {
	ID             int64
	UserID         int64
	SubscriptionID int64
	Price          decimal.Decimal
	Status         Status
	SubscribedAt   time.Time    // Дата подписки, не меняется
	UpdatedAt      time.Time    // Дата изменения статуса
	Subscription   Subscription // Снимок сервиса каталога
}

// UserSubscriptionList список подписок пользователя с их количеством.
type UserSubscriptionList struct {
	Count         int
	Subscriptions []UserSubscription
}

// UserSubscriptionRequest используется для приёма запроса на добавление подписки пользователю.
type UserSubscriptionRequest struct {
	SubscriptionID int64           `json:"subscription_id" validate:"required" example:"12"`
	Price          decimal.Decimal `json:"price" swaggertype:"string" example:"4.875"`
}

// ChangeStatusRequest используется для приёма запроса на изменение статуса подписки.
type ChangeStatusRequest struct {
	Status Status `json:"subscription_status" validate:"required,oneof=ACTIVE INACTIVE" example:"INACTIVE"`
}
