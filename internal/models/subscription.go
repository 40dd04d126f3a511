// Package models содержит доменные структуры, описывающие каталог сервисов,
// пользователей и их подписки, а также типы для приёма данных из JSON-запросов.
package models

import "time"

// Subscription представляет сервис из каталога, на который могут подписываться пользователи.
type Subscription struct {
	ID          int64     // Идентификатор сервиса
	Name        string    // Название подписки (уникальное)
	ServiceName string    // Человеко-читаемое название сервиса
	ServiceURL  string    // Адрес сервиса
	CreatedAt   time.Time // Дата создания, не меняется
}

// SubscriptionList список сервисов каталога с их количеством.
type SubscriptionList struct {
	Count         int
	Subscriptions []Subscription
}

// PopularSubscription сервис каталога с числом подписанных пользователей.
type PopularSubscription struct {
	Subscription
	Subscribers int64
}

// SubscriptionRequest используется для приёма данных сервиса из JSON-запроса.
type SubscriptionRequest struct {
	SubscriptionName string `json:"subscription_name" validate:"required" example:"YouTube"`
	ServiceName      string `json:"service_name" validate:"required" example:"YouTube Premium"`
	ServiceURL       string `json:"service_url" validate:"required,url" example:"https://youtube.com/premium"`
}
