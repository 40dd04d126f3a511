package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID        int64     // Идентификатор, назначается хранилищем
	Username  string    // Имя пользователя (уникальное)
	Email     string    // Электронная почта (уникальная)
	CreatedAt time.Time // Дата регистрации, не меняется
	UpdatedAt time.Time // Дата последнего изменения
}

// UserRequest используется для приёма данных пользователя из JSON-запроса
// при создании и при изменении.
type UserRequest struct {
	Username string `json:"username" validate:"required" example:"User_1"`
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
}
