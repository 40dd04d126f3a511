// Package apperr описывает доменные ошибки сервисного слоя.
//
// Определены ровно два вида ошибок: ErrNotFound и ErrAlreadyExists.
// Конкретная ошибка несёт человеко-читаемое сообщение (с id, парой id или
// значением уникального ключа) и разворачивается в свой вид через errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: запрошенный пользователь, сервис или подписка не существует.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: нарушен инвариант уникальности.
	ErrAlreadyExists = errors.New("already exists")
)

// Error доменная ошибка с видом и сообщением.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap возвращает вид ошибки.
func (e *Error) Unwrap() error {
	return e.kind
}

// NotFound создаёт ошибку вида ErrNotFound.
func NotFound(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// AlreadyExists создаёт ошибку вида ErrAlreadyExists.
func AlreadyExists(format string, args ...any) error {
	return &Error{kind: ErrAlreadyExists, msg: fmt.Sprintf(format, args...)}
}

// IsNotFound сообщает, является ли err ошибкой вида ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists сообщает, является ли err ошибкой вида ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
