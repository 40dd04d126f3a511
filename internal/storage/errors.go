package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// Имена ограничений схемы, по которым сервисный слой различает нарушения.
const (
	ConstraintUsername         = "users_username_key"
	ConstraintEmail            = "users_email_key"
	ConstraintSubscriptionName = "subscriptions_subscription_name_key"
	ConstraintUserSubscription = "user_subscriptions_user_id_subscription_id_key"

	ConstraintUserSubscriptionUser         = "user_subscriptions_user_id_fkey"
	ConstraintUserSubscriptionSubscription = "user_subscriptions_subscription_id_fkey"
)

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate нарушено ограничение уникальности.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenceMissing нарушен внешний ключ: связанная запись не существует.
	ErrReferenceMissing = errors.New("referenced record missing")
)

// ConstraintError ошибка нарушения ограничения схемы.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ViolatedConstraint возвращает имя нарушенного ограничения или пустую строку.
func ViolatedConstraint(err error) string {
	var cErr *ConstraintError
	if errors.As(err, &cErr) {
		return cErr.Constraint
	}
	return ""
}

// mapError переводит ошибки драйвера в ошибки пакета.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return &ConstraintError{Kind: ErrDuplicate, Constraint: pgErr.ConstraintName, Err: err}
		case foreignKeyViolationCode:
			return &ConstraintError{Kind: ErrReferenceMissing, Constraint: pgErr.ConstraintName, Err: err}
		}
	}
	return err
}
