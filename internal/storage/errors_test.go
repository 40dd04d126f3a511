package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name           string
		err            error
		wantIs         error
		wantConstraint string
	}{
		{
			name:   "no rows",
			err:    fmt.Errorf("scan: %w", sql.ErrNoRows),
			wantIs: ErrNotFound,
		},
		{
			name:           "unique violation",
			err:            &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: ConstraintUsername},
			wantIs:         ErrDuplicate,
			wantConstraint: ConstraintUsername,
		},
		{
			name:           "foreign key violation",
			err:            &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: ConstraintUserSubscriptionUser},
			wantIs:         ErrReferenceMissing,
			wantConstraint: ConstraintUserSubscriptionUser,
		},
		{
			name:   "other errors pass through",
			err:    plain,
			wantIs: plain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)

			assert.ErrorIs(t, got, tt.wantIs)
			assert.Equal(t, tt.wantConstraint, ViolatedConstraint(fmt.Errorf("op: %w", got)))
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError(nil))
}

func TestConstraintError_KeepsDriverError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: ConstraintEmail}
	err := mapError(pgErr)

	var target *pgconn.PgError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, ConstraintEmail, target.ConstraintName)
}
