package lib

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	assert.Nil(t, MapPgError(nil))
	assert.ErrorIs(t, MapPgError(&pgconn.PgError{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, MapPgError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})), ErrNotFound)

	plain := errors.New("boom")
	assert.Equal(t, plain, MapPgError(plain))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", ErrConflict)))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestGetDetailForLogging(t *testing.T) {
	assert.Equal(t, "23505: duplicate key", GetDetailForLogging(&pgconn.PgError{Code: "23505", Message: "duplicate key"}))
	assert.Equal(t, "boom", GetDetailForLogging(errors.New("boom")))
}
