package lib

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrForbidden          = errors.New("forbidden")
	ErrTooManyRequests    = errors.New("too many requests")
)

// MapPgError translates driver errors into the sentinels above by SQLSTATE
func MapPgError(err error) error {
	if err == nil {
		return nil
	}

	switch sqlState(err) {
	case "23505": // unique_violation
		return ErrConflict
	case "23503": // foreign_key_violation, the referenced row is gone
		return ErrNotFound
	case "P0002": // no_data_found
		return ErrNotFound
	}
	return err
}

func sqlState(err error) string {
	var pdErr pgdriver.Error
	if errors.As(err, &pdErr) {
		return pdErr.Field('C')
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrConflict) || sqlState(err) == "23505"
}

// GetUserMessage returns a message that is safe to show to API clients
func GetUserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested resource was not found"
	case errors.Is(err, ErrConflict):
		return "The resource already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrEmailNotVerified):
		return "Please verify your email before signing in"
	case errors.Is(err, ErrExpiredToken):
		return "The token has expired"
	case errors.Is(err, ErrInvalidToken):
		return "The token is invalid"
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this resource"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many requests, please try again later"
	}
	return "An unexpected error occurred"
}

// GetDetailForLogging returns the most specific description available for logs
func GetDetailForLogging(err error) string {
	if err == nil {
		return ""
	}
	var pdErr pgdriver.Error
	if errors.As(err, &pdErr) {
		return pdErr.Field('C') + ": " + pdErr.Field('M')
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code + ": " + pgErr.Message
	}
	return err.Error()
}
