package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	EnableRetry  bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		EnableRetry:  true,
	}
}

// SQLSTATE classes worth another attempt: 08 connection, 40 transaction
// rollback (serialization, deadlock), 53 insufficient resources.
var retryableClasses = map[string]bool{
	"08": true,
	"40": true,
	"53": true,
}

// Individual codes outside those classes that are transient
var retryableCodes = map[string]bool{
	"57P03": true, // cannot_connect_now
	"57P01": true, // admin_shutdown, the pool reconnects
}

// Substrings of driver and network errors that carry no SQLSTATE
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"bad connection",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"eof",
	"too many clients",
	"server is not accepting",
	"connection pool exhausted",
	"temporary failure",
}

// isRetryableError reports whether err is transient. Constraint, syntax and
// permission failures, missing rows and context errors never are.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrNoRows) {
		return false
	}

	if code, ok := sqlState(err); ok {
		if retryableCodes[code] {
			return true
		}
		return len(code) == 5 && retryableClasses[code[:2]]
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// sqlState extracts the SQLSTATE code from a pgdriver or pgx error
func sqlState(err error) (string, bool) {
	var pdErr pgdriver.Error
	if errors.As(err, &pdErr) {
		return pdErr.Field('C'), true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// RetryWithBackoff runs operation until it succeeds, fails permanently or
// MaxAttempts is reached, doubling the delay between attempts up to MaxDelay.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func() error) error {
	if !config.EnableRetry || config.MaxAttempts < 1 {
		return operation()
	}

	delay := config.InitialDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = operation(); err == nil || !isRetryableError(err) || attempt >= config.MaxAttempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*config.Multiplier), config.MaxDelay)
	}
}

// WithRetry wraps a database operation with the default retry policy
func WithRetry(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, DefaultRetryConfig(), fn)
}
