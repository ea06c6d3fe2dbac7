package stores

import (
	"context"
	"testing"

	"rxvision_server/database"
	"rxvision_server/lib"
	"rxvision_server/structs/tables"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*BunUserStore, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })
	return NewBunUserStore(database.Wrap(sqldb, nil)), mock
}

func TestBunUserStoreCreateMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "users" .*RETURNING`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := store.Create(context.Background(), &tables.User{Email: "ada@rxvision.io", PasswordHash: "h"})

	assert.ErrorIs(t, err, lib.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBunUserStoreGetByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM "users" AS "u" WHERE .*email = 'ghost@rxvision.io'`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetByEmail(context.Background(), "ghost@rxvision.io")

	assert.ErrorIs(t, err, lib.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBunUserStoreMarkEmailVerifiedClearsToken(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "users" AS "u" SET "is_email_verified" = (?i:true), "updated_at" = .*, "verification_expires" = NULL, "verification_token" = NULL WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.MarkEmailVerified(context.Background(), uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBunUserStoreIncrementCreditsMissingUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "users" AS "u" SET "credit_balance" = "credit_balance" \+ 3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "credit_balance"}))

	_, err := store.IncrementCredits(context.Background(), uuid.New(), 3)

	assert.ErrorIs(t, err, lib.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
