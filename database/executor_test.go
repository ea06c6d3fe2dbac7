package database

import (
	"context"
	"testing"

	"rxvision_server/structs/tables"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })
	return Wrap(sqldb, nil), mock
}

func TestFirstReturnsNilWhenNoRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM "users" AS "u" WHERE .*email = 'nobody@rxvision.io'.* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	user, err := Query[tables.User](db).Where("email", "nobody@rxvision.io").First(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFirstScansRow(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "users" AS "u" WHERE .*id = .* LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "credit_balance"}).
			AddRow(id.String(), "ada@rxvision.io", 7))

	user, err := FindByID[tables.User](context.Background(), db, id)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.Id)
	assert.Equal(t, "ada@rxvision.io", user.Email)
	assert.Equal(t, 7, user.CreditBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" AS "u"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := Query[tables.User](db).Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementIsAtomicUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE "users" AS "u" SET "credit_balance" = "credit_balance" \+ 5 WHERE .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "credit_balance"}).AddRow(id.String(), 12))

	rows, err := Query[tables.User](db).Where("id", id).Increment(context.Background(), "credit_balance", 5)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].CreditBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM "messages" AS "msg" WHERE .*group_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := Query[tables.Message](db).Where("group_id", uuid.New()).Delete(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllQualifiesBareColumns(t *testing.T) {
	db, mock := newMockDB(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "molecule_generation_histories" AS "mgh" WHERE \("mgh"\."user_id" = .*\) AND \(mgh\.num_molecules > 3\) ORDER BY "mgh"\."created_at" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "smiles"}).
			AddRow(uuid.New().String(), "CCO").
			AddRow(uuid.New().String(), "c1ccccc1"))

	rows, err := Query[tables.MoleculeGenerationHistory](db).
		Where("user_id", userID).
		WhereRaw("mgh.num_molecules > ?", 3).
		OrderBy("created_at", DESC).
		All(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CCO", rows[0].Smiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
