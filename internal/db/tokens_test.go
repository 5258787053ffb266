package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestTokenRegistryRegister(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := NewTokenRegistry(sqlxDB)

	mock.ExpectExec("INSERT INTO device_tokens").
		WithArgs("u1", "tok-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Register(context.Background(), "u1", "tok-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRegistryUnregister(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := NewTokenRegistry(sqlxDB)

	mock.ExpectExec("DELETE FROM device_tokens").
		WithArgs("u1", "tok-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Unregister(context.Background(), "u1", "tok-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRegistryList(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := NewTokenRegistry(sqlxDB)

	mock.ExpectQuery("SELECT token FROM device_tokens").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("tok-a").AddRow("tok-b"))

	tokens, err := r.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-b"}, tokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRegistryAll(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := NewTokenRegistry(sqlxDB)

	mock.ExpectQuery("SELECT token, user_id FROM device_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id"}).
			AddRow("tok-a", "u1").
			AddRow("tok-b", "u1").
			AddRow("tok-b", "u2"))

	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, all["tok-a"])
	assert.Equal(t, []string{"u1", "u2"}, all["tok-b"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
