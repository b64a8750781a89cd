package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/domain"
	"devisflow/internal/repository/postgres"
)

var keyQuery = regexp.QuoteMeta(`SELECT api_key FROM api_keys`)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestAPIKeyRepo_Found(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(keyQuery).
		WithArgs("user-1", "openrouter").
		WillReturnRows(sqlmock.NewRows([]string{"api_key"}).AddRow("sk-or-stored"))

	key, err := postgres.NewAPIKeyRepo(db).APIKey(context.Background(), "user-1", domain.ProviderOpenRouter)

	require.NoError(t, err)
	assert.Equal(t, "sk-or-stored", key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepo_NoRowsMeansNoKey(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(keyQuery).
		WithArgs("user-1", "mistral").
		WillReturnRows(sqlmock.NewRows([]string{"api_key"}))

	key, err := postgres.NewAPIKeyRepo(db).APIKey(context.Background(), "user-1", domain.ProviderMistral)

	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestAPIKeyRepo_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(keyQuery).WillReturnError(errors.New("connection refused"))

	_, err := postgres.NewAPIKeyRepo(db).APIKey(context.Background(), "user-1", domain.ProviderOpenAI)

	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
