package account

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := &Account{ID: uuid.New(), Email: "Ops@Shop.test", PasswordHash: "hash"}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts (id, email, password_hash)`)).
		WithArgs(a.ID, "ops@shop.test", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, now, a.CreatedAt)

	mock.ExpectQuery(`INSERT INTO accounts`).WillReturnError(&pq.Error{Code: "23505"})
	assert.ErrorIs(t, repo.Create(context.Background(), a), ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, email, password_hash, created_at, updated_at`).
		WithArgs("ops@shop.test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(id.String(), "ops@shop.test", "hash", now, now))

	a, err := repo.GetByEmail(context.Background(), " OPS@shop.test")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, "hash", a.PasswordHash)

	mock.ExpectQuery(`SELECT id, email`).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(context.Background(), "nobody@shop.test")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
