package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedAreOrdered(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 2)

	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "create products", ms[0].Description)
	assert.Contains(t, ms[0].SQL, "CREATE TABLE IF NOT EXISTS products")
	assert.Equal(t, 2, ms[1].Version)
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"no underscore": {"m/0001.sql": {Data: []byte("SELECT 1")}},
		"bad version":   {"m/abc_x.sql": {Data: []byte("SELECT 1")}},
		"duplicate": {
			"m/0001_a.sql": {Data: []byte("SELECT 1")},
			"m/1_b.sql":    {Data: []byte("SELECT 1")},
		},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadMigrations(fsys, "m")
			assert.Error(t, err)
		})
	}
}

func TestLoadMigrations_SkipsNonSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte("SELECT 2")},
		"m/0001_first.sql":  {Data: []byte("SELECT 1")},
		"m/README.md":       {Data: []byte("docs")},
	}
	ms, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "first", ms[0].Description)
	assert.Equal(t, "second", ms[1].Description)
}

func TestMigrateUp_AppliesOnlyPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE accounts`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := MigrateUp(context.Background(), db, []Migration{
		{Version: 1, Description: "products", SQL: "CREATE TABLE products ()"},
		{Version: 2, Description: "accounts", SQL: "CREATE TABLE accounts ()"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
