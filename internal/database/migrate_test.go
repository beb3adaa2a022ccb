package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	downs, err := fs.Glob(migrations, "migrations/*.down.sql")
	require.NoError(t, err)
	assert.Len(t, downs, len(ups))
}

func TestOrdersMigration_StoresNameSnapshots(t *testing.T) {
	raw, err := fs.ReadFile(migrations, "migrations/000003_orders.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(raw), "client_name   TEXT NOT NULL")
	assert.Contains(t, string(raw), "seller_name   TEXT NOT NULL DEFAULT ''")
}
