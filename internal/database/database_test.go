package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.sqlite")
	schema := `CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY)`

	db, err := NewSQLite(ctx, path, schema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening keeps data and tolerates the existing schema
	db, err = NewSQLite(ctx, path, schema)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM t`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestNewSQLite_BadSchema(t *testing.T) {
	_, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "x.sqlite"), `NOT SQL`)
	require.Error(t, err)
}

func TestNewPostgres_BadURL(t *testing.T) {
	_, err := NewPostgres(context.Background(), "postgres://%zz", "")
	require.Error(t, err)
}
