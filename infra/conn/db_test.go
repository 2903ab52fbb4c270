package conn

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM orders WHERE id = $1 AND guid = $2", pg.Rebind("SELECT * FROM orders WHERE id = ? AND guid = ?"))

	lite := &DB{Driver: DriverSQLite}
	assert.Equal(t, "SELECT 1 WHERE a = ?", lite.Rebind("SELECT 1 WHERE a = ?"))
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bluepay.db")

	db, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	defer db.CloseDatabase()

	assert.Equal(t, DriverSQLite, db.Driver)
	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "a.db?cache=shared", sqliteDSN("a.db?cache=shared"))
	assert.Contains(t, sqliteDSN("a.db"), "_journal_mode=WAL")
}
