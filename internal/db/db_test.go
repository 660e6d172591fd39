package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_SingleConnection(t *testing.T) {
	gdb, err := OpenSQLite(filepath.Join(t.TempDir(), "bookings.db"))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Bookings on sqlite are serialized by this one connection.
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.True(t, gdb.Migrator().HasTable("tickets"))
}
