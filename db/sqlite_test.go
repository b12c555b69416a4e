package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rendaw/luxemog/models"
)

func TestConnectCreatesFileAndMigrates(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "history.db")

	conn, err := Connect(dsn, false)
	require.NoError(t, err)

	assert.True(t, conn.Migrator().HasTable(&models.Run{}))

	require.NoError(t, conn.Create(&models.Run{
		ID:             "run_test",
		TransformsFile: "rules.luxem",
		Source:         "input.luxem",
	}).Error)

	var loaded models.Run
	require.NoError(t, conn.First(&loaded, "id = ?", "run_test").Error)
	assert.Equal(t, "input.luxem", loaded.Source)
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("libsql://example.turso.io"))
	assert.True(t, isURL("https://example.turso.io"))
	assert.False(t, isURL("history.db"))
	assert.False(t, isURL("/var/lib/luxemog/history.db"))
}
