package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrationDir(t *testing.T) {
	t.Run("Found From Here", func(t *testing.T) {
		dir, err := findMigrationDir(filepath.Join("db", "migrations"))
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries)
	})

	t.Run("Absolute Is Kept", func(t *testing.T) {
		abs := t.TempDir()
		dir, err := findMigrationDir(abs)
		require.NoError(t, err)
		assert.Equal(t, abs, dir)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := findMigrationDir("no/such/migrations-dir")
		assert.Error(t, err)
	})
}
