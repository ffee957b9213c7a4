package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add settlement runs", "add_settlement_runs"},
		{"Add-Share-Entries", "add_share_entries"},
		{"ADD_LATE_FEES", "add_late_fees"},
		{"add__unit__groups", "add_unit_groups"},
		{"Index 2024", "index_2024"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration starts at 000001", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "init schema", "base tables")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: init schema")
		assert.Contains(t, string(up), "-- Description: base tables")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "(rollback)")
	})

	t.Run("next version follows the highest existing one", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "000001_init_schema.up.sql")
		touch(t, dir, "000007_add_late_fees.up.sql")

		mf, err := CreateMigration(dir, "add unit groups", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
	})

	t.Run("creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)
		assert.DirExists(t, dir)
	})

	t.Run("rejects a name without usable characters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		require.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by numeric version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000010_tenth.up.sql", "000010_tenth.down.sql",
			"000002_second.up.sql", "000002_second.down.sql",
			"000001_first.up.sql", "000001_first.down.sql",
		} {
			touch(t, dir, name)
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_first", "000002_second", "000010_tenth"}, migrations)
	})

	t.Run("ignores other files and directories", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "000001_first.up.sql")
		touch(t, dir, "README.md")
		touch(t, dir, "notes.sql")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000002_dir.up.sql"), 0o755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_first"}, migrations)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("repository migrations are paired", func(t *testing.T) {
		dir := filepath.Join("..", "..", "..", "migrations")

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		assert.Equal(t, "000001_init_schema", migrations[0])
		for _, m := range migrations {
			assert.FileExists(t, filepath.Join(dir, m+".down.sql"))
		}
	})
}

func TestSplitByVersion(t *testing.T) {
	files := []string{"000001_a", "000002_b", "000003_c"}

	applied, pending := splitByVersion(files, 2)
	assert.Equal(t, []string{"000001_a", "000002_b"}, applied)
	assert.Equal(t, []string{"000003_c"}, pending)

	applied, pending = splitByVersion(files, 0)
	assert.Empty(t, applied)
	assert.Equal(t, files, pending)
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}
