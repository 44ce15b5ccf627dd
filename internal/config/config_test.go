package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_createsDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	v, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.Equal(t, defaultCatalogSource, v.GetString(KeyCatalogSource))
	assert.Equal(t, defaultCatalogRef, v.GetString(KeyCatalogRef))
	assert.Empty(t, v.GetString(KeyToolBin))
}

func TestLoad_readsOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "catalog_source: github:my/fork\ncatalog_ref: nixos-24.05\ntool_bin: /opt/nix/bin/nix\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	v, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "github:my/fork", v.GetString(KeyCatalogSource))
	assert.Equal(t, "nixos-24.05", v.GetString(KeyCatalogRef))
	assert.Equal(t, "/opt/nix/bin/nix", v.GetString(KeyToolBin))
}

func TestLoad_doesNotClobberExisting(t *testing.T) {
	dir := t.TempDir()
	content := "catalog_ref: nixos-24.05\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestResolveDir_precedence(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(envConfigDir, "/from/env")
		dir, err := ResolveDir("/from/flag")
		require.NoError(t, err)
		assert.Equal(t, "/from/flag", dir)
	})

	t.Run("env second", func(t *testing.T) {
		t.Setenv(envConfigDir, "/from/env")
		dir, err := ResolveDir("")
		require.NoError(t, err)
		assert.Equal(t, "/from/env", dir)
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv(envConfigDir, "")
		dir, err := ResolveDir("")
		require.NoError(t, err)
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "clannad"), dir)
	})
}
