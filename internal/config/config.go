// Package config loads the user-level clannad configuration with Viper.
// The config file carries defaults that apply across projects: the catalog
// source new manifests start from and the external tool binary to drive.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	KeyCatalogSource = "catalog_source"
	KeyCatalogRef    = "catalog_ref"
	KeyToolBin       = "tool_bin"

	defaultCatalogSource = "github:NixOS/nixpkgs"
	defaultCatalogRef    = "nixpkgs-unstable"

	envConfigDir = "CLANNAD_CONFIG_DIR"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# clannad configuration

# Default catalog for new manifests
catalog_source: github:NixOS/nixpkgs
catalog_ref: nixpkgs-unstable

# External package-manager binary (optional; default: nix)
# tool_bin:
`

// ResolveDir returns the configuration directory following precedence:
// --config-dir flag > $CLANNAD_CONFIG_DIR > ~/.config/clannad.
func ResolveDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if env := os.Getenv(envConfigDir); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "clannad"), nil
}

// Load reads config.yaml from the given directory using Viper. It creates
// the directory and a default config.yaml on first run. A missing
// config.yaml is not an error.
func Load(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyCatalogSource, defaultCatalogSource)
	v.SetDefault(KeyCatalogRef, defaultCatalogRef)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
