package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Configuration file name and keys.
const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend = "backend"
	cfgKeyDataDir = "data_dir"

	defaultDataDir = ".pathway-db"
)

// loadConfig reads config.yaml from the given directory into a viper
// instance. A missing file is not an error; defaults apply.
func loadConfig(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	v.SetDefault(cfgKeyBackend, "sqlite")
	v.SetDefault(cfgKeyDataDir, defaultDataDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeDefaultConfig creates the config directory and writes a default
// config.yaml if one does not already exist.
func writeDefaultConfig(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(dir, configFileName+"."+configFileType)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	content := fmt.Sprintf("%s: sqlite\n%s: %s\n", cfgKeyBackend, cfgKeyDataDir, defaultDataDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
