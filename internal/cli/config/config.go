// Package config loads the murmur CLI settings from a TOML file under the
// user's config directory. Values are read through viper so flags and
// MURMUR_* environment variables can override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const appDir = "murmur"

var (
	v        = viper.New()
	dir      string
	filePath string
)

var defaults = map[string]interface{}{
	"api.base_url":  "http://localhost:8787",
	"api.timeout":   30,
	"output.format": "text",
	"log.level":     "info",
}

// Init loads configPath, or <user config dir>/murmur/config.toml when empty.
// A missing file is not an error.
func Init(configPath string) error {
	if configPath == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		configPath = filepath.Join(base, appDir, "config.toml")
	}
	filePath = configPath
	dir = filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	v = viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(appDir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetDefault("log.file", filepath.Join(dir, "murmur-cli.log"))

	v.SetConfigFile(filePath)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	return nil
}

// GetString returns key; a leading ~ in log.file expands to the home directory
func GetString(key string) string {
	value := v.GetString(key)
	if key == "log.file" && strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, value[1:])
		}
	}
	return value
}

func GetInt(key string) int { return v.GetInt(key) }

// Set overrides key for this process only
func Set(key string, value interface{}) { v.Set(key, value) }

// Save sets key and writes the whole config file
func Save(key, value string) error {
	v.Set(key, value)
	return v.WriteConfigAs(filePath)
}

// GetCredentialsPath is where the saved session lives, next to the config file
func GetCredentialsPath() string {
	return filepath.Join(dir, "credentials")
}
