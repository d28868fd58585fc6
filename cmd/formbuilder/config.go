package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "FORMBUILDER"

// Config keys.
const (
	keyStorageDriver = "storage.driver"
	keyStoragePath   = "storage.path"
	keyStorageKey    = "storage.key"
	keyLogLevel      = "log.level"
	keyLogFormat     = "log.format"
	keyThemeFile     = "theme.file"
	keyThemeVariant  = "theme.variant"
)

// Storage drivers.
const (
	driverMemory = "memory"
	driverDir    = "dir"
	driverSQLite = "sqlite"
)

var flagKeys = map[string]string{
	"storage-driver": keyStorageDriver,
	"storage-path":   keyStoragePath,
	"storage-key":    keyStorageKey,
	"log-level":      keyLogLevel,
	"log-format":     keyLogFormat,
	"theme":          keyThemeFile,
	"theme-variant":  keyThemeVariant,
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyStorageDriver, driverDir)
	v.SetDefault(keyStoragePath, defaultDataDir())
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "console")
	return v
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// readConfig loads path when given, otherwise an optional config.yaml in the
// user config directory.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "formbuilder"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "formbuilder", "forms")
	}
	return filepath.Join(".formbuilder", "forms")
}
