// Package config sets up the padplug configuration system.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	configData Config
	v          *viper.Viper
)

// Config holds all configuration settings.
type Config struct {
	// Plugin configuration
	Plugin struct {
		// Path is the directory against which relative plugin filenames are resolved.
		Path string
		// Files lists the plugin module files to load, in order.
		Files []string
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
}

// Initialize sets up the configuration system.
func Initialize() error {
	v = viper.New()

	// Set config name and paths
	v.SetConfigName("config")         // name of config file (without extension)
	v.SetConfigType("yaml")           // config file type
	v.AddConfigPath(".")              // optionally look for config in working directory
	v.AddConfigPath("$HOME/.padplug") // look for config in .padplug directory in home
	v.AddConfigPath("/etc/padplug/")  // path to look for the config file in

	// Set default values
	setDefaults()

	// Environment variables
	v.SetEnvPrefix("PADPLUG") // prefix for env vars
	v.AutomaticEnv()          // read in environment variables that match
	v.SetEnvKeyReplacer(      // replace dots with underscores in env vars
		strings.NewReplacer(".", "_"),
	)

	// Read in config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if we can't find a config file, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal config into struct
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	// Plugin defaults
	v.SetDefault("plugin.path", "plugins")
	v.SetDefault("plugin.files", []string{})

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")
}

// PluginFilenames returns the configured plugin module filenames in configured order,
// resolved against the plugin directory. Absolute entries are kept as-is.
func PluginFilenames() []string {
	cfg := Get()

	filenames := make([]string, 0, len(cfg.Plugin.Files))
	for _, f := range cfg.Plugin.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(cfg.Plugin.Path, f)
		}
		filenames = append(filenames, f)
	}

	return filenames
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance.
func GetViper() *viper.Viper {
	return v
}
