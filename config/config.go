// Package config loads ipcforge configuration using Viper.
//
// Precedence (lowest to highest): built-in defaults < ipcforge.toml found by
// walking up from the working directory < IPCFORGE_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ipcforge/ipcforge/errors"
	"github.com/spf13/viper"
)

// Config holds the tool-wide settings. The engine itself takes these as
// plain values; nothing in the transform reads global state.
type Config struct {
	Host      HostConfig      `mapstructure:"host"`
	Transform TransformConfig `mapstructure:"transform"`
}

// HostConfig describes the host runtime module the generated code imports.
type HostConfig struct {
	// Module is the module specifier the generated glue imports the IPC
	// primitives from.
	Module string `mapstructure:"module"`
}

// TransformConfig holds build-invocation defaults.
type TransformConfig struct {
	// Context is the default processing context ("main" or "renderer")
	// used when the --context flag is absent. Empty means the flag is
	// required.
	Context string `mapstructure:"context"`

	// Concurrency bounds how many files are transformed in parallel.
	Concurrency int `mapstructure:"concurrency"`

	// SourceMaps controls whether transform --write also emits the
	// position-mapping sidecar next to each rewritten file.
	SourceMaps bool `mapstructure:"source_maps"`
}

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the ipcforge configuration using Viper.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// SetDefaults applies the built-in defaults to a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host.module", "electron")
	v.SetDefault("transform.context", "")
	v.SetDefault("transform.concurrency", runtime.NumCPU())
	v.SetDefault("transform.source_maps", false)
}

// initViper initializes Viper with configuration sources and defaults.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("IPCFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configPath := findProjectConfig(); configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		// A broken project config should not take the whole build down;
		// the file is optional and the defaults are complete.
		_ = v.ReadInConfig()
	}

	viperInstance = v
	return v
}

// findProjectConfig searches for ipcforge.toml by walking up the directory
// tree from the working directory. Returns the first config file found, or
// empty string if none found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, "ipcforge.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
