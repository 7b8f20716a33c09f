package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/internal/remote"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "SHELF"
)

// fileConfig is the structure of config.yaml.
type fileConfig struct {
	Backend       string       `yaml:"backend" mapstructure:"backend"`
	DataDir       string       `yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	PromoteRemote bool         `yaml:"promote_remote" mapstructure:"promote_remote"`
	Remote        remoteConfig `yaml:"remote" mapstructure:"remote"`
	Log           logConfig    `yaml:"log" mapstructure:"log"`
	HTTP          httpConfig   `yaml:"http" mapstructure:"http"`
}

type remoteConfig struct {
	// BaseURL may be empty to run without a remote collection.
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type logConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

type httpConfig struct {
	Addr      string  `yaml:"addr" mapstructure:"addr"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// defaultConfig is written to config.yaml on first run.
func defaultConfig() fileConfig {
	return fileConfig{
		Backend: types.BackendSQLite,
		Remote: remoteConfig{
			BaseURL: remote.DefaultBaseURL,
		},
		Log: logConfig{
			Level: "warn",
		},
		HTTP: httpConfig{
			Addr:      ":4000",
			RateLimit: 2,
			Burst:     4,
		},
	}
}

// envKeys are the config keys that SHELF_* variables override. data_dir
// is resolved separately so that config.yaml outranks SHELF_DATA_DIR.
var envKeys = []string{
	"backend",
	"promote_remote",
	"remote.base_url",
	"remote.timeout",
	"log.level",
	"log.development",
	"http.addr",
	"http.rate_limit",
	"http.burst",
}

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run, and applies SHELF_* overrides.
func loadConfig(configDir string) (fileConfig, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return fileConfig{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return fileConfig{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	def := defaultConfig()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("promote_remote", def.PromoteRemote)
	v.SetDefault("remote.base_url", def.Remote.BaseURL)
	v.SetDefault("remote.timeout", def.Remote.Timeout)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.development", def.Log.Development)
	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("http.rate_limit", def.HTTP.RateLimit)
	v.SetDefault("http.burst", def.HTTP.Burst)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fileConfig{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fileConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := (types.Config{Backend: cfg.Backend}).Validate(); err != nil {
		return fileConfig{}, fmt.Errorf("config backend %q: %w", cfg.Backend, err)
	}
	return cfg, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes config.yaml with default values if the
// file does not exist. An existing file is left untouched.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# shelf configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
