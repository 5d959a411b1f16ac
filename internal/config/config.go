package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/raaihank/record-sentinel/internal/masking"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// RECORDS_SYNC_API_KEY overrides sync.api_key.
const EnvPrefix = "RECORDS"

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := newViper(configPath)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// Watch re-reads the configuration file whenever it changes and hands every
// valid result to onChange. Invalid reloads go to onError and are otherwise
// ignored, so the running configuration stays in effect.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for watching: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("ignoring config change in %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()

	return nil
}

// newViper builds a viper instance with search paths and env overrides
func newViper(configPath string) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/record-sentinel/")
	v.AddConfigPath("$HOME/.record-sentinel/")

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so every
	// struct key is bound explicitly. This is how secrets reach the config.
	for _, key := range configKeys(reflect.TypeOf(Config{}), "") {
		_ = v.BindEnv(key)
	}

	// Use specific config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	return v
}

// decode unmarshals viper state on top of the defaults and validates it
func decode(v *viper.Viper) (*Config, error) {
	cfg := GetDefaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configKeys lists the dotted mapstructure keys of every leaf field
func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct && field.Type.String() != "time.Duration" {
			keys = append(keys, configKeys(field.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	switch config.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if config.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be memory or postgres)", config.Storage.Driver)
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required when the cache is enabled")
	}

	if config.RateLimit.RequestsPerMin < 0 || config.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}

	if config.Sync.RequestsPerSecond < 0 || config.Sync.Burst < 0 {
		return fmt.Errorf("sync rate values must not be negative")
	}

	return nil
}

// Redacted returns a copy of the configuration that is safe to log: every
// credential is masked, including passwords inside connection URLs.
func (c *Config) Redacted() Config {
	out := *c
	out.Storage.DatabaseURL = masking.ConnectionString(c.Storage.DatabaseURL)
	out.Cache.RedisURL = masking.ConnectionString(c.Cache.RedisURL)
	out.Sync.APIKey = masking.Secret(c.Sync.APIKey)
	out.Sync.APISecret = masking.Secret(c.Sync.APISecret)
	out.Admin.Password = masking.Password(c.Admin.Password)
	out.WebSocket.Password = masking.Password(c.WebSocket.Password)
	return out
}
