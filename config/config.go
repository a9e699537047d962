// Package config loads and validates the deployment configuration.
// Precedence (highest to lowest): flags > environment > config file >
// defaults. Runtime-editable settings (access password, CDN domain)
// additionally flow through the settings resolver; the values here are
// only their environment-tier fallbacks.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/YoungLee-coder/coshub/settings"
)

// Config is the root configuration struct for coshub.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	KV     KVConfig     `mapstructure:"kv"`
	S3     S3Config     `mapstructure:"s3"`
	CDN    CDNConfig    `mapstructure:"cdn"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// TrustedProxies are CIDR ranges whose forwarded-for headers are
	// honored for client IP extraction. Empty means trust none.
	TrustedProxies []string `mapstructure:"trusted_proxies" validate:"dive,cidr"`
}

// AuthConfig holds the authentication secrets. Secret signs session
// tokens and is mandatory: without it login is permanently unavailable.
// AccessPassword is the environment-tier fallback for the login password.
type AuthConfig struct {
	Secret         string `mapstructure:"secret"`
	AccessPassword string `mapstructure:"access_password"`
}

// KVConfig selects the settings store backend.
type KVConfig struct {
	// Backend is bbolt, memory, or none. "none" models runtimes without
	// a KV binding: reads fall back to the environment, writes fail.
	Backend string `mapstructure:"backend" validate:"required,oneof=bbolt memory none"`
	Path    string `mapstructure:"path"`
}

// S3Config holds the object-storage endpoint and credentials.
type S3Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	Insecure       bool   `mapstructure:"insecure"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// CDNConfig holds the environment-tier fallback for the CDN domain.
type CDNConfig struct {
	Domain string `mapstructure:"domain"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":       "server.port",
	"kv":         "kv.backend",
	"kv-path":    "kv.path",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults registers every key, including empty ones: viper only
// surfaces environment overrides during Unmarshal for keys it knows.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.access_password", "")

	v.SetDefault("kv.backend", "bbolt")
	v.SetDefault("kv.path", "./data/settings.db")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.insecure", false)
	v.SetDefault("s3.force_path_style", false)

	v.SetDefault("cdn.domain", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// EnvProvider returns the settings resolver's environment tier backed
// by the loaded configuration, so fallback values set in the config
// file behave exactly like their COSHUB_* process-env equivalents.
// Unknown keys fall through to os.Getenv.
func (c *Config) EnvProvider() settings.EnvFunc {
	return func(key string) string {
		switch key {
		case settings.AccessPassword.EnvKey:
			return c.Auth.AccessPassword
		case settings.CDNDomain.EnvKey:
			return c.CDN.Domain
		}
		return os.Getenv(key)
	}
}

// Load reads configuration and returns a validated Config struct.
// configFile may be empty, in which case ./config.yaml is tried.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// COSHUB_AUTH_SECRET, COSHUB_SERVER_PORT, COSHUB_S3_ENDPOINT, ...
	v.SetEnvPrefix("COSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The settings resolver's env-tier keys reuse the same prefix but
	// sit outside the nested structure; map them in explicitly.
	_ = v.BindEnv("auth.access_password", "COSHUB_ACCESS_PASSWORD")
	_ = v.BindEnv("cdn.domain", "COSHUB_CDN_DOMAIN")

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
