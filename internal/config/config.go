// Package config loads the probe's settings via Viper. Values come from, in
// increasing precedence: built-in defaults, an optional YAML file, the
// INTROSPECT_* environment (optionally seeded from a dotenv file), and
// command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"introspect/internal/service"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "INTROSPECT"

var validate = validator.New()

// Config is the top-level probe configuration.
type Config struct {
	Host     string         `mapstructure:"host" validate:"required,hostname_rfc1123|ip"`
	Timeout  string         `mapstructure:"timeout"`
	LogLevel string         `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Ports    map[string]int `mapstructure:"ports" validate:"dive,min=0,max=65535"` // per-service port overrides; 0 keeps the built-in port
}

// ParsedTimeout returns the request timeout as a time.Duration, defaulting
// to 10s.
func (c Config) ParsedTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Host:     "127.0.0.1",
		Timeout:  "10s",
		LogLevel: "warn",
		Ports:    map[string]int{},
	}
}

// Options selects the sources Load reads from. Every field is optional.
type Options struct {
	File    string         // YAML config file; must exist when set
	EnvFile string         // dotenv file loaded into the environment first
	Flags   *pflag.FlagSet // flags bound to their config keys when present
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"host":      "host",
	"timeout":   "timeout",
	"log_level": "log-level",
}

// Load resolves the configuration from the sources in opts.
func Load(opts Options) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return Config{}, fmt.Errorf("config: loading env file %q: %w", opts.EnvFile, err)
		}
	}

	v := newViper()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %q: %w", opts.File, err)
		}
	}

	if opts.Flags != nil {
		for key, name := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: binding flag --%s: %w", name, err)
				}
			}
		}
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("host", def.Host)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log_level", def.LogLevel)
	// Registering every service key lets INTROSPECT_PORTS_<SERVICE> reach
	// Unmarshal through AutomaticEnv.
	for _, name := range service.Names() {
		v.SetDefault("ports."+name, 0)
	}

	return v
}

func unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	for name, port := range cfg.Ports {
		if _, err := service.Parse(name); err != nil {
			return Config{}, fmt.Errorf("config: ports: %w", err)
		}
		if port == 0 {
			delete(cfg.Ports, name)
		}
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return Config{}, fmt.Errorf("config: timeout %q: %w", cfg.Timeout, err)
		}
	}
	return cfg, nil
}
