// Package config provides configuration management.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"ifc-cost/internal/errors"
	"ifc-cost/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. IFC_COST_SERVER_ADDR
const EnvPrefix = "IFC_COST"

// Config is the main application configuration
type Config struct {
	// Rules selects where cost rules come from
	Rules RulesConfig `mapstructure:"rules"`

	// Engine contains calculation settings
	Engine EngineConfig `mapstructure:"engine"`

	// Server contains HTTP settings
	Server ServerConfig `mapstructure:"server"`

	// Logging contains logging configuration
	Logging logging.Config `mapstructure:"logging"`
}

// RulesConfig contains rule source settings
type RulesConfig struct {
	// Dir holds one file per rule table. Empty means built-in defaults.
	Dir string `mapstructure:"dir"`

	// HCLFile is a single rules.hcl bundle, used instead of Dir when set
	HCLFile string `mapstructure:"hcl_file"`

	// ValidateSchema checks tables against their JSON schema on load
	ValidateSchema bool `mapstructure:"validate_schema"`
}

// EngineConfig contains calculation settings
type EngineConfig struct {
	// Workers bounds parallel element evaluation (1 = sequential)
	Workers int `mapstructure:"workers" validate:"min=1,max=256"`

	// ProjectName is used when a request does not name one
	ProjectName string `mapstructure:"project_name" validate:"required"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`

	// CacheSize is the number of cached responses, 0 disables the cache
	CacheSize    int   `mapstructure:"cache_size" validate:"min=0"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Rules: RulesConfig{
			ValidateSchema: true,
		},
		Engine: EngineConfig{
			Workers:     4,
			ProjectName: "IFC Project",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			CacheSize:      256,
			MaxBodyBytes:   10 << 20,
		},
		Logging: logging.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("rules.dir", d.Rules.Dir)
	v.SetDefault("rules.hcl_file", d.Rules.HCLFile)
	v.SetDefault("rules.validate_schema", d.Rules.ValidateSchema)

	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("engine.project_name", d.Engine.ProjectName)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.cache_size", d.Server.CacheSize)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
}

// Load reads configuration from defaults, an optional file and the environment.
// An empty path skips the file; a missing file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Config("failed to read config file "+path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Config("failed to decode config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Config("invalid configuration", err)
	}
	return nil
}
