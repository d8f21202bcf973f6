package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, loaded once at startup and
// immutable afterwards.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Admin    AdminConfig    `yaml:"admin"`
	Signup   SignupConfig   `yaml:"signup"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	// DSN selects the database: a postgres URL/keyword DSN or a SQLite
	// file path.
	DSN string `yaml:"dsn"`
}

// JWTConfig holds bearer token settings.
type JWTConfig struct {
	// Secret signs all issued tokens. Rotating it invalidates every
	// outstanding credential.
	Secret string `yaml:"secret"`
	// ExpiryHours is the token validity window in hours.
	ExpiryHours int `yaml:"expiry-hours"`
}

// Expiry returns the token validity window as a duration.
func (c JWTConfig) Expiry() time.Duration {
	hours := c.ExpiryHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// RedisConfig holds optional redis settings for login throttling.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AdminConfig holds the bootstrap back-office account created on first
// migration when no admin exists.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SignupConfig holds member signup defaults. The matching runtime settings
// in the database take precedence when set.
type SignupConfig struct {
	// DefaultBranch is assigned when a signup omits the branch code.
	DefaultBranch string `yaml:"default-branch"`
	// RandomPIN enables synthesizing a 4-digit PIN when a signup omits one.
	RandomPIN bool `yaml:"random-pin"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a logrus level name; empty means info.
	Level string `yaml:"level"`
	// File enables rotated file output when non-empty.
	File string `yaml:"file"`
	// MaxSizeMB is the rotation threshold per log file.
	MaxSizeMB int `yaml:"max-size-mb"`
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `yaml:"max-backups"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if errDecode := yaml.Unmarshal(data, cfg); errDecode != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, errDecode)
	}

	cfg.applyDefaults()
	if errValidate := cfg.validate(); errValidate != nil {
		return nil, errValidate
	}
	return cfg, nil
}

// applyDefaults fills unset fields with defaults.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8080"
	}
	if c.JWT.ExpiryHours <= 0 {
		c.JWT.ExpiryHours = 24
	}
	if strings.TrimSpace(c.Signup.DefaultBranch) == "" {
		c.Signup.DefaultBranch = "01"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 5
	}
}

// validate rejects configurations the server cannot run with.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database.dsn is required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	return nil
}
