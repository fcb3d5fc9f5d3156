package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jr6v5m2k/rotomsongs/internal/search"
	fmvalidation "github.com/jr6v5m2k/rotomsongs/internal/validation"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app" toml:"app"`
	Content ContentConfig     `yaml:"content" toml:"content"`
	Search  SearchConfig      `yaml:"search" toml:"search"`
	SQLite  SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth" toml:"auth"`
	Build   BuildConfig       `yaml:"build" toml:"build"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel    slog.Level    `yaml:"log_level" toml:"log_level"`
	Environment string        `yaml:"environment" toml:"environment"`
	LogFile     LogFileConfig `yaml:"log_file" toml:"log_file"`
	HTTP        HTTPConfig    `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.In(EnvDevelopment, EnvProduction)),
	); err != nil {
		return err
	}
	if err := c.LogFile.Validate(); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// Production reports whether the app runs in production.
func (c *ApplicationConfig) Production() bool {
	return c.Environment == EnvProduction
}

// LogFileConfig enables a rotating log file next to stdout. An empty Path
// disables it.
type LogFileConfig struct {
	Path       string `yaml:"path" toml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// Validate validates the log file configuration.
func (c *LogFileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSizeMB, validation.Min(0)),
		validation.Field(&c.MaxBackups, validation.Min(0)),
		validation.Field(&c.MaxAgeDays, validation.Min(0)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the song directory.
type ContentConfig struct {
	Path         string `yaml:"path" toml:"path"`
	InclusionTag string `yaml:"inclusion_tag" toml:"inclusion_tag"`
	// Workers bounds parallel file reads; 0 uses GOMAXPROCS.
	Workers int  `yaml:"workers" toml:"workers"`
	Watch   bool `yaml:"watch" toml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

// SearchConfig tunes the fuzzy search.
type SearchConfig struct {
	Threshold      float64 `yaml:"threshold" toml:"threshold"`
	MaxQueryLength int     `yaml:"max_query_length" toml:"max_query_length"`
	Suggestions    int     `yaml:"suggestions" toml:"suggestions"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Threshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.MaxQueryLength, validation.Min(0)),
		validation.Field(&c.Suggestions, validation.Min(0)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// BuildConfig holds static export configuration.
type BuildConfig struct {
	Output string `yaml:"output" toml:"output"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:    slog.LevelInfo,
			Environment: EnvDevelopment,
			LogFile: LogFileConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:         "./songs",
			InclusionTag: fmvalidation.DefaultInclusionTag,
			Watch:        true,
		},
		Search: SearchConfig{
			Threshold:      search.DefaultThreshold,
			MaxQueryLength: search.DefaultMaxQueryLength,
			Suggestions:    search.DefaultSuggestions,
		},
		SQLite: SQLiteConfig{
			Path: "./rotomsongs.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Build: BuildConfig{
			Output: "./public/data",
		},
	}
}
