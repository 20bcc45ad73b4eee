package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Vault     VaultConfig       `yaml:"vault"`
	Cache     CacheConfig       `yaml:"cache"`
	State     StateConfig       `yaml:"state"`
	Render    RenderConfig      `yaml:"render"`
	Wikilinks WikilinksConfig   `yaml:"wikilinks"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	return c.Wikilinks.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the optional status server configuration.
type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig locates the Markdown vault and the subfolder synced
// notes are written into.
type VaultConfig struct {
	Path      string `yaml:"path"`
	Subfolder string `yaml:"subfolder"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CacheConfig holds the path to the upstream cache file.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StateConfig holds the sync-state database configuration.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RenderConfig controls which sections appear in rendered notes.
type RenderConfig struct {
	IncludePanels     bool `yaml:"include_panels"`
	IncludeTranscript bool `yaml:"include_transcript"`
}

// WikilinksConfig controls automatic wikilink injection.
type WikilinksConfig struct {
	Enabled       bool `yaml:"enabled"`
	MinTermLength int  `yaml:"min_term_length"`
}

// Validate validates the wikilinks configuration.
func (c *WikilinksConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.MinTermLength, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Enabled: false,
				Port:    8686,
			},
		},
		Vault: VaultConfig{
			Path:      "./vault",
			Subfolder: "Meetings",
		},
		Cache: CacheConfig{
			Path: "./cache-v3.json",
		},
		State: StateConfig{
			Path: "./grimsync.db",
		},
		Render: RenderConfig{
			IncludePanels: true,
		},
		Wikilinks: WikilinksConfig{
			Enabled:       true,
			MinTermLength: 3,
		},
	}
}
