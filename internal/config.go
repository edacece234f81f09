package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/graphblog/pkg/config"
)

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app" toml:"app"`
	Corpus CorpusConfig      `yaml:"corpus" toml:"corpus"`
	Site   SiteConfig        `yaml:"site" toml:"site"`
	Graph  GraphConfig       `yaml:"graph" toml:"graph"`
	Events EventsConfig      `yaml:"events" toml:"events"`
	Export ExportConfig      `yaml:"export" toml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
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

// CorpusConfig locates the document corpus.
type CorpusConfig struct {
	Path      string `yaml:"path" toml:"path"`
	Extension string `yaml:"extension" toml:"extension"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Match(extensionPattern)),
	)
}

// SiteConfig locates the static files pages inline and serve.
type SiteConfig struct {
	AssetsPath string `yaml:"assets_path" toml:"assets_path"`
}

// GraphConfig controls graph building.
//
// StrictLinks turns a malformed site-relative link target (a bare "/") from a
// skipped link into a reference error that drops the whole document.
// Drafts set to false hides draft documents from the graph and from page
// retrieval.
type GraphConfig struct {
	StrictLinks bool `yaml:"strict_links" toml:"strict_links"`
	Drafts      bool `yaml:"drafts" toml:"drafts"`
}

// EventsConfig holds live update configuration.
type EventsConfig struct {
	GraphThrottle pkgconfig.Duration `yaml:"graph_throttle" toml:"graph_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	if c.GraphThrottle < 0 {
		return fmt.Errorf("events: graph_throttle must not be negative")
	}
	return nil
}

// Throttle returns the graph.updated throttle interval.
func (c *EventsConfig) Throttle() time.Duration {
	return time.Duration(c.GraphThrottle)
}

// ExportConfig controls static export.
type ExportConfig struct {
	OutputPath string   `yaml:"output_path" toml:"output_path"`
	Assets     []string `yaml:"assets" toml:"assets"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.OutputPath, validation.Required),
	); err != nil {
		return err
	}
	for _, pattern := range c.Assets {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("export: invalid asset pattern %q", pattern)
		}
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Corpus: CorpusConfig{
			Path:      "./md",
			Extension: ".md",
		},
		Site: SiteConfig{
			AssetsPath: ".",
		},
		Graph: GraphConfig{
			Drafts: true,
		},
		Events: EventsConfig{
			GraphThrottle: pkgconfig.Duration(2 * time.Second),
		},
		Export: ExportConfig{
			OutputPath: "dist",
			Assets:     []string{"assets/**", "styles/**/*.css", "js/**/*.js"},
		},
	}
}
