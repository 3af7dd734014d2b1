package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

const (
	DefaultConfigFile      = "config.yaml"
	DefaultEnvFile         = ".env"
	DefaultAPIKeyEnv       = "TUMBLR_API_KEY"
	DefaultStoragePath     = ".tumblrsearch/tumblrsearch.db"
	DefaultAddr            = ":8080"
	DefaultPublicURL       = "http://localhost:8080"
	DefaultTimeout         = 30 * time.Second
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultExcerptLen      = 200
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

type Config struct {
	Tumblr      TumblrConfig      `yaml:"tumblr"`
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Query       QueryConfig       `yaml:"query"`
	Summarize   SummarizeConfig   `yaml:"summarize"`
	Privacy     PrivacyConfig     `yaml:"privacy"`
	Logging     logger.Config     `yaml:"logging"`
	Description DescriptionConfig `yaml:"description"`
	Feeds       []FeedConfig      `yaml:"feeds"`
}

type TumblrConfig struct {
	APIKeyEnv string   `yaml:"api_key_env"`
	BaseURL   string   `yaml:"base_url"`
	Method    string   `yaml:"method"`
	PostType  string   `yaml:"post_type"`
	Timeout   Duration `yaml:"timeout"`

	// Resolved from env var at load time.
	APIKey string `yaml:"-"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// PublicURL is the externally visible root used in description templates.
	PublicURL       string   `yaml:"public_url"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type QueryConfig struct {
	KeepLeadingComma bool `yaml:"keep_leading_comma"`
}

type SummarizeConfig struct {
	MaxLen int `yaml:"max_len"`
}

type PrivacyConfig struct {
	Redact RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

type DescriptionConfig struct {
	ShortName        string `yaml:"short_name"`
	LongName         string `yaml:"long_name"`
	Description      string `yaml:"description"`
	Tags             string `yaml:"tags"`
	Contact          string `yaml:"contact"`
	Developer        string `yaml:"developer"`
	Attribution      string `yaml:"attribution"`
	SyndicationRight string `yaml:"syndication_right"`
	AdultContent     string `yaml:"adult_content"`
	Language         string `yaml:"language"`
	InputEncoding    string `yaml:"input_encoding"`
	OutputEncoding   string `yaml:"output_encoding"`
}

// FeedConfig is a feed declared in config.yaml. Declared feeds are upserted
// into the registry when the server starts.
type FeedConfig struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Abstract string   `yaml:"abstract"`
	Blog     string   `yaml:"blog"`
	Tags     []string `yaml:"tags"`
	PostType string   `yaml:"post_type"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
// A .env file next to config.yaml is loaded first; variables already set win.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	if err := loadDotEnv(filepath.Join(dir, DefaultEnvFile)); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Tumblr.APIKeyEnv == "" {
		cfg.Tumblr.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Tumblr.BaseURL == "" {
		cfg.Tumblr.BaseURL = tumblr.DefaultBaseURL
	}
	if cfg.Tumblr.Method == "" {
		cfg.Tumblr.Method = tumblr.DefaultMethod
	}
	if cfg.Tumblr.PostType == "" {
		cfg.Tumblr.PostType = tumblr.DefaultPostType
	}
	if cfg.Tumblr.Timeout.Duration == 0 {
		cfg.Tumblr.Timeout.Duration = DefaultTimeout
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = DefaultPublicURL
	}
	if cfg.Server.ReadTimeout.Duration == 0 {
		cfg.Server.ReadTimeout.Duration = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout.Duration == 0 {
		cfg.Server.WriteTimeout.Duration = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout.Duration == 0 {
		cfg.Server.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Summarize.MaxLen == 0 {
		cfg.Summarize.MaxLen = DefaultExcerptLen
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = logger.DefaultLevel
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Tumblr.APIKeyEnv != "" {
		cfg.Tumblr.APIKey = strings.TrimSpace(os.Getenv(cfg.Tumblr.APIKeyEnv))
	}
}

func validate(cfg *Config) error {
	if !tumblr.ValidPostType(cfg.Tumblr.PostType) {
		return fmt.Errorf("tumblr.post_type: unknown post type %q", cfg.Tumblr.PostType)
	}
	if err := absoluteURL(cfg.Tumblr.BaseURL); err != nil {
		return fmt.Errorf("tumblr.base_url: %w", err)
	}
	if cfg.Tumblr.Timeout.Duration < 0 {
		return errors.New("tumblr.timeout: must be positive")
	}
	if err := absoluteURL(cfg.Server.PublicURL); err != nil {
		return fmt.Errorf("server.public_url: %w", err)
	}
	if cfg.Summarize.MaxLen < 0 {
		return errors.New("summarize.max_len: must not be negative")
	}
	if !logger.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}

	seen := make(map[string]bool, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("feeds[%d]: id is required", i)
		}
		if strings.ContainsAny(f.ID, "/?#") {
			return fmt.Errorf("feeds[%d]: id %q must not contain '/', '?' or '#'", i, f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("feeds[%d]: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
		if strings.TrimSpace(f.Blog) == "" {
			return fmt.Errorf("feeds[%d] (%s): blog is required", i, f.ID)
		}
		if f.PostType != "" && !tumblr.ValidPostType(f.PostType) {
			return fmt.Errorf("feeds[%d] (%s): unknown post type %q", i, f.ID, f.PostType)
		}
	}

	return nil
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

// Application returns the API client settings for a feed. An empty postType
// selects the configured default.
func (c *Config) Application(postType string) tumblr.Application {
	app := tumblr.NewApplication(c.Tumblr.APIKey)
	app.BaseURL = c.Tumblr.BaseURL
	app.Method = c.Tumblr.Method
	app.PostType = c.Tumblr.PostType
	if postType != "" {
		app.PostType = postType
	}
	return app
}
