package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of the optional config file
	// (featurehub.yaml, featurehub.json, ...).
	ConfigFileName = "featurehub"

	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. FEATUREHUB_SERVER_ADDR.
	EnvPrefix = "FEATUREHUB"
)

// Config holds all configuration for the feature hub binary.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server ServerConfig `mapstructure:"server"`

	// Static holds configuration for asset serving.
	Static StaticConfig `mapstructure:"static"`

	// Sources holds configuration for the module source backends.
	Sources SourcesConfig `mapstructure:"sources"`

	// Loading tunes how module definitions are loaded.
	Loading LoadingConfig `mapstructure:"loading"`

	// Wasm holds configuration for the wasm module runtime.
	Wasm WasmConfig `mapstructure:"wasm"`

	// Log holds configuration for the logger.
	Log LogConfig `mapstructure:"log"`

	// Pages is the route table. Pages can only be configured through
	// the config file, not through environment variables.
	Pages []PageConfig `mapstructure:"pages"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr" default:":8080"`

	// RenderTimeoutSeconds bounds how long a page request waits for its
	// module before rendering.
	RenderTimeoutSeconds int `mapstructure:"render_timeout_seconds" default:"5"`

	// Metrics instruments module loads and exposes /metrics.
	Metrics bool `mapstructure:"metrics" default:"false"`

	// Tracing wraps module loads in OpenTelemetry spans.
	Tracing bool `mapstructure:"tracing" default:"false"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"10"`
}

// RenderTimeout returns the render timeout as a duration.
func (c ServerConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the shutdown timeout as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// StaticConfig holds configuration for asset serving.
type StaticConfig struct {
	// Dir is the directory containing assets. Empty disables serving.
	Dir string `mapstructure:"dir" default:""`

	// Prefix is the URL path prefix for assets.
	Prefix string `mapstructure:"prefix" default:"/"`

	// Cache selects the caching strategy: "none" or "production".
	Cache string `mapstructure:"cache" default:"none"`

	// Manifest points at a fingerprint manifest for stylesheet hrefs.
	Manifest string `mapstructure:"manifest" default:""`
}

const (
	CacheNone       = "none"
	CacheProduction = "production"
)

// IsValidCache checks if the configured cache strategy is valid.
func (c StaticConfig) IsValidCache() bool {
	switch c.Cache {
	case CacheNone, CacheProduction:
		return true
	default:
		return false
	}
}

// SourcesConfig holds configuration for the module source backends.
// A backend is enabled by giving it a location; sources whose scheme
// matches no enabled backend fail with an unsupported-source error.
type SourcesConfig struct {
	// HTTP configures the http(s) backend.
	HTTP HTTPSourceConfig `mapstructure:"http"`

	// File configures the local directory backend.
	File FileSourceConfig `mapstructure:"file"`

	// S3 configures the S3 backend.
	S3 S3SourceConfig `mapstructure:"s3"`

	// MaxModuleBytes caps the size of a fetched module.
	MaxModuleBytes int64 `mapstructure:"max_module_bytes" default:"16777216"`
}

// HTTPSourceConfig configures the http(s) module source.
type HTTPSourceConfig struct {
	// BaseURL resolves relative module sources. Empty disables the
	// backend for relative sources; absolute URLs still work.
	BaseURL string `mapstructure:"base_url" default:""`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns the request timeout as a duration.
func (c HTTPSourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FileSourceConfig configures the local directory module source.
type FileSourceConfig struct {
	// Dir is the directory modules are read from. Empty disables the
	// backend.
	Dir string `mapstructure:"dir" default:""`
}

// S3SourceConfig configures the S3 module source.
type S3SourceConfig struct {
	// Bucket is the default bucket for bare module keys. Empty disables
	// the backend.
	Bucket string `mapstructure:"bucket" default:""`

	// Region is the bucket's region.
	Region string `mapstructure:"region" default:""`
}

// LoadingConfig tunes how module definitions are loaded.
type LoadingConfig struct {
	// TimeoutSeconds bounds a single load attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`

	// Retries is the number of additional attempts after a failure.
	Retries int `mapstructure:"retries" default:"0"`

	// RetryDelayMillis is the pause between attempts.
	RetryDelayMillis int `mapstructure:"retry_delay_ms" default:"250"`
}

// Timeout returns the load timeout as a duration.
func (c LoadingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the retry delay as a duration.
func (c LoadingConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMillis) * time.Millisecond
}

// WasmConfig holds configuration for the wasm module runtime.
type WasmConfig struct {
	// Enabled turns .wasm module decoding on.
	Enabled bool `mapstructure:"enabled" default:"true"`

	// MemoryPages caps a module instance's linear memory, in 64 KiB
	// pages.
	MemoryPages int `mapstructure:"memory_pages" default:"256"`
}

// LogConfig holds configuration for the logger.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string `mapstructure:"level" default:"info"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format" default:"text"`
}

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// SlogLevel maps the configured level to a slog level. Unknown levels
// map to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsValidFormat checks if the configured log format is valid.
func (c LogConfig) IsValidFormat() bool {
	switch c.Format {
	case LogFormatText, LogFormatJSON:
		return true
	default:
		return false
	}
}

// PageConfig maps one route to a feature app.
type PageConfig struct {
	// Path is the route pattern, e.g. "/checkout".
	Path string `mapstructure:"path"`

	// Title is the document title.
	Title string `mapstructure:"title"`

	// Src is the module source for the page's feature app.
	Src string `mapstructure:"src"`

	// Key distinguishes multiple instances of the same feature app.
	Key string `mapstructure:"key"`

	// Stylesheets are registered when the page's loader mounts.
	Stylesheets []StylesheetConfig `mapstructure:"stylesheets"`
}

// StylesheetConfig describes one stylesheet a page ships with.
type StylesheetConfig struct {
	Href  string `mapstructure:"href"`
	Media string `mapstructure:"media"`
}

// Load loads configuration from the environment, an optional .env file
// and an optional featurehub config file in dir.
//
// Precedence, highest first: environment variables, the config file,
// tag defaults. Environment keys join sections with underscores under
// the FEATUREHUB prefix, e.g. FEATUREHUB_SOURCES_HTTP_BASE_URL.
func Load(dir string) (*Config, error) {
	// Load .env if present; absence is fine (e.g. production).
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	// Walk the struct tags to register defaults. Registration also
	// makes the keys visible to AutomaticEnv.
	bindDefaults(v, Config{}, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file carries what env vars cannot: the page table.
	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", ConfigFileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for problems a typo would cause.
func (c *Config) Validate() error {
	var errs []error

	if !c.Static.IsValidCache() {
		errs = append(errs, fmt.Errorf("config: unknown static cache strategy %q", c.Static.Cache))
	}
	if !c.Log.IsValidFormat() {
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Log.Format))
	}
	if c.Sources.MaxModuleBytes < 0 {
		errs = append(errs, fmt.Errorf("config: negative max_module_bytes %d", c.Sources.MaxModuleBytes))
	}
	for i, page := range c.Pages {
		if page.Path == "" || !strings.HasPrefix(page.Path, "/") {
			errs = append(errs, fmt.Errorf("config: page %d has invalid path %q", i, page.Path))
		}
		if page.Src == "" {
			errs = append(errs, fmt.Errorf("config: page %d (%s) has no src", i, page.Path))
		}
	}

	return errors.Join(errs...)
}

// HasSource reports whether at least one module source backend is
// configured.
func (c *Config) HasSource() bool {
	return c.Sources.HTTP.BaseURL != "" || c.Sources.File.Dir != "" || c.Sources.S3.Bucket != ""
}

// bindDefaults uses reflection to iterate over the struct and set
// default values in viper based on the 'default' and 'mapstructure'
// tags.
func bindDefaults(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// Nested sections recurse; slices (the page table) have no
		// defaults and only come from the config file.
		switch field.Type.Kind() {
		case reflect.Struct:
			bindDefaults(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Slice:
			continue
		}

		// Always set the default (even if empty) to register the key
		// for AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
