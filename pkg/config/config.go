package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/graalkit/pkg/distribution"
	"github.com/platinummonkey/graalkit/pkg/download"
	"github.com/platinummonkey/graalkit/pkg/observability"
)

// DefaultOutputDir is where native executables are written unless configured
const DefaultOutputDir = "build/graal"

// Config holds all application configuration
type Config struct {
	// Toolkit acquisition
	Toolkit ToolkitConfig `yaml:"toolkit"`

	// Native image build target
	Build BuildConfig `yaml:"build"`

	// S3 mirror credentials, used when the download base URL is s3://
	S3 S3Config `yaml:"s3"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ToolkitConfig selects and stores the GraalVM release
type ToolkitConfig struct {
	DownloadBaseURL string `yaml:"downloadBaseUrl"`
	Version         string `yaml:"version"`
	CacheDir        string `yaml:"cacheDir"`
	ForceExtract    bool   `yaml:"forceExtract"`
}

// BuildConfig describes the native image to produce
type BuildConfig struct {
	MainClass       string   `yaml:"mainClass"`
	OutputName      string   `yaml:"outputName"`
	OutputDir       string   `yaml:"outputDir"`
	Classpath       []string `yaml:"classpath"`
	ProjectDir      string   `yaml:"projectDir"`
	AssembleCommand string   `yaml:"assembleCommand"`
}

// S3Config holds S3 mirror settings
type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"accessKey"`
	SecretKey    string `yaml:"secretKey"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	// Metrics
	MetricsPushURL string `yaml:"metricsPushUrl"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otelEnabled"`
	OTelEndpoint       string `yaml:"otelEndpoint"`
	OTelServiceName    string `yaml:"otelServiceName"`
	OTelServiceVersion string `yaml:"otelServiceVersion"`
	OTelInsecure       bool   `yaml:"otelInsecure"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Toolkit: ToolkitConfig{
			DownloadBaseURL: distribution.DefaultBaseURL,
			Version:         distribution.DefaultVersion,
		},
		Build: BuildConfig{
			OutputDir: DefaultOutputDir,
		},
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			LogFormat:          "text",
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "graalkit",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
	}
}

// LoadConfig loads defaults, then the YAML file named by GRAALKIT_CONFIG, then environment overrides
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := getEnv("GRAALKIT_CONFIG", ""); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides c with any GRAALKIT_* variables that are set
func (c *Config) applyEnv() {
	c.Toolkit.DownloadBaseURL = getEnv("GRAALKIT_DOWNLOAD_BASE_URL", c.Toolkit.DownloadBaseURL)
	c.Toolkit.Version = getEnv("GRAALKIT_VERSION", c.Toolkit.Version)
	c.Toolkit.CacheDir = getEnv("GRAALKIT_CACHE_DIR", c.Toolkit.CacheDir)
	c.Toolkit.ForceExtract = getEnvBool("GRAALKIT_FORCE_EXTRACT", c.Toolkit.ForceExtract)

	c.Build.MainClass = getEnv("GRAALKIT_MAIN_CLASS", c.Build.MainClass)
	c.Build.OutputName = getEnv("GRAALKIT_OUTPUT_NAME", c.Build.OutputName)
	c.Build.OutputDir = getEnv("GRAALKIT_OUTPUT_DIR", c.Build.OutputDir)
	c.Build.ProjectDir = getEnv("GRAALKIT_PROJECT_DIR", c.Build.ProjectDir)
	c.Build.AssembleCommand = getEnv("GRAALKIT_ASSEMBLE_COMMAND", c.Build.AssembleCommand)
	if classpath := getEnv("GRAALKIT_CLASSPATH", ""); classpath != "" {
		c.Build.Classpath = SplitClasspath(classpath)
	}

	c.S3.Region = getEnv("GRAALKIT_S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("GRAALKIT_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKey = getEnv("GRAALKIT_S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnv("GRAALKIT_S3_SECRET_KEY", c.S3.SecretKey)
	c.S3.UsePathStyle = getEnvBool("GRAALKIT_S3_USE_PATH_STYLE", c.S3.UsePathStyle)

	c.Observability.LogLevel = getEnv("GRAALKIT_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = getEnv("GRAALKIT_LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.MetricsPushURL = getEnv("GRAALKIT_METRICS_PUSH_URL", c.Observability.MetricsPushURL)
	c.Observability.OTelEnabled = getEnvBool("GRAALKIT_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("GRAALKIT_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("GRAALKIT_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("GRAALKIT_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("GRAALKIT_OTEL_INSECURE", c.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate toolkit config
	if c.Toolkit.Version == "" {
		return fmt.Errorf("toolkit version is required")
	}
	if c.Toolkit.DownloadBaseURL == "" {
		return fmt.Errorf("download base URL is required")
	}
	u, err := url.Parse(c.Toolkit.DownloadBaseURL)
	if err != nil {
		return fmt.Errorf("invalid download base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	case "s3":
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required for an s3:// download base URL")
		}
	default:
		return fmt.Errorf("invalid download base URL scheme: %q (must be http, https, or s3)", u.Scheme)
	}

	// Validate build config
	if c.Build.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	// Validate observability config
	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Observability.LogLevel)
	}
	switch c.Observability.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// ValidateBuild checks the settings only the native image stage needs
func (c *Config) ValidateBuild() error {
	if c.Build.MainClass == "" {
		return fmt.Errorf("main class is required to build a native image (set GRAALKIT_MAIN_CLASS)")
	}
	if len(c.Build.Classpath) == 0 {
		return fmt.Errorf("classpath is required to build a native image (set GRAALKIT_CLASSPATH)")
	}
	return nil
}

// DownloadS3 returns the S3 settings in the form the downloader takes
func (c *Config) DownloadS3() download.S3Config {
	return download.S3Config{
		Region:       c.S3.Region,
		Endpoint:     c.S3.Endpoint,
		AccessKey:    c.S3.AccessKey,
		SecretKey:    c.S3.SecretKey,
		UsePathStyle: c.S3.UsePathStyle,
	}
}

// OTel returns the OpenTelemetry settings
func (c *Config) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
		ToolkitVersion: c.Toolkit.Version,
	}
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() observability.LogLevel {
	return observability.ParseLogLevel(c.Observability.LogLevel)
}

// SplitClasspath splits a classpath string on the OS list separator, dropping empty entries
func SplitClasspath(classpath string) []string {
	var entries []string
	for _, entry := range filepath.SplitList(classpath) {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}
