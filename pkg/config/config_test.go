package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/graalkit/pkg/distribution"
	"github.com/platinummonkey/graalkit/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "GRAALKIT_TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "GRAALKIT_TEST_VAR_NOT_SET",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, getEnv(tt.key, tt.defaultValue))
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{name: "returns true for 'true'", envValue: "true", want: true},
		{name: "returns true for '1'", envValue: "1", want: true},
		{name: "returns true for 'TRUE' (case insensitive)", envValue: "TRUE", want: true},
		{name: "returns false for 'false'", defaultValue: true, envValue: "false", want: false},
		{name: "returns default when not set", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GRAALKIT_TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.want, getEnvBool("GRAALKIT_TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GRAALKIT_CONFIG", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, distribution.DefaultBaseURL, cfg.Toolkit.DownloadBaseURL)
	assert.Equal(t, "1.0.0-rc6", cfg.Toolkit.Version)
	assert.Equal(t, DefaultOutputDir, cfg.Build.OutputDir)
	assert.Empty(t, cfg.Build.MainClass)
	assert.Equal(t, observability.InfoLevel, cfg.LogLevel())
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("GRAALKIT_CONFIG", "")
	t.Setenv("GRAALKIT_DOWNLOAD_BASE_URL", "s3://mirror/graal/")
	t.Setenv("GRAALKIT_VERSION", "1.0.0-rc5")
	t.Setenv("GRAALKIT_MAIN_CLASS", "com.example.Main")
	t.Setenv("GRAALKIT_OUTPUT_NAME", "hello")
	t.Setenv("GRAALKIT_CLASSPATH", "a.jar"+string(os.PathListSeparator)+" b.jar"+string(os.PathListSeparator))
	t.Setenv("GRAALKIT_S3_REGION", "us-west-2")
	t.Setenv("GRAALKIT_S3_USE_PATH_STYLE", "true")
	t.Setenv("GRAALKIT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "s3://mirror/graal/", cfg.Toolkit.DownloadBaseURL)
	assert.Equal(t, "1.0.0-rc5", cfg.Toolkit.Version)
	assert.Equal(t, "com.example.Main", cfg.Build.MainClass)
	assert.Equal(t, "hello", cfg.Build.OutputName)
	assert.Equal(t, []string{"a.jar", "b.jar"}, cfg.Build.Classpath)
	assert.Equal(t, "us-west-2", cfg.DownloadS3().Region)
	assert.True(t, cfg.DownloadS3().UsePathStyle)
	assert.Equal(t, observability.DebugLevel, cfg.LogLevel())
	require.NoError(t, cfg.ValidateBuild())
}

func TestLoadConfig_FilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graalkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
toolkit:
  version: 1.0.0-rc4
  cacheDir: /tmp/graal-cache
build:
  mainClass: com.example.FromFile
  outputName: from-file
  classpath:
    - build/libs/app.jar
observability:
  logLevel: warn
  logFormat: json
`), 0644))

	t.Setenv("GRAALKIT_CONFIG", path)
	t.Setenv("GRAALKIT_OUTPUT_NAME", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "1.0.0-rc4", cfg.Toolkit.Version)
	assert.Equal(t, "/tmp/graal-cache", cfg.Toolkit.CacheDir)
	assert.Equal(t, "com.example.FromFile", cfg.Build.MainClass)
	assert.Equal(t, "from-env", cfg.Build.OutputName, "env overrides file")
	assert.Equal(t, []string{"build/libs/app.jar"}, cfg.Build.Classpath)
	assert.Equal(t, DefaultOutputDir, cfg.Build.OutputDir, "keys absent from the file keep defaults")
	assert.Equal(t, distribution.DefaultBaseURL, cfg.Toolkit.DownloadBaseURL)
	assert.Equal(t, observability.WarnLevel, cfg.LogLevel())
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("GRAALKIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("toolkit: [unterminated"), 0644))
		t.Setenv("GRAALKIT_CONFIG", path)
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty version", mutate: func(c *Config) { c.Toolkit.Version = "" }, wantErr: "toolkit version is required"},
		{name: "empty base URL", mutate: func(c *Config) { c.Toolkit.DownloadBaseURL = "" }, wantErr: "download base URL is required"},
		{name: "unsupported scheme", mutate: func(c *Config) { c.Toolkit.DownloadBaseURL = "ftp://mirror/" }, wantErr: "invalid download base URL scheme"},
		{name: "s3 without region", mutate: func(c *Config) { c.Toolkit.DownloadBaseURL = "s3://bucket/" }, wantErr: "S3 region is required"},
		{name: "empty output dir", mutate: func(c *Config) { c.Build.OutputDir = "" }, wantErr: "output directory is required"},
		{name: "bad log level", mutate: func(c *Config) { c.Observability.LogLevel = "verbose" }, wantErr: "invalid log level"},
		{name: "bad log format", mutate: func(c *Config) { c.Observability.LogFormat = "xml" }, wantErr: "invalid log format"},
		{
			name: "otel without endpoint",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelEndpoint = ""
			},
			wantErr: "OpenTelemetry endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateBuild(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.ValidateBuild(), "main class is required")

	cfg.Build.MainClass = "Main"
	assert.ErrorContains(t, cfg.ValidateBuild(), "classpath is required")

	cfg.Build.Classpath = []string{"app.jar"}
	assert.NoError(t, cfg.ValidateBuild())
}

func TestConfig_OTel(t *testing.T) {
	cfg := Default()
	cfg.Observability.OTelEnabled = true

	otel := cfg.OTel()
	assert.True(t, otel.Enabled)
	assert.Equal(t, "localhost:4317", otel.Endpoint)
	assert.Equal(t, "graalkit", otel.ServiceName)
	assert.True(t, otel.Insecure)
	assert.Equal(t, cfg.Toolkit.Version, otel.ToolkitVersion)
}

func TestSplitClasspath(t *testing.T) {
	sep := string(os.PathListSeparator)
	assert.Nil(t, SplitClasspath(""))
	assert.Equal(t, []string{"a.jar"}, SplitClasspath("a.jar"))
	assert.Equal(t, []string{"a.jar", "classes"}, SplitClasspath("a.jar"+sep+sep+"classes"))
}
