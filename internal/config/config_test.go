package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		},
		Sources: SourcesConfig{
			LocalDirectory: "public",
			BackendURL:     "http://localhost:5000",
			RetryDelay:     200 * time.Millisecond,
		},
		Storage: StorageConfig{
			Driver:    "file",
			Name:      "sigma-review-storage",
			Directory: ".sigmareview",
			Database: DatabaseConfig{
				Driver:     "sqlite",
				SQLitePath: filepath.Join(".sigmareview", "review.db"),
				Host:       "localhost",
				Port:       3306,
				Database:   "sigmareview",
				Username:   "user",
			},
			Redis: RedisConfig{
				Address:     "localhost:6379",
				KeyPrefix:   "sigmareview:",
				DialTimeout: 5 * time.Second,
			},
		},
		Generation: GenerationConfig{
			BaseURL: "http://localhost:5000",
		},
		Assets: AssetsConfig{
			PlaceholderURL:  "https://placeholder.pics/svg/800x600/333333/AAAAAA/Image%20Not%20Found",
			CheckTimeout:    5 * time.Second,
			MaxLoggedErrors: 100,
		},
		Outputs: OutputsConfig{
			ExportDirectory: filepath.Join("outputs", "corrections"),
		},
		Hours: append([]HourConfig(nil), DefaultHours...),
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:            "no config file uses defaults",
			useExplicitPath: false,
			want:            defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `server:
  port: 9090
sources:
  backend_url: http://backend:5000
  retry_attempts: 2
  retry_delay: 1s
storage:
  driver: memory
  name: custom-storage
hours:
  - id: 1
    title: Sanitation
  - id: 5
    title: Review
`,
			useExplicitPath: false,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9090
				cfg.Sources.BackendURL = "http://backend:5000"
				cfg.Sources.RetryAttempts = 2
				cfg.Sources.RetryDelay = time.Second
				cfg.Storage.Driver = "memory"
				cfg.Storage.Name = "custom-storage"
				cfg.Hours = []HourConfig{
					{ID: 1, Title: "Sanitation"},
					{ID: 5, Title: "Review"},
				}
				return cfg
			},
		},
		{
			name: "explicit config file with config.yml name",
			configContent: `storage:
  driver: redis
  redis:
    address: redis:6379
    key_prefix: "review:"
generation:
  base_url: http://generator:5000
  timeout: 30s
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Storage.Driver = "redis"
				cfg.Storage.Redis.Address = "redis:6379"
				cfg.Storage.Redis.KeyPrefix = "review:"
				cfg.Generation.BaseURL = "http://generator:5000"
				cfg.Generation.Timeout = 30 * time.Second
				return cfg
			},
		},
		{
			name:            "environment variables override urls and secrets",
			useExplicitPath: false,
			env: map[string]string{
				"SIGMA_BACKEND_URL":    "http://env-backend:5000",
				"SIGMA_GENERATION_URL": "http://env-generator:5000",
				"SIGMA_DB_PASSWORD":    "db-secret",
				"SIGMA_REDIS_PASSWORD": "redis-secret",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Sources.BackendURL = "http://env-backend:5000"
				cfg.Generation.BaseURL = "http://env-generator:5000"
				cfg.Storage.Database.Password = "db-secret"
				cfg.Storage.Redis.Password = "redis-secret"
				return cfg
			},
		},
		{
			name: "invalid storage driver",
			configContent: `storage:
  driver: dynamodb
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"invalid configuration",
				"storage.driver must be one of",
			},
		},
		{
			name: "missing directories and files are rejected",
			configContent: `sources:
  fixtures_directory: does/not/exist
templates:
  report_template: does/not/exist.md.tmpl
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"sources.fixtures_directory must be an existing directory",
				"templates.report_template must be an existing and readable file",
			},
		},
		{
			name: "hour ids start at one",
			configContent: `hours:
  - id: 0
    title: Intro
`,
			useExplicitPath: true,
			wantErr:         true,
			wantErrorContains: []string{
				"invalid configuration",
			},
		},
		{
			name:              "malformed yaml",
			configContent:     "server: [unterminated",
			useExplicitPath:   true,
			wantErr:           true,
			wantErrorContains: []string{"could not be read"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"SIGMA_BACKEND_URL", "SIGMA_GENERATION_URL", "SIGMA_DB_PASSWORD", "SIGMA_REDIS_PASSWORD"} {
				t.Setenv(key, "")
				require.NoError(t, os.Unsetenv(key))
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				if tt.configContent != "" {
					err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644)
					require.NoError(t, err)
				}
				t.Chdir(tempDir)
				t.Setenv("HOME", tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestConfig_HourTitle(t *testing.T) {
	cfg := Config{Hours: DefaultHours}

	assert.Equal(t, "Protocols", cfg.HourTitle(3))
	assert.Equal(t, "", cfg.HourTitle(9))
}
