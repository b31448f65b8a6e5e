package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Generation GenerationConfig `mapstructure:"generation"`
	Assets     AssetsConfig     `mapstructure:"assets"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
	Outputs    OutputsConfig    `mapstructure:"outputs"`
	Hours      []HourConfig     `mapstructure:"hours" validate:"dive"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SourcesConfig struct {
	LocalDirectory    string        `mapstructure:"local_directory"`
	PublicBaseURL     string        `mapstructure:"public_base_url"`
	BackendURL        string        `mapstructure:"backend_url" validate:"omitempty,url"`
	FixturesEnabled   bool          `mapstructure:"fixtures_enabled"`
	FixturesDirectory string        `mapstructure:"fixtures_directory" validate:"omitempty,dir"`
	RetryAttempts     uint          `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

type StorageConfig struct {
	Driver    string         `mapstructure:"driver" validate:"oneof=file sqlite mysql redis memory"`
	Name      string         `mapstructure:"name" validate:"required"`
	Directory string         `mapstructure:"directory"`
	Database  DatabaseConfig `mapstructure:"database"`
	Redis     RedisConfig    `mapstructure:"redis"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"omitempty,oneof=mysql sqlite"`
	SQLitePath      string            `mapstructure:"sqlite_path"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type RedisConfig struct {
	Address     string        `mapstructure:"address"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type GenerationConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AssetsConfig struct {
	PlaceholderURL  string        `mapstructure:"placeholder_url" validate:"omitempty,url"`
	CheckTimeout    time.Duration `mapstructure:"check_timeout"`
	MaxLoggedErrors int           `mapstructure:"max_logged_errors" validate:"gte=0"`
}

type TemplatesConfig struct {
	ReportTemplate string `mapstructure:"report_template" validate:"omitempty,file"`
}

type OutputsConfig struct {
	ExportDirectory string `mapstructure:"export_directory"`
}

type HourConfig struct {
	ID    int    `mapstructure:"id" validate:"gte=1"`
	Title string `mapstructure:"title"`
}

// DefaultHours are the hours of the course.
var DefaultHours = []HourConfig{
	{ID: 1, Title: "Sanitation"},
	{ID: 2, Title: "Trafficking"},
	{ID: 3, Title: "Protocols"},
	{ID: 4, Title: "Safety"},
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sigmareview")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("sources.local_directory", "public")
	v.SetDefault("sources.public_base_url", "")
	v.SetDefault("sources.backend_url", "http://localhost:5000")
	v.SetDefault("sources.fixtures_enabled", false)
	v.SetDefault("sources.retry_attempts", 0)
	v.SetDefault("sources.retry_delay", 200*time.Millisecond)
	v.SetDefault("sources.request_timeout", 0)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.name", "sigma-review-storage")
	v.SetDefault("storage.directory", ".sigmareview")
	v.SetDefault("storage.database.driver", "sqlite")
	v.SetDefault("storage.database.sqlite_path", filepath.Join(".sigmareview", "review.db"))
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 3306)
	v.SetDefault("storage.database.database", "sigmareview")
	v.SetDefault("storage.database.username", "user")
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.redis.key_prefix", "sigmareview:")
	v.SetDefault("storage.redis.dial_timeout", 5*time.Second)
	v.SetDefault("generation.base_url", "http://localhost:5000")
	v.SetDefault("generation.timeout", 0)
	v.SetDefault("assets.placeholder_url", "https://placeholder.pics/svg/800x600/333333/AAAAAA/Image%20Not%20Found")
	v.SetDefault("assets.check_timeout", 5*time.Second)
	v.SetDefault("assets.max_logged_errors", 100)
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("templates.report_template", "")
	v.SetDefault("outputs.export_directory", filepath.Join("outputs", "corrections"))

	if err := v.BindEnv("sources.backend_url", "SIGMA_BACKEND_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind SIGMA_BACKEND_URL environment variable: %w", err)
	}
	if err := v.BindEnv("generation.base_url", "SIGMA_GENERATION_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind SIGMA_GENERATION_URL environment variable: %w", err)
	}

	// Secrets are bound to environment variables
	if err := v.BindEnv("storage.database.password", "SIGMA_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind SIGMA_DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("storage.redis.password", "SIGMA_REDIS_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind SIGMA_REDIS_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if len(cfg.Hours) == 0 {
		cfg.Hours = append([]HourConfig(nil), DefaultHours...)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// HourTitle returns the configured title of hour id.
func (cfg Config) HourTitle(id int) string {
	for _, h := range cfg.Hours {
		if h.ID == id {
			return h.Title
		}
	}
	return ""
}
