// Package config loads the settings of the patro binaries from defaults, an
// optional YAML file, a .env file and PATRO_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tsawler/patro/paper"
)

// EnvPrefix prefixes every environment variable, e.g. PATRO_SERVER_PORT.
const EnvPrefix = "PATRO"

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Document DocumentConfig `mapstructure:"document"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"oneof=development production test"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	// GenerateTimeout bounds one document generation, image fetches
	// included.
	GenerateTimeout   time.Duration `mapstructure:"generate_timeout" validate:"gt=0"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window" validate:"gt=0"`
	MaxBodyBytes      string        `mapstructure:"max_body_bytes" validate:"required"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// DocumentConfig holds the defaults applied to generated documents.
type DocumentConfig struct {
	Paper string `mapstructure:"paper" validate:"papersize"`
	// FontPath points at a TrueType file used for non-Latin text.
	FontPath    string `mapstructure:"font_path"`
	ContactText string `mapstructure:"contact_text"`
	ContactURL  string `mapstructure:"contact_url" validate:"omitempty,url"`
	// AssetRoot is the directory relative image paths are resolved
	// against. The server reads no local files when it is empty.
	AssetRoot string `mapstructure:"asset_root"`
}

// FetchConfig holds remote image fetch limits.
type FetchConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"min=1"`
	MaxBytes          int64         `mapstructure:"max_bytes" validate:"min=1024"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PaperSize returns the configured paper size.
func (c DocumentConfig) PaperSize() paper.Size {
	s, _ := paper.ParseSize(c.Paper)
	return s
}

// Address returns host:port for the HTTP listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is development
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads the configuration. file is an optional YAML config file; an
// empty name skips it. A .env file in the working directory is loaded when
// present.
func Load(file string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "patro")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("server.generate_timeout", "90s")
	v.SetDefault("server.rate_limit_requests", 10)
	v.SetDefault("server.rate_limit_window", "1m")
	v.SetDefault("server.max_body_bytes", "2M")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stderr")

	v.SetDefault("document.paper", "A4")
	v.SetDefault("document.font_path", "")
	v.SetDefault("document.contact_text", "")
	v.SetDefault("document.contact_url", "")
	v.SetDefault("document.asset_root", "")

	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.requests_per_second", 4.0)
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("fetch.max_bytes", 10<<20)

	v.SetDefault("metrics.enabled", true)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("papersize", func(fl validator.FieldLevel) bool {
		_, err := paper.ParseSize(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks cfg and reports every failing field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
	}
	return errors.New(strings.Join(msgs, "; "))
}
