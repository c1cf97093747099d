// Package config loads heartcheck settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// PathEnv names the variable holding an explicit config file path.
const PathEnv = "HEARTCHECK_CONFIG"

// DefaultPath is tried, relative to the working directory, when PathEnv is unset.
var DefaultPath = filepath.Join("config", "config.yaml")

type Config struct {
	Env   string      `yaml:"env" env:"HEARTCHECK_ENV" env-default:"development"`
	HTTP  HTTPConfig  `yaml:"http"`
	Model ModelConfig `yaml:"model"`
	GCS   GCSConfig   `yaml:"gcs"`
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
	OTel  OTelConfig  `yaml:"otel"`

	// Path is the file the config was read from, empty for env-only.
	Path string `yaml:"-"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"2m"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	MaxRequestBytes   int64         `yaml:"max_request_bytes" env:"HTTP_MAX_REQUEST_BYTES" env-default:"65536"`
	CORSOrigins       []string      `yaml:"cors_origins,omitempty" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	MetricsEnabled    bool          `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
}

type ModelConfig struct {
	// Artifact is a local path, file:// URI or gs://bucket/object.
	Artifact string `yaml:"artifact" env:"MODEL_ARTIFACT" env-default:"models/heart_xgb.json"`
	// Kind pins the artifact format; empty detects it. "mock" skips loading.
	Kind      string  `yaml:"kind" env:"MODEL_KIND"`
	Threshold float64 `yaml:"threshold" env:"MODEL_THRESHOLD" env-default:"0.5"`
	MaxBytes  int64   `yaml:"max_bytes" env:"MODEL_MAX_BYTES" env-default:"67108864"`
	MockLabel int     `yaml:"mock_label" env:"MODEL_MOCK_LABEL" env-default:"0"`
}

type GCSConfig struct {
	Mode            string `yaml:"mode" env:"OBJECT_STORAGE_MODE"`
	EmulatorHost    string `yaml:"emulator_host" env:"STORAGE_EMULATOR_HOST"`
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	// Secret, env only.
	CredentialsJSON string `yaml:"-" env:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
}

type CacheConfig struct {
	// PredictionSize bounds the prediction memo; 0 disables it. There is
	// no default because a zero from the file would be replaced by it.
	PredictionSize int `yaml:"prediction_size" env:"PREDICTION_CACHE_SIZE"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"28"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS" env-default:"false"`
}

type OTelConfig struct {
	Enabled     bool              `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	ServiceName string            `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"heartcheck"`
	Endpoint    string            `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers     map[string]string `yaml:"-" env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure    bool              `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"false"`
	SampleRatio float64           `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO" env-default:"0.1"`
}

// IsProduction reports whether the production log encoder should be used.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// Load reads PathEnv, then DefaultPath if it exists, and finally the
// environment. An explicit PathEnv that does not exist is an error.
func Load() (*Config, error) {
	cfg := &Config{}

	path := strings.TrimSpace(os.Getenv(PathEnv))
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		cfg.Path = path
	case explicit || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("config %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Model.Artifact = strings.TrimSpace(c.Model.Artifact)
	c.Model.Kind = strings.ToLower(strings.TrimSpace(c.Model.Kind))
	if c.Model.Kind == "auto" {
		c.Model.Kind = ""
	}
	origins := c.HTTP.CORSOrigins[:0]
	for _, o := range c.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.CORSOrigins = origins
}

var knownKinds = map[string]bool{
	"":              true,
	"xgboost":       true,
	"decision_tree": true,
	"random_forest": true,
	"mock":          true,
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = multierr.Append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		errs = multierr.Append(errs, errors.New("http.max_request_bytes must be positive"))
	}
	if c.HTTP.ShutdownTimeout < 0 {
		errs = multierr.Append(errs, errors.New("http.shutdown_timeout must not be negative"))
	}
	if !knownKinds[c.Model.Kind] {
		errs = multierr.Append(errs, fmt.Errorf("model.kind %q is not one of xgboost, decision_tree, random_forest, mock", c.Model.Kind))
	}
	if c.Model.Kind != "mock" && c.Model.Artifact == "" {
		errs = multierr.Append(errs, errors.New("model.artifact is required"))
	}
	if c.Model.Threshold <= 0 || c.Model.Threshold >= 1 {
		errs = multierr.Append(errs, fmt.Errorf("model.threshold %v must be in (0, 1)", c.Model.Threshold))
	}
	if c.Model.MockLabel != 0 && c.Model.MockLabel != 1 {
		errs = multierr.Append(errs, fmt.Errorf("model.mock_label %d must be 0 or 1", c.Model.MockLabel))
	}
	if c.Cache.PredictionSize < 0 {
		errs = multierr.Append(errs, errors.New("cache.prediction_size must not be negative"))
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		errs = multierr.Append(errs, fmt.Errorf("otel.sample_ratio %v must be in [0, 1]", c.OTel.SampleRatio))
	}
	return errs
}

// YAML renders the effective config. Env-only secrets are omitted.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
