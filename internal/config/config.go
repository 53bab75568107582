package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/patterns"
)

// EnvPrefix is the prefix of environment overrides, e.g. TRANCHE_DATABASE_PATH.
const EnvPrefix = "TRANCHE"

// Config is the typed view of the tranche configuration file.
type Config struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Patterns struct {
		File string `mapstructure:"file"`
	} `mapstructure:"patterns"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	Watch struct {
		Dir    string        `mapstructure:"dir"`
		Settle time.Duration `mapstructure:"settle"`
	} `mapstructure:"watch"`
	Classifier struct {
		// Normalization overrides the pattern library's confidence divisor
		// when positive.
		Normalization float64 `mapstructure:"normalization"`
	} `mapstructure:"classifier"`
	Batch struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"batch"`
	Review struct {
		ConfidenceThreshold int `mapstructure:"confidence_threshold"`
	} `mapstructure:"review"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("patterns.file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("classifier.normalization", 0.0)
	v.SetDefault("batch.workers", 4)
	v.SetDefault("review.confidence_threshold", 50)
	v.SetDefault("watch.dir", "")
	v.SetDefault("watch.settle", "2s")
}

// Load reads the config file (when one is set or found) and environment
// into a Config. A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Patterns.File = ExpandPath(cfg.Patterns.File)
	cfg.Watch.Dir = ExpandPath(cfg.Watch.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", common.ErrMissingConfig)
	case c.Batch.Workers < 1:
		return fmt.Errorf("%w: batch.workers must be at least 1, got %d", common.ErrInvalidConfig, c.Batch.Workers)
	case c.Review.ConfidenceThreshold < 0 || c.Review.ConfidenceThreshold > 100:
		return fmt.Errorf("%w: review.confidence_threshold must be 0-100, got %d", common.ErrInvalidConfig, c.Review.ConfidenceThreshold)
	case c.Classifier.Normalization < 0:
		return fmt.Errorf("%w: classifier.normalization must not be negative", common.ErrInvalidConfig)
	case c.Watch.Settle < 0:
		return fmt.Errorf("%w: watch.settle must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// Library compiles the pattern library this configuration selects: the
// built-in tables, the optional overlay file, then the classifier override.
func (c *Config) Library() (*patterns.Compiled, error) {
	if c.Patterns.File == "" && c.Classifier.Normalization == 0 {
		return patterns.MustDefault(), nil
	}

	lib := patterns.Default()
	if c.Patterns.File != "" {
		data, err := os.ReadFile(c.Patterns.File) //nolint:gosec // path comes from user configuration
		if err != nil {
			return nil, fmt.Errorf("failed to read pattern file: %w", err)
		}
		if lib, err = patterns.Overlay(lib, data); err != nil {
			return nil, fmt.Errorf("pattern file %s: %w", c.Patterns.File, err)
		}
	}
	if c.Classifier.Normalization > 0 {
		lib.Normalization = c.Classifier.Normalization
	}
	return patterns.Compile(lib)
}
