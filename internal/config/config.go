package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Banatic   BanaticConfig   `yaml:"banatic" mapstructure:"banatic"`
	XRef      XRefConfig      `yaml:"xref" mapstructure:"xref"`
	Divisions DivisionsConfig `yaml:"divisions" mapstructure:"divisions"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// BanaticConfig configures the partitioned export download.
type BanaticConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	Date              string  `yaml:"date" mapstructure:"date"`
	Format            string  `yaml:"format" mapstructure:"format"`
	ExpectedColumns   int     `yaml:"expected_columns" mapstructure:"expected_columns"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// XRefConfig locates the SIREN → INSEE cross-reference file.
type XRefConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DivisionsConfig selects the divisions to fetch.
type DivisionsConfig struct {
	File string   `yaml:"file" mapstructure:"file"`
	Only []string `yaml:"only" mapstructure:"only"`
}

// CacheConfig configures the partition cache backend.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OutputConfig configures where the finished document is written.
type OutputConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	S3Bucket    string `yaml:"s3_bucket" mapstructure:"s3_bucket"`
	S3Key       string `yaml:"s3_key" mapstructure:"s3_key"`
	S3Region    string `yaml:"s3_region" mapstructure:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint" mapstructure:"s3_endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style" mapstructure:"s3_path_style"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GROUPEMENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("banatic.base_url", "https://www.banatic.interieur.gouv.fr/V5/fichiers-en-telechargement/telecharger.php")
	v.SetDefault("banatic.date", "01/07/2019")
	v.SetDefault("banatic.format", "D")
	v.SetDefault("banatic.expected_columns", 145)
	v.SetDefault("banatic.user_agent", "groupements-cli/1.0")
	v.SetDefault("banatic.timeout_secs", 0)
	v.SetDefault("banatic.requests_per_second", 1.0)
	v.SetDefault("xref.path", "data/correspondance-siren-insee-2019.csv.gz")
	v.SetDefault("divisions.file", "")
	v.SetDefault("divisions.only", []string{})
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", ".cache.sqlite")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("output.path", "dist/groupements.json")
	v.SetDefault("output.s3_bucket", "")
	v.SetDefault("output.s3_key", "groupements.json")
	v.SetDefault("output.s3_region", "eu-west-3")
	v.SetDefault("output.s3_endpoint", "")
	v.SetDefault("output.s3_path_style", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a build run depends on.
func (c *Config) Validate() error {
	var problems []string

	switch c.Cache.Driver {
	case "sqlite":
		if c.Cache.Path == "" {
			problems = append(problems, "cache.path is required for sqlite")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			problems = append(problems, "cache.database_url is required for postgres")
		}
	case "memory":
	default:
		problems = append(problems, "cache.driver must be one of sqlite, postgres, memory")
	}

	if c.Banatic.BaseURL == "" {
		problems = append(problems, "banatic.base_url is required")
	}
	if c.Banatic.Date == "" {
		problems = append(problems, "banatic.date is required")
	}
	if c.Banatic.ExpectedColumns <= 0 {
		problems = append(problems, "banatic.expected_columns must be > 0")
	}
	if c.Banatic.TimeoutSecs < 0 {
		problems = append(problems, "banatic.timeout_secs must be >= 0")
	}
	if c.Banatic.RequestsPerSecond < 0 {
		problems = append(problems, "banatic.requests_per_second must be >= 0")
	}
	if c.XRef.Path == "" {
		problems = append(problems, "xref.path is required")
	}
	if c.Output.S3Bucket == "" && c.Output.Path == "" {
		problems = append(problems, "output.path is required when output.s3_bucket is empty")
	}
	if c.Output.S3Bucket != "" && c.Output.S3Key == "" {
		problems = append(problems, "output.s3_key is required with output.s3_bucket")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
