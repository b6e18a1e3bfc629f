package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Consensus ConsensusConfig `yaml:"consensus" mapstructure:"consensus"`
	Solver    SolverConfig    `yaml:"solver" mapstructure:"solver"`
	Templates TemplatesConfig `yaml:"templates" mapstructure:"templates"`
	Parse     ParseConfig     `yaml:"parse" mapstructure:"parse"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the optional run-audit database backend.
// An empty driver disables run recording entirely.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OCRConfig configures the scanned-document fallback.
type OCRConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	BinPath   string        `yaml:"bin_path" mapstructure:"bin_path"`
	Languages string        `yaml:"languages" mapstructure:"languages"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ConsensusConfig configures candidate cluster voting.
type ConsensusConfig struct {
	MinSupport         int `yaml:"min_support" mapstructure:"min_support"`
	SingletonAllowance int `yaml:"singleton_allowance" mapstructure:"singleton_allowance"`
}

// SolverConfig bounds the exact sign-reconciliation search.
type SolverConfig struct {
	MaxNodes int           `yaml:"max_nodes" mapstructure:"max_nodes"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TemplatesConfig locates operator-supplied layout templates.
type TemplatesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ParseConfig tunes document-level heuristics.
type ParseConfig struct {
	// ScannedCharThreshold is the total character count across the first
	// three pages below which a document is treated as likely scanned.
	ScannedCharThreshold int `yaml:"scanned_char_threshold" mapstructure:"scanned_char_threshold"`
	// CSVCharset names the encoding of CSV uploads when not UTF-8.
	CSVCharset string `yaml:"csv_charset" mapstructure:"csv_charset"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string        `yaml:"addr" mapstructure:"addr"`
	RateLimit     float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst     int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	CacheTTL      time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	MaxUploadMB   int64         `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	AllowedOrigin []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetConfigName("statement-cli")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/statement-cli")

	// Environment
	v.SetEnvPrefix("STMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ocr.enabled", false)
	v.SetDefault("ocr.bin_path", "ocrmypdf")
	v.SetDefault("ocr.languages", "eng")
	v.SetDefault("ocr.timeout", 2*time.Minute)
	v.SetDefault("consensus.min_support", 2)
	v.SetDefault("consensus.singleton_allowance", 10)
	v.SetDefault("solver.max_nodes", 200000)
	v.SetDefault("solver.timeout", 5*time.Second)
	v.SetDefault("templates.dir", "")
	v.SetDefault("parse.scanned_char_threshold", 30)
	v.SetDefault("parse.csv_charset", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.cache_ttl", 5*time.Minute)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.allowed_origins", []string{"*"})

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
