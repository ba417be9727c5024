package common

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/label-approvals/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string   `mapstructure:"grpc_addr"`
	HTTPAddr       string   `mapstructure:"http_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Release        bool     `mapstructure:"release"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string `mapstructure:"tesseract"`
	Lang        string `mapstructure:"lang"`
	TessdataDir string `mapstructure:"tessdata_dir"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// AnalysisConfig controls the analysis pipeline and its worker pool.
type AnalysisConfig struct {
	DefaultMode    string        `mapstructure:"default_mode"`
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	Async          bool          `mapstructure:"async"`
}

// IngestConfig configures the submission inbox watcher. Empty Dir disables it.
type IngestConfig struct {
	Dir         string        `mapstructure:"dir"`
	Debounce    time.Duration `mapstructure:"debounce"`
	InitialScan bool          `mapstructure:"initial_scan"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings keeps the environment variable names the service has always used.
var envBindings = map[string]string{
	"database.dsn":                "DB_URL",
	"database.max_conns":          "DB_MAX_CONNS",
	"database.min_conns":          "DB_MIN_CONNS",
	"database.max_conn_lifetime":  "DB_MAX_CONN_LIFETIME",
	"database.max_conn_idle_time": "DB_MAX_CONN_IDLE_TIME",
	"database.dial_timeout":       "DB_DIAL_TIMEOUT",
	"database.statement_timeout":  "DB_STATEMENT_TIMEOUT",
	"database.auto_migrate":       "DB_AUTO_MIGRATE",
	"server.grpc_addr":            "GRPC_ADDR",
	"server.http_addr":            "HTTP_ADDR",
	"server.allowed_origins":      "CORS_ALLOWED_ORIGINS",
	"server.release":              "GIN_RELEASE",
	"ocr.tesseract":               "TESSERACT_BIN",
	"ocr.lang":                    "TESSERACT_LANG",
	"ocr.tessdata_dir":            "TESSDATA_PREFIX",
	"llm.base_url":                "OPENAI_BASE_URL",
	"llm.model":                   "OPENAI_MODEL",
	"llm.api_key":                 "OPENAI_API_KEY",
	"llm.temperature":             "OPENAI_TEMPERATURE",
	"llm.max_tokens":              "OPENAI_MAX_TOKENS",
	"llm.timeout":                 "OPENAI_TIMEOUT",
	"llm.requests_per_second":     "OPENAI_RPS",
	"analysis.default_mode":       "ANALYSIS_MODE_DEFAULT",
	"analysis.workers":            "WORKERS",
	"analysis.queue_size":         "QUEUE_SIZE",
	"analysis.process_timeout":    "PROCESS_TIMEOUT",
	"analysis.cache_ttl":          "EXTRACT_CACHE_TTL",
	"analysis.async":              "ANALYSIS_ASYNC",
	"ingest.dir":                  "INBOX_DIR",
	"ingest.debounce":             "INBOX_DEBOUNCE",
	"ingest.initial_scan":         "INBOX_INITIAL_SCAN",
	"log.level":                   "LOG_LEVEL",
}

// LoadConfig loads configuration from an optional labels.yaml and environment variables.
// Environment variables win over the file.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom is LoadConfig with an explicit config file path.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("labels")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/label-approvals/")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.http_addr", ":8081")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.release", true)

	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.tessdata_dir", "")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-5.1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 1.0)
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.requests_per_second", 2.0)

	v.SetDefault("analysis.default_mode", string(constants.DefaultAnalysisMode))
	v.SetDefault("analysis.workers", 4)
	v.SetDefault("analysis.queue_size", 256)
	v.SetDefault("analysis.process_timeout", 3*time.Minute)
	v.SetDefault("analysis.cache_ttl", 10*time.Minute)
	v.SetDefault("analysis.async", false)

	v.SetDefault("ingest.dir", "")
	v.SetDefault("ingest.debounce", 500*time.Millisecond)
	v.SetDefault("ingest.initial_scan", true)

	v.SetDefault("log.level", "info")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	mode, ok := constants.ParseAnalysisMode(c.Analysis.DefaultMode)
	if !ok {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown ANALYSIS_MODE_DEFAULT %q", c.Analysis.DefaultMode), ErrInvalidInput)
	}
	if mode == constants.AnalysisModeLLM && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required for using_llm analysis", ErrInvalidInput)
	}
	return nil
}

// DefaultMode returns the configured default analysis mode.
func (c *Config) DefaultMode() constants.AnalysisMode {
	if m, ok := constants.ParseAnalysisMode(c.Analysis.DefaultMode); ok {
		return m
	}
	return constants.DefaultAnalysisMode
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
