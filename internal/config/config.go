package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Judge0     Judge0Config
	Judge      JudgeConfig     `mapstructure:"judge"`
	Proctoring ProctorConfig   `mapstructure:"proctoring"`
	Scoring    ScoringConfig   `mapstructure:"scoring"`
	Tracing    TracingConfig   `mapstructure:"tracing"`
	CORS       CORSConfig      `mapstructure:"cors"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`

	// Runtime flags (set from the command line, not the config file)
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type Judge0Config struct {
	APIKey string `mapstructure:"api_key"`
	URL    string
	Host   string
}

// JudgeConfig controls the judge worker pool and its retry policy.
type JudgeConfig struct {
	Workers        int           `mapstructure:"workers"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBackoffMs int           `mapstructure:"retry_backoff_ms"`
	RunDeadline    time.Duration `mapstructure:"run_deadline_minutes"`
}

// ProctorConfig bounds the snapshot-processing wait in the admission gate.
type ProctorConfig struct {
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	MaxWaitMs      int `mapstructure:"max_wait_ms"`
}

// ScoringConfig carries the score composition weights. The defaults mirror
// the published formula; they are configuration, not invariants.
type ScoringConfig struct {
	Version       string  `mapstructure:"version"`
	EfficiencyMax int     `mapstructure:"efficiency_max"`
	StyleMax      int     `mapstructure:"style_max"`
	AvgWeight     float64 `mapstructure:"avg_weight"`
	WorkCap       int     `mapstructure:"work_cap"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("YOSCORE")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Judge0
	viper.BindEnv("judge0.api_key", "JUDGE0_API_KEY")
	viper.BindEnv("judge0.url", "JUDGE0_URL")
	viper.BindEnv("judge0.host", "JUDGE0_HOST")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Judge.RunDeadline = cfg.Judge.RunDeadline * time.Minute

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Judge.Workers <= 0 {
		cfg.Judge.Workers = 4
	}
	if cfg.Judge.MaxAttempts <= 0 {
		cfg.Judge.MaxAttempts = 3
	}
	if cfg.Judge.RetryBackoffMs <= 0 {
		cfg.Judge.RetryBackoffMs = 500
	}
	if cfg.Judge.RunDeadline <= 0 {
		cfg.Judge.RunDeadline = 10 * time.Minute
	}
	if cfg.Proctoring.PollIntervalMs <= 0 {
		cfg.Proctoring.PollIntervalMs = 500
	}
	if cfg.Proctoring.MaxWaitMs <= 0 {
		cfg.Proctoring.MaxWaitMs = 5000
	}
	if cfg.Scoring.Version == "" {
		cfg.Scoring.Version = "v1"
	}
	if cfg.Scoring.EfficiencyMax <= 0 {
		cfg.Scoring.EfficiencyMax = 15
	}
	if cfg.Scoring.StyleMax <= 0 {
		cfg.Scoring.StyleMax = 5
	}
	if cfg.Scoring.AvgWeight <= 0 {
		cfg.Scoring.AvgWeight = 0.8
	}
	if cfg.Scoring.WorkCap <= 0 {
		cfg.Scoring.WorkCap = 20
	}
}
