package config

import (
	"log"
	"os"
	"time"

	"github.com/chubajs/diparser/pkg/logger"
	"github.com/chubajs/diparser/pkg/util"
)

// Config 全局配置
type Config struct {
	Addr      string `env:"ADDR"`
	Mode      string `env:"MODE"`
	APIPrefix string `env:"API_PREFIX"`

	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`

	Log logger.LogConfig

	// 转写服务商
	AssemblyAIKey     string `env:"ASSEMBLYAI_API_KEY"`
	AssemblyAIBaseURL string `env:"ASSEMBLYAI_BASE_URL"`
	PollInterval      time.Duration
	PollTimeout       time.Duration
	CostPerSecond     float64 `env:"COST_PER_SECOND"`

	CacheType     string `env:"CACHE_TYPE"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	RateLimit string `env:"RATE_LIMIT"`

	SearchEnabled bool   `env:"SEARCH_ENABLED"`
	SearchPath    string `env:"SEARCH_PATH"`

	BackupEnabled  bool   `env:"BACKUP_ENABLED"`
	BackupPath     string `env:"BACKUP_PATH"`
	BackupSchedule string `env:"BACKUP_SCHEDULE"`

	LLMApiKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL"`
	LLMModel   string `env:"LLM_MODEL"`
}

var GlobalConfig *Config

func Load() error {
	// 1. 根据环境加载 .env 文件
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development" // 默认使用开发环境
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. 加载全局配置
	GlobalConfig = &Config{
		Addr:      util.GetEnvDefault("ADDR", ":8080"),
		Mode:      util.GetEnv("MODE"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/api"),
		DBDriver:  util.GetEnvDefault("DB_DRIVER", "sqlite"),
		DSN:       util.GetEnvDefault("DSN", "diparser.db"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		AssemblyAIKey:     util.GetEnv("ASSEMBLYAI_API_KEY"),
		AssemblyAIBaseURL: util.GetEnv("ASSEMBLYAI_BASE_URL"),
		PollInterval:      util.GetDurationEnv("POLL_INTERVAL_MS", 3*time.Second),
		PollTimeout:       util.GetDurationEnv("POLL_TIMEOUT_MS", 30*time.Minute),
		CostPerSecond:     util.GetFloatEnvDefault("COST_PER_SECOND", 0.00025),
		CacheType:         util.GetEnvDefault("CACHE_TYPE", "local"),
		RedisAddr:         util.GetEnv("REDIS_ADDR"),
		RedisPassword:     util.GetEnv("REDIS_PASSWORD"),
		RedisDB:           int(util.GetIntEnv("REDIS_DB")),
		RateLimit:         util.GetEnvDefault("RATE_LIMIT", "60-M"),
		SearchEnabled:     util.GetBoolEnv("SEARCH_ENABLED"),
		SearchPath:        util.GetEnvDefault("SEARCH_PATH", "diparser.bleve"),
		BackupEnabled:     util.GetBoolEnv("BACKUP_ENABLED"),
		BackupPath:        util.GetEnvDefault("BACKUP_PATH", "backups"),
		BackupSchedule:    util.GetEnvDefault("BACKUP_SCHEDULE", "0 3 * * *"),
		LLMApiKey:         util.GetEnv("LLM_API_KEY"),
		LLMBaseURL:        util.GetEnv("LLM_BASE_URL"),
		LLMModel:          util.GetEnvDefault("LLM_MODEL", "gpt-4o-mini"),
	}
	return nil
}
