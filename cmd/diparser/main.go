package main

import (
	"log"

	handlers "github.com/chubajs/diparser/internal/handler"
	"github.com/chubajs/diparser/internal/models"
	"github.com/chubajs/diparser/internal/transcription"
	"github.com/chubajs/diparser/pkg/backup"
	"github.com/chubajs/diparser/pkg/cache"
	"github.com/chubajs/diparser/pkg/config"
	"github.com/chubajs/diparser/pkg/llm"
	"github.com/chubajs/diparser/pkg/logger"
	"github.com/chubajs/diparser/pkg/search"
	"github.com/chubajs/diparser/pkg/sse"
	"github.com/chubajs/diparser/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GlobalConfig

	// 服务商凭证缺失直接拒绝启动
	if cfg.AssemblyAIKey == "" {
		log.Fatal("ASSEMBLYAI_API_KEY is not set in the environment variables")
	}

	logger.Init(cfg.Log)
	defer logger.Sync()

	db, err := util.OpenDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.ArchiveItem{}); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	artifactCache, err := cache.NewCache(cache.Config{
		Type: cfg.CacheType,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	})
	if err != nil {
		logger.Fatal("failed to create cache", zap.Error(err))
	}
	defer artifactCache.Close()

	// 服务商客户端进程内只建一次，注入到编排服务
	client := transcription.NewClient(
		transcription.WithKey(cfg.AssemblyAIKey),
		transcription.WithBaseURL(cfg.AssemblyAIBaseURL),
		transcription.WithPollInterval(cfg.PollInterval),
		transcription.WithPollTimeout(cfg.PollTimeout),
		transcription.WithArtifactCache(artifactCache),
	)

	hub := sse.NewHub(0)
	svc := transcription.NewService(client,
		transcription.WithCostPerSecond(cfg.CostPerSecond),
		transcription.WithEvents(func(ev transcription.Event) {
			hub.BroadcastJSON(ev)
		}),
	)

	var index search.Engine
	if cfg.SearchEnabled {
		index, err = search.New(cfg.SearchPath)
		if err != nil {
			logger.Fatal("failed to open search index", zap.Error(err))
		}
		defer index.Close()
	}

	var summarizer llm.Summarizer
	if cfg.LLMApiKey != "" {
		summarizer, err = llm.NewOpenAISummarizer(llm.Config{
			APIKey:  cfg.LLMApiKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		})
		if err != nil {
			logger.Warn("llm summarizer disabled", zap.Error(err))
		}
	}

	if cfg.BackupEnabled {
		cronJobs, err := backup.StartScheduler()
		if err != nil {
			logger.Fatal("failed to start backup scheduler", zap.Error(err))
		}
		defer cronJobs.Stop()
	}

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := handlers.NewHandlers(db, svc, hub, index, summarizer)
	h.Register(engine)

	logger.Info("diparser listening", zap.String("addr", cfg.Addr))
	if err := engine.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
