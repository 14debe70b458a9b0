package handlers

import (
	"github.com/chubajs/diparser/internal/transcription"
	"github.com/chubajs/diparser/pkg/config"
	"github.com/chubajs/diparser/pkg/llm"
	"github.com/chubajs/diparser/pkg/metrics"
	"github.com/chubajs/diparser/pkg/middleware"
	"github.com/chubajs/diparser/pkg/search"
	"github.com/chubajs/diparser/pkg/sse"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Handlers struct {
	db         *gorm.DB
	svc        *transcription.Service
	hub        *sse.Hub
	index      search.Engine  // nil 表示未开启全文检索
	summarizer llm.Summarizer // nil 表示未配置 LLM
}

func NewHandlers(db *gorm.DB, svc *transcription.Service, hub *sse.Hub, index search.Engine, summarizer llm.Summarizer) *Handlers {
	return &Handlers{
		db:         db,
		svc:        svc,
		hub:        hub,
		index:      index,
		summarizer: summarizer,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(metrics.Middleware())
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r := engine.Group(config.GlobalConfig.APIPrefix)
	r.Use(middleware.RateLimiter(config.GlobalConfig.RateLimit))

	r.GET("/health", h.HealthCheck)

	// 转写：同一时刻只允许一个任务
	guard := middleware.NewInflightGuard()
	r.POST("/transcribe", guard.Middleware(), h.handleTranscribe)
	r.GET("/transcribe/events", h.handleTranscribeEvents)

	archive := r.Group("/archive")
	{
		archive.GET("", h.handleListArchive)
		archive.POST("", h.handleAppendArchive)
		archive.GET("/search", h.handleSearchArchive)
		archive.GET("/:id", h.handleGetArchiveItem)
		archive.PATCH("/:id/name", h.handleRenameArchiveItem)
		archive.PUT("/:id/transcript", h.handleUpdateTranscript)
		archive.POST("/:id/speakers", h.handleRenameSpeaker)
		archive.GET("/:id/subtitles/:format", h.handleDownloadSubtitles)
		archive.POST("/:id/summary", h.handleSummarize)
	}
}
