package handlers

import (
	"net/http"

	"github.com/chubajs/diparser/pkg/errors"
	"github.com/chubajs/diparser/pkg/logger"
	"github.com/chubajs/diparser/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleTranscribe 接收 multipart 音频并完成整个转写流水线
//
// 响应契约与旧前端保持一致：200 返回 {transcript, cost, sentences,
// paragraphs, subtitles}，校验失败 400 {"error": ...}，上游失败 500。
func (h *Handlers) handleTranscribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	language := c.PostForm("language")

	logger.Info("transcription request received",
		zap.String("file", header.Filename),
		zap.String("language", language))

	outcome, err := h.svc.Transcribe(c.Request.Context(), file, language)
	if err != nil {
		if errors.IsCode(err, errors.CodeValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errors.GetMessage(err)})
			return
		}
		metrics.TranscriptionJobs.WithLabelValues("failure").Inc()
		logger.Error("transcription failed", zap.String("file", header.Filename), zap.Error(err))
		c.JSON(errors.HTTPStatus(err), gin.H{"error": "Transcription error: " + err.Error()})
		return
	}

	metrics.TranscriptionJobs.WithLabelValues("success").Inc()
	metrics.TranscriptionSeconds.Add(outcome.Transcript.AudioDuration)

	c.JSON(http.StatusOK, outcome)
}

// handleTranscribeEvents SSE 推送转写进度
func (h *Handlers) handleTranscribeEvents(c *gin.Context) {
	h.hub.Serve(c, uuid.NewString())
}
