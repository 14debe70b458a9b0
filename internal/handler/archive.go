package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/chubajs/diparser/internal/models"
	"github.com/chubajs/diparser/internal/transcription"
	"github.com/chubajs/diparser/pkg/errors"
	"github.com/chubajs/diparser/pkg/logger"
	"github.com/chubajs/diparser/pkg/response"
	"github.com/chubajs/diparser/pkg/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 获取全部归档（按插入顺序）
func (h *Handlers) handleListArchive(c *gin.Context) {
	items, err := models.ListArchiveItems(h.db)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "can not load archive")
		return
	}
	response.Success(c, "archive", items)
}

type appendArchiveRequest struct {
	Name       string                         `json:"name"`
	FileName   string                         `json:"fileName" binding:"required"`
	Language   string                         `json:"language" binding:"required"`
	Cost       string                         `json:"cost"`
	Transcript transcription.TranscriptResult `json:"transcript"`
	Sentences  []string                       `json:"sentences"`
	Paragraphs []string                       `json:"paragraphs"`
	Subtitles  transcription.Subtitles        `json:"subtitles"`
}

// 追加一条归档记录
func (h *Handlers) handleAppendArchive(c *gin.Context) {
	var req appendArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := models.NewArchiveItem(req.Name, req.FileName, req.Language, &transcription.Outcome{
		Transcript: &req.Transcript,
		Cost:       req.Cost,
		Sentences:  req.Sentences,
		Paragraphs: req.Paragraphs,
		Subtitles:  req.Subtitles,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "can not create archive item")
		return
	}

	if err := models.AppendArchiveItem(h.db, item); err != nil {
		response.Error(c, http.StatusInternalServerError, "can not save archive item")
		return
	}
	h.indexItem(item)

	response.Success(c, "archived", item)
}

// 查询单条归档
func (h *Handlers) handleGetArchiveItem(c *gin.Context) {
	item, ok := h.findItem(c)
	if !ok {
		return
	}
	response.Success(c, "archive item", item)
}

// 重命名归档（找不到 id 不算错误）
func (h *Handlers) handleRenameArchiveItem(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := models.RenameArchiveItem(h.db, id, req.Name); err != nil {
		response.Error(c, http.StatusInternalServerError, "can not rename archive item")
		return
	}
	if item, err := models.GetArchiveItem(h.db, id); err == nil {
		h.indexItem(item)
	}
	response.Success(c, "renamed", nil)
}

// 覆盖归档中的语句序列（说话人编辑后保存）
func (h *Handlers) handleUpdateTranscript(c *gin.Context) {
	var req struct {
		Utterances []transcription.Utterance `json:"utterances"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := models.UpdateArchiveTranscript(h.db, id, req.Utterances); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "archive item not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "can not update transcript")
		return
	}
	response.Success(c, "transcript updated", nil)
}

// 批量改名说话人：标签相同的所有语句一起改
func (h *Handlers) handleRenameSpeaker(c *gin.Context) {
	var req struct {
		From string `json:"from" binding:"required"`
		To   string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, ok := h.findItem(c)
	if !ok {
		return
	}

	utterances := transcription.RenameSpeaker(item.Transcript().Utterances, req.From, req.To)
	if err := models.UpdateArchiveTranscript(h.db, item.ID, utterances); err != nil {
		response.Error(c, http.StatusInternalServerError, "can not update transcript")
		return
	}
	response.Success(c, "speaker renamed", gin.H{"utterances": utterances})
}

// 下载字幕文件
func (h *Handlers) handleDownloadSubtitles(c *gin.Context) {
	format := c.Param("format")
	filename, err := transcription.SubtitleFilename(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.GetMessage(err)})
		return
	}

	item, ok := h.findItem(c)
	if !ok {
		return
	}

	subs := item.Subtitles()
	content := subs.SRT
	if format == transcription.FormatVTT {
		content = subs.VTT
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, transcription.SubtitleContentType, []byte(content))
}

// 归档全文检索
func (h *Handlers) handleSearchArchive(c *gin.Context) {
	if h.index == nil {
		response.Error(c, http.StatusServiceUnavailable, "search is not enabled")
		return
	}
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is empty"})
		return
	}

	hits, err := h.index.Search(c.Request.Context(), q, 20)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "search failed")
		return
	}

	results := make([]gin.H, 0, len(hits))
	for _, hit := range hits {
		item, err := models.GetArchiveItem(h.db, hit.ID)
		if err != nil {
			continue // 索引落后于归档
		}
		results = append(results, gin.H{"id": item.ID, "name": item.Name, "score": hit.Score})
	}
	response.Success(c, "search results", results)
}

// 生成转写摘要
func (h *Handlers) handleSummarize(c *gin.Context) {
	if h.summarizer == nil {
		response.Error(c, http.StatusServiceUnavailable, "summarization is not configured")
		return
	}

	item, ok := h.findItem(c)
	if !ok {
		return
	}

	summary, err := h.summarizer.Summarize(c.Request.Context(), item.Transcript().Text)
	if err != nil {
		logger.Warn("summarization failed", zap.String("id", item.ID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "summarization failed")
		return
	}
	response.Success(c, "summary", gin.H{"summary": summary})
}

func (h *Handlers) findItem(c *gin.Context) (*models.ArchiveItem, bool) {
	item, err := models.GetArchiveItem(h.db, c.Param("id"))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "archive item not found")
		} else {
			response.Error(c, http.StatusInternalServerError, "can not load archive item")
		}
		return nil, false
	}
	return item, true
}

func (h *Handlers) indexItem(item *models.ArchiveItem) {
	if h.index == nil {
		return
	}
	doc := search.Doc{
		ID:       item.ID,
		Name:     item.Name,
		FileName: item.FileName,
		Language: item.Language,
		Text:     item.Transcript().Text,
	}
	if err := h.index.Index(context.Background(), doc); err != nil {
		logger.Warn("failed to index archive item", zap.String("id", item.ID), zap.Error(err))
	}
}
