package transcription

import (
	"context"
	"io"
	"math"
	"strconv"

	"github.com/chubajs/diparser/pkg/errors"
	"github.com/chubajs/diparser/pkg/logger"
	"go.uber.org/zap"
)

// DefaultCostPerSecond 服务商按秒计费单价（美元）
const DefaultCostPerSecond = 0.00025

// Provider abstracts the transcription provider API used by the Service.
type Provider interface {
	Upload(ctx context.Context, audio io.Reader) (string, error)
	Submit(ctx context.Context, audioURL string, params SubmitParams) (*TranscriptResult, error)
	Poll(ctx context.Context, id string) (*TranscriptResult, error)
	Sentences(ctx context.Context, id string) ([]string, error)
	Paragraphs(ctx context.Context, id string) ([]string, error)
	Subtitles(ctx context.Context, id, format string) (string, error)
}

// Event 转写流水线的进度事件
type Event struct {
	Stage string `json:"stage"`
	JobID string `json:"job_id,omitempty"`
	Error string `json:"error,omitempty"`
}

// Pipeline stages published as progress events.
const (
	StageUploading = "uploading"
	StageSubmitted = "submitted"
	StagePolling   = "polling"
	StageArtifacts = "fetching_artifacts"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Outcome 一次成功转写的完整结果
type Outcome struct {
	Transcript *TranscriptResult `json:"transcript"`
	Cost       string            `json:"cost"`
	Sentences  []string          `json:"sentences"`
	Paragraphs []string          `json:"paragraphs"`
	Subtitles  Subtitles         `json:"subtitles"`
}

// Service sequences the provider calls for one transcription request:
// upload, submit, poll to terminal, fetch derived artifacts, compute cost.
// It holds no state between requests beyond the injected client.
type Service struct {
	provider      Provider
	costPerSecond float64
	events        func(Event)
}

type ServiceOption func(*Service)

// WithCostPerSecond overrides the billing unit rate.
func WithCostPerSecond(rate float64) ServiceOption {
	return func(s *Service) {
		s.costPerSecond = rate
	}
}

// WithEvents registers a progress event sink.
func WithEvents(fn func(Event)) ServiceOption {
	return func(s *Service) {
		s.events = fn
	}
}

func NewService(provider Provider, opts ...ServiceOption) *Service {
	s := &Service{provider: provider, costPerSecond: DefaultCostPerSecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ev Event) {
	if s.events != nil {
		s.events(ev)
	}
}

// Transcribe runs the whole pipeline for one audio file. Any stage failure
// aborts the request; no partial results are returned.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, langCode string) (*Outcome, error) {
	if audio == nil {
		return nil, errors.WithCode(errors.CodeValidation, "No file uploaded")
	}

	lang := NormalizeLanguage(langCode)
	model, ok := LanguageModel(lang)
	if !ok {
		return nil, errors.WithCode(errors.CodeValidation, "Invalid language")
	}

	outcome, err := s.run(ctx, audio, lang, model)
	if err != nil {
		s.publish(Event{Stage: StageFailed, Error: errors.GetMessage(err)})
		return nil, err
	}
	return outcome, nil
}

func (s *Service) run(ctx context.Context, audio io.Reader, lang, model string) (*Outcome, error) {
	s.publish(Event{Stage: StageUploading})
	audioURL, err := s.provider.Upload(ctx, audio)
	if err != nil {
		return nil, err
	}

	submitted, err := s.provider.Submit(ctx, audioURL, SubmitParams{
		LanguageCode:  model,
		SpeechModel:   SpeechModelFor(lang),
		SpeakerLabels: true,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("transcription submitted", zap.String("id", submitted.ID), zap.String("language", lang))
	s.publish(Event{Stage: StageSubmitted, JobID: submitted.ID})

	s.publish(Event{Stage: StagePolling, JobID: submitted.ID})
	transcript, err := s.provider.Poll(ctx, submitted.ID)
	if err != nil {
		return nil, err
	}

	// 任务完成后的派生数据；串行拉取，彼此独立但都依赖任务完成
	s.publish(Event{Stage: StageArtifacts, JobID: submitted.ID})
	sentences, err := s.provider.Sentences(ctx, submitted.ID)
	if err != nil {
		return nil, err
	}
	paragraphs, err := s.provider.Paragraphs(ctx, submitted.ID)
	if err != nil {
		return nil, err
	}
	srt, err := s.provider.Subtitles(ctx, submitted.ID, FormatSRT)
	if err != nil {
		return nil, err
	}
	vtt, err := s.provider.Subtitles(ctx, submitted.ID, FormatVTT)
	if err != nil {
		return nil, err
	}

	cost := FormatCost(transcript.AudioDuration, s.costPerSecond)
	logger.Info("transcription completed",
		zap.String("id", transcript.ID),
		zap.Float64("audio_duration", transcript.AudioDuration),
		zap.String("cost", cost))
	s.publish(Event{Stage: StageCompleted, JobID: transcript.ID})

	return &Outcome{
		Transcript: transcript,
		Cost:       cost,
		Sentences:  sentences,
		Paragraphs: paragraphs,
		Subtitles:  Subtitles{SRT: srt, VTT: vtt},
	}, nil
}

// FormatCost renders duration × rate as a fixed-point string with two
// decimals, rounding half away from zero.
func FormatCost(durationSeconds, costPerSecond float64) string {
	cents := math.Round(durationSeconds * costPerSecond * 100)
	return strconv.FormatFloat(cents/100, 'f', 2, 64)
}
