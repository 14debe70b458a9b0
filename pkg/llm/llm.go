package llm

import "context"

// Summarizer produces a short summary of a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Config LLM 配置，BaseURL 为空时使用官方 OpenAI 接口
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}
