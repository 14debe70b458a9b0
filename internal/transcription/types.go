package transcription

// Transcript job statuses reported by the provider.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Subtitle formats served by the provider.
const (
	FormatSRT = "srt"
	FormatVTT = "vtt"
)

// Utterance 一条带说话人标签的语句，时间单位为秒
type Utterance struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// TranscriptResult 服务商返回的转写任务
type TranscriptResult struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	Text          string      `json:"text"`
	Utterances    []Utterance `json:"utterances"`
	AudioDuration float64     `json:"audio_duration"`
	Error         string      `json:"error,omitempty"`
}

// Terminal reports whether the job reached a final state.
func (t *TranscriptResult) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusError
}

// Subtitles 两种格式的字幕文本
type Subtitles struct {
	SRT string `json:"srt"`
	VTT string `json:"vtt"`
}

// SubmitParams 创建转写任务的参数
type SubmitParams struct {
	LanguageCode  string
	SpeechModel   string
	SpeakerLabels bool
}
