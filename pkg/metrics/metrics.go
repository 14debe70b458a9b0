package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests HTTP请求计数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diparser_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration HTTP请求耗时
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diparser_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TranscriptionJobs 转写任务计数，按最终结果分类
	TranscriptionJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diparser_transcription_jobs_total",
			Help: "Transcription jobs by outcome",
		},
		[]string{"outcome"},
	)

	// TranscriptionSeconds 累计转写的音频时长（秒）
	TranscriptionSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diparser_transcribed_audio_seconds_total",
			Help: "Total seconds of audio transcribed",
		},
	)
)
