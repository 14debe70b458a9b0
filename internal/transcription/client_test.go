package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chubajs/diparser/pkg/cache"
	"github.com/chubajs/diparser/pkg/errors"
)

// fakeAssembly 模拟服务商 API：可配置轮询多少次后进入终态
type fakeAssembly struct {
	mux           *http.ServeMux
	pollsToFinish int
	finalStatus   string
	polls         atomic.Int64
	artifactHits  atomic.Int64
	lastSubmit    map[string]interface{}
}

func newFakeAssembly(pollsToFinish int, finalStatus string) *fakeAssembly {
	f := &fakeAssembly{
		mux:           http.NewServeMux(),
		pollsToFinish: pollsToFinish,
		finalStatus:   finalStatus,
	}

	f.mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/a1"})
	})
	f.mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		f.lastSubmit = map[string]interface{}{}
		json.NewDecoder(r.Body).Decode(&f.lastSubmit)
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
	})
	f.mux.HandleFunc("GET /v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := f.polls.Add(1)
		if int(n) < f.pollsToFinish {
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "job-1", "status": "processing"})
			return
		}
		if f.finalStatus == StatusError {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "job-1", "status": "error", "error": "audio too noisy",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "job-1", "status": "completed", "text": "hello world", "audio_duration": 120,
			"utterances": []map[string]interface{}{
				{"speaker": "A", "text": "hello world", "start": 0, "end": 120},
			},
		})
	})
	f.mux.HandleFunc("GET /v2/transcript/job-1/sentences", func(w http.ResponseWriter, r *http.Request) {
		f.artifactHits.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sentences": []map[string]string{{"text": "hello world"}},
		})
	})
	f.mux.HandleFunc("GET /v2/transcript/job-1/paragraphs", func(w http.ResponseWriter, r *http.Request) {
		f.artifactHits.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"paragraphs": []map[string]string{{"text": "hello world"}},
		})
	})
	f.mux.HandleFunc("GET /v2/transcript/job-1/srt", func(w http.ResponseWriter, r *http.Request) {
		f.artifactHits.Add(1)
		w.Write([]byte("1\n00:00:00,000 --> 00:02:00,000\nhello world\n"))
	})
	f.mux.HandleFunc("GET /v2/transcript/job-1/vtt", func(w http.ResponseWriter, r *http.Request) {
		f.artifactHits.Add(1)
		w.Write([]byte("WEBVTT\n\n00:00:00.000 --> 00:02:00.000\nhello world\n"))
	})
	return f
}

func newTestClient(t *testing.T, fake *fakeAssembly, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(fake.mux)
	t.Cleanup(server.Close)
	base := append([]ClientOption{
		WithKey("test-key"),
		WithBaseURL(server.URL),
		WithPollInterval(time.Millisecond),
		WithPollTimeout(2 * time.Second),
	}, opts...)
	return NewClient(base...)
}

func TestClientUploadSubmit(t *testing.T) {
	fake := newFakeAssembly(1, StatusCompleted)
	client := newTestClient(t, fake)
	ctx := context.Background()

	audioURL, err := client.Upload(ctx, strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a1", audioURL)

	tr, err := client.Submit(ctx, audioURL, SubmitParams{
		LanguageCode:  "en_us",
		SpeechModel:   ModelBest,
		SpeakerLabels: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", tr.ID)
	assert.Equal(t, StatusQueued, tr.Status)

	assert.Equal(t, "en_us", fake.lastSubmit["language_code"])
	assert.Equal(t, "best", fake.lastSubmit["speech_model"])
	assert.Equal(t, true, fake.lastSubmit["speaker_labels"])
}

func TestClientPollUntilCompleted(t *testing.T) {
	fake := newFakeAssembly(3, StatusCompleted)
	client := newTestClient(t, fake)

	tr, err := client.Poll(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, tr.Status)
	assert.Equal(t, "hello world", tr.Text)
	assert.Equal(t, float64(120), tr.AudioDuration)
	require.Len(t, tr.Utterances, 1)
	assert.Equal(t, "A", tr.Utterances[0].Speaker)
	// 非终态不会提前返回
	assert.Equal(t, int64(3), fake.polls.Load())
}

func TestClientPollErrorStatus(t *testing.T) {
	fake := newFakeAssembly(2, StatusError)
	client := newTestClient(t, fake)

	_, err := client.Poll(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTranscription))
	assert.Contains(t, err.Error(), "audio too noisy")
}

func TestClientPollTimeout(t *testing.T) {
	// 任务永远停在 processing
	fake := newFakeAssembly(1 << 30, StatusCompleted)
	client := newTestClient(t, fake, WithPollTimeout(30*time.Millisecond))

	_, err := client.Poll(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTimeout))
	assert.Contains(t, err.Error(), "timed out")
}

func TestClientArtifacts(t *testing.T) {
	fake := newFakeAssembly(1, StatusCompleted)
	client := newTestClient(t, fake)
	ctx := context.Background()

	sentences, err := client.Sentences(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, sentences)

	paragraphs, err := client.Paragraphs(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, paragraphs)

	srt, err := client.Subtitles(ctx, "job-1", FormatSRT)
	require.NoError(t, err)
	assert.Contains(t, srt, "-->")

	vtt, err := client.Subtitles(ctx, "job-1", FormatVTT)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(vtt, "WEBVTT"))

	_, err = client.Subtitles(ctx, "job-1", "ass")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestClientArtifactCache(t *testing.T) {
	fake := newFakeAssembly(1, StatusCompleted)
	client := newTestClient(t, fake, WithArtifactCache(cache.NewLocalCache(cache.LocalConfig{})))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Sentences(ctx, "job-1")
		require.NoError(t, err)
		_, err = client.Subtitles(ctx, "job-1", FormatSRT)
		require.NoError(t, err)
	}
	// 同一任务的派生数据只拉一次
	assert.Equal(t, int64(2), fake.artifactHits.Load())
}

func TestClientURL(t *testing.T) {
	client := NewClient(WithBaseURL("https://api.example.com/"))
	assert.Equal(t, "https://api.example.com/v2/upload", client.URL("/v2/upload"))

	client = NewClient()
	assert.Equal(t, DefaultBase+"/v2/transcript", client.URL("v2/transcript"))
}
