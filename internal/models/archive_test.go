package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chubajs/diparser/internal/transcription"
	"github.com/chubajs/diparser/pkg/util"
)

var dsnSeq int

// testDB 每个测试独立的内存库；共享缓存让 gorm 连接池里的连接看到同一份数据
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnSeq++
	dsn := fmt.Sprintf("file:archive_test_%d?mode=memory&cache=shared", dsnSeq)
	db, err := util.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ArchiveItem{}))
	return db
}

func testOutcome(cost string) *transcription.Outcome {
	return &transcription.Outcome{
		Transcript: &transcription.TranscriptResult{
			ID:            "job-1",
			Status:        transcription.StatusCompleted,
			Text:          "hello world",
			AudioDuration: 120,
			Utterances: []transcription.Utterance{
				{Speaker: "A", Text: "hello", Start: 0, End: 1.5},
				{Speaker: "B", Text: "world", Start: 1.8, End: 3},
			},
		},
		Cost:       cost,
		Sentences:  []string{"hello", "world"},
		Paragraphs: []string{"hello world"},
		Subtitles:  transcription.Subtitles{SRT: "srt body", VTT: "vtt body"},
	}
}

func TestArchiveAppendAndGet(t *testing.T) {
	db := testDB(t)

	item, err := NewArchiveItem("", "meeting.mp3", "en", testOutcome("0.03"))
	require.NoError(t, err)
	// 显示名缺省取文件名
	assert.Equal(t, "meeting.mp3", item.Name)
	assert.Equal(t, SchemaVersion, item.SchemaVersion)
	require.NoError(t, AppendArchiveItem(db, item))

	got, err := GetArchiveItem(db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "meeting.mp3", got.FileName)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, "0.03", got.Cost)

	tr := got.Transcript()
	assert.Equal(t, "hello world", tr.Text)
	require.Len(t, tr.Utterances, 2)
	assert.Equal(t, "A", tr.Utterances[0].Speaker)
	assert.Equal(t, []string{"hello", "world"}, got.Sentences())
	assert.Equal(t, []string{"hello world"}, got.Paragraphs())
	assert.Equal(t, "srt body", got.Subtitles().SRT)
	assert.Equal(t, "vtt body", got.Subtitles().VTT)
}

func TestArchiveGetMissing(t *testing.T) {
	db := testDB(t)
	_, err := GetArchiveItem(db, "no-such-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestArchiveListOrder(t *testing.T) {
	db := testDB(t)

	var ids []string
	for i := 0; i < 5; i++ {
		item, err := NewArchiveItem(fmt.Sprintf("item-%d", i), "a.mp3", "en", testOutcome("0.01"))
		require.NoError(t, err)
		require.NoError(t, AppendArchiveItem(db, item))
		ids = append(ids, item.ID)
	}

	items, err := ListArchiveItems(db)
	require.NoError(t, err)
	require.Len(t, items, 5)
	// 插入顺序即列表顺序
	for i, item := range items {
		assert.Equal(t, ids[i], item.ID)
	}
}

func TestArchiveRename(t *testing.T) {
	db := testDB(t)

	item, err := NewArchiveItem("old", "a.mp3", "en", testOutcome("0.01"))
	require.NoError(t, err)
	require.NoError(t, AppendArchiveItem(db, item))

	require.NoError(t, RenameArchiveItem(db, item.ID, "new name"))
	got, err := GetArchiveItem(db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", got.Name)
	// 其余字段不受影响
	assert.Equal(t, "a.mp3", got.FileName)
	assert.Equal(t, "hello world", got.Transcript().Text)

	// 不存在的 id 静默跳过
	require.NoError(t, RenameArchiveItem(db, "no-such-id", "x"))
}

func TestArchiveUpdateTranscript(t *testing.T) {
	db := testDB(t)

	item, err := NewArchiveItem("n", "a.mp3", "en", testOutcome("0.01"))
	require.NoError(t, err)
	require.NoError(t, AppendArchiveItem(db, item))

	renamed := transcription.RenameSpeaker(item.Transcript().Utterances, "A", "Alice")
	require.NoError(t, UpdateArchiveTranscript(db, item.ID, renamed))

	got, err := GetArchiveItem(db, item.ID)
	require.NoError(t, err)
	tr := got.Transcript()
	require.Len(t, tr.Utterances, 2)
	assert.Equal(t, "Alice", tr.Utterances[0].Speaker)
	assert.Equal(t, "B", tr.Utterances[1].Speaker)
	// 文本与时长保持不变
	assert.Equal(t, "hello world", tr.Text)
	assert.Equal(t, float64(120), tr.AudioDuration)

	err = UpdateArchiveTranscript(db, "no-such-id", renamed)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestArchiveMalformedJSONDegrades(t *testing.T) {
	item := &ArchiveItem{
		TranscriptJSON: "{not json",
		SentencesJSON:  "also broken",
		ParagraphsJSON: "",
		SubtitlesJSON:  "[]",
	}

	assert.Equal(t, transcription.TranscriptResult{}, item.Transcript())
	assert.Nil(t, item.Sentences())
	assert.Nil(t, item.Paragraphs())
	assert.Equal(t, transcription.Subtitles{}, item.Subtitles())
}

func TestArchiveMarshalJSON(t *testing.T) {
	item, err := NewArchiveItem("n", "a.mp3", "en", testOutcome("0.03"))
	require.NoError(t, err)

	b, err := item.MarshalJSON()
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"fileName":"a.mp3"`)
	assert.Contains(t, s, `"cost":"0.03"`)
	assert.Contains(t, s, `"transcriptionDate"`)
	assert.Contains(t, s, `"srt":"srt body"`)
}
