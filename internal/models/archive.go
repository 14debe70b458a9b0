package models

import (
	"encoding/json"
	"time"

	"github.com/chubajs/diparser/internal/transcription"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SchemaVersion of archive rows; bump when the serialized shape changes.
const SchemaVersion = 1

// ArchiveItem 一条已完成的转写归档记录
//
// 转写结果与派生数据按 JSON 存列。解码是防御式的：坏数据退化为空值，
// 不会让整个归档不可用。
type ArchiveItem struct {
	ID            string    `gorm:"primaryKey;size:64"`
	SchemaVersion int       `gorm:"default:1"`
	Name          string    `gorm:"size:255"` // 用户可改的显示名，默认取文件名
	FileName      string    `gorm:"size:255"`
	Language      string    `gorm:"size:8"`
	Cost          string    `gorm:"size:32"` // 定点字符串，如 "0.03"
	TranscribedAt time.Time `gorm:"autoCreateTime"`

	TranscriptJSON string `gorm:"type:text"`
	SentencesJSON  string `gorm:"type:text"`
	ParagraphsJSON string `gorm:"type:text"`
	SubtitlesJSON  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// NewArchiveItem builds an item for one finished transcription. The id is a
// UUIDv7, time-ordered like the insertion order of the archive.
func NewArchiveItem(name, fileName, language string, outcome *transcription.Outcome) (*ArchiveItem, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = fileName
	}

	item := &ArchiveItem{
		ID:            id.String(),
		SchemaVersion: SchemaVersion,
		Name:          name,
		FileName:      fileName,
		Language:      language,
		Cost:          outcome.Cost,
		TranscribedAt: time.Now(),
	}
	item.setJSON(&item.TranscriptJSON, outcome.Transcript)
	item.setJSON(&item.SentencesJSON, outcome.Sentences)
	item.setJSON(&item.ParagraphsJSON, outcome.Paragraphs)
	item.setJSON(&item.SubtitlesJSON, outcome.Subtitles)
	return item, nil
}

func (a *ArchiveItem) setJSON(dst *string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		*dst = ""
		return
	}
	*dst = string(b)
}

// Transcript decodes the stored transcript; malformed data yields a zero value.
func (a *ArchiveItem) Transcript() transcription.TranscriptResult {
	var tr transcription.TranscriptResult
	_ = json.Unmarshal([]byte(a.TranscriptJSON), &tr)
	return tr
}

// Sentences decodes the stored sentence view.
func (a *ArchiveItem) Sentences() []string {
	var out []string
	_ = json.Unmarshal([]byte(a.SentencesJSON), &out)
	return out
}

// Paragraphs decodes the stored paragraph view.
func (a *ArchiveItem) Paragraphs() []string {
	var out []string
	_ = json.Unmarshal([]byte(a.ParagraphsJSON), &out)
	return out
}

// Subtitles decodes the stored subtitle texts.
func (a *ArchiveItem) Subtitles() transcription.Subtitles {
	var out transcription.Subtitles
	_ = json.Unmarshal([]byte(a.SubtitlesJSON), &out)
	return out
}

// MarshalJSON renders the client-facing shape of an archive item.
func (a *ArchiveItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"id":                a.ID,
		"name":              a.Name,
		"fileName":          a.FileName,
		"language":          a.Language,
		"cost":              a.Cost,
		"transcriptionDate": a.TranscribedAt.Format(time.RFC3339),
		"transcript":        a.Transcript(),
		"sentences":         a.Sentences(),
		"paragraphs":        a.Paragraphs(),
		"subtitles":         a.Subtitles(),
	})
}

// ListArchiveItems returns the whole archive in insertion order.
func ListArchiveItems(db *gorm.DB) ([]*ArchiveItem, error) {
	var items []*ArchiveItem
	if err := db.Order("created_at, id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AppendArchiveItem persists one new item.
func AppendArchiveItem(db *gorm.DB, item *ArchiveItem) error {
	return db.Create(item).Error
}

// GetArchiveItem looks an item up by id; gorm.ErrRecordNotFound when absent.
func GetArchiveItem(db *gorm.DB, id string) (*ArchiveItem, error) {
	var item ArchiveItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RenameArchiveItem replaces the display name. A missing id is a no-op,
// not an error.
func RenameArchiveItem(db *gorm.DB, id, newName string) error {
	return db.Model(&ArchiveItem{}).Where("id = ?", id).Update("name", newName).Error
}

// UpdateArchiveTranscript replaces the utterance sequence inside the stored
// transcript, used after speaker-label edits.
func UpdateArchiveTranscript(db *gorm.DB, id string, utterances []transcription.Utterance) error {
	item, err := GetArchiveItem(db, id)
	if err != nil {
		return err
	}
	tr := item.Transcript()
	tr.Utterances = utterances
	b, err := json.Marshal(tr)
	if err != nil {
		return err
	}
	return db.Model(&ArchiveItem{}).Where("id = ?", id).Update("transcript_json", string(b)).Error
}
