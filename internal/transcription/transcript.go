package transcription

import (
	"fmt"

	"github.com/chubajs/diparser/pkg/errors"
)

// Tabbed transcript views. Exactly one is active at a time; none of them
// mutates the underlying transcript.
const (
	ViewUtterances = "utterances"
	ViewSentences  = "sentences"
	ViewParagraphs = "paragraphs"
)

// SubtitleContentType is the MIME type of exported subtitle files.
const SubtitleContentType = "text/plain"

// Speakers returns the distinct speaker labels in first-seen order.
func Speakers(utterances []Utterance) []string {
	seen := make(map[string]bool, 4)
	labels := make([]string, 0, 4)
	for _, u := range utterances {
		if !seen[u.Speaker] {
			seen[u.Speaker] = true
			labels = append(labels, u.Speaker)
		}
	}
	return labels
}

// SpeakerNames maps raw speaker labels to display names. The mapping is
// applied at render time; the raw utterances are never mutated, so two
// labels renamed to the same display name stay distinguishable underneath.
type SpeakerNames map[string]string

// Display returns the display name for a raw label.
func (m SpeakerNames) Display(label string) string {
	if name, ok := m[label]; ok && name != "" {
		return name
	}
	return label
}

// Apply returns a copy of the utterances with display names substituted.
func (m SpeakerNames) Apply(utterances []Utterance) []Utterance {
	out := make([]Utterance, len(utterances))
	for i, u := range utterances {
		u.Speaker = m.Display(u.Speaker)
		out[i] = u
	}
	return out
}

// RenameSpeaker relabels every utterance carrying oldLabel to newLabel and
// returns a new slice. The edit unit is the label value, not the utterance:
// "rename speaker A to Alice" is one operation.
func RenameSpeaker(utterances []Utterance, oldLabel, newLabel string) []Utterance {
	out := make([]Utterance, len(utterances))
	for i, u := range utterances {
		if u.Speaker == oldLabel {
			u.Speaker = newLabel
		}
		out[i] = u
	}
	return out
}

// FormatTimestamp renders seconds as HH:MM:SS.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// FormatUtterances renders the raw utterance view: speaker, time range, text.
func FormatUtterances(utterances []Utterance, names SpeakerNames) []string {
	lines := make([]string, 0, len(utterances))
	for _, u := range utterances {
		lines = append(lines, fmt.Sprintf("%s [%s - %s]: %s",
			names.Display(u.Speaker), FormatTimestamp(u.Start), FormatTimestamp(u.End), u.Text))
	}
	return lines
}

// RenderView selects one of the three textual views of a finished job.
func RenderView(view string, utterances []Utterance, names SpeakerNames, sentences, paragraphs []string) ([]string, error) {
	switch view {
	case ViewUtterances:
		return FormatUtterances(utterances, names), nil
	case ViewSentences:
		return sentences, nil
	case ViewParagraphs:
		return paragraphs, nil
	default:
		return nil, errors.WithCodef(errors.CodeValidation, "unknown view: %s", view)
	}
}

// SubtitleFilename validates a subtitle format and returns the download
// filename for it.
func SubtitleFilename(format string) (string, error) {
	if format != FormatSRT && format != FormatVTT {
		return "", errors.WithCodef(errors.CodeValidation, "unsupported subtitle format: %s", format)
	}
	return "subtitles." + format, nil
}
