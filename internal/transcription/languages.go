package transcription

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Speech model tiers. English gets the high-quality tier, everything else
// the fast one; a cost/quality trade-off, not a correctness rule.
const (
	ModelBest = "best"
	ModelNano = "nano"
)

// languageToModel 支持的语言与服务商 language_code 的映射
var languageToModel = map[string]string{
	"en": "en_us",
	"es": "es",
	"fr": "fr",
	"de": "de",
	"it": "it",
	"pt": "pt",
	"nl": "nl",
	"ja": "ja",
	"zh": "zh",
	"ru": "ru",
}

// NormalizeLanguage lowers a user-supplied code to its base language:
// "EN", "en-US" and "en" all map to "en". Unparseable input is just lowered.
func NormalizeLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(code))
	}
	base, _ := tag.Base()
	return base.String()
}

// LanguageModel returns the provider language code for a normalized language.
func LanguageModel(code string) (string, bool) {
	m, ok := languageToModel[code]
	return m, ok
}

// SpeechModelFor picks the model tier for a normalized language.
func SpeechModelFor(code string) string {
	if code == "en" {
		return ModelBest
	}
	return ModelNano
}

// SupportedLanguages returns the supported short codes, sorted.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(languageToModel))
	for c := range languageToModel {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
