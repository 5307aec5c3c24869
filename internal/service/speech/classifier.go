package speech

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// classifierLanguages is the closed candidate set for text classification.
// Near neighbours of the two supported languages stay in the set so that
// genuinely foreign text can classify as neither "en" nor "ml".
var classifierLanguages = []lingua.Language{
	lingua.English,
	lingua.Malayalam,
	lingua.Tamil,
	lingua.Telugu,
	lingua.Kannada,
	lingua.Hindi,
	lingua.Arabic,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.German,
}

// Classifier assigns an ISO 639-1 code to a piece of text.
type Classifier struct {
	detector lingua.LanguageDetector
}

// NewClassifier builds the lingua detector. Building loads the language
// models and should happen once at startup.
func NewClassifier() *Classifier {
	return &Classifier{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(classifierLanguages...).
			Build(),
	}
}

// Classify returns the lowercase ISO 639-1 code of the top-ranked language
// for text, or ok=false when no language can be determined.
func (c *Classifier) Classify(text string) (string, bool) {
	lang, ok := c.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
