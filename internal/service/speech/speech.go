// Package speech runs speech-to-text models and resolves the spoken
// language of an audio sample.
package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
)

// Model keys in the registry. One model per supported language.
const (
	ModelKeyEnglish   = "speech_en"
	ModelKeyMalayalam = "speech_ml"
)

// ErrModelNotFound is returned when a requested model key is not registered.
var ErrModelNotFound = errors.New("speech model not found")

// Language is one of the supported consult languages.
type Language string

const (
	LanguageEnglish   Language = "en"
	LanguageMalayalam Language = "ml"
)

// ParseLanguage validates an explicit caller-supplied language code.
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageMalayalam:
		return LanguageMalayalam, nil
	}
	return "", fmt.Errorf("unsupported language code %q", code)
}

func (l Language) String() string {
	return string(l)
}

// ModelKey returns the registry key of the transcription model for l.
func (l Language) ModelKey() string {
	if l == LanguageMalayalam {
		return ModelKeyMalayalam
	}
	return ModelKeyEnglish
}

// Model transcribes an audio sample to text.
type Model interface {
	Transcribe(ctx context.Context, sample audio.Sample) (string, error)
}

// Result is one completed transcription.
type Result struct {
	Text     string
	ModelKey string
}

// Registry is an immutable mapping from model keys to models. It is built
// once at startup and shared read-only across requests.
type Registry struct {
	models map[string]Model
}

// NewRegistry copies models into a new registry.
func NewRegistry(models map[string]Model) *Registry {
	copied := make(map[string]Model, len(models))
	for k, m := range models {
		copied[k] = m
	}
	return &Registry{models: copied}
}

// Get returns the model registered under key.
func (r *Registry) Get(key string) (Model, bool) {
	m, ok := r.models[key]
	return m, ok
}

// Keys returns the registered model keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.models))
	for k := range r.models {
		keys = append(keys, k)
	}
	return keys
}
