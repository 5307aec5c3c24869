package emr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
)

// ErrNoInput reports a translation request with nothing to translate.
var ErrNoInput = errors.New("no input text")

// labelPattern strips boilerplate the prompt invites, like a leading
// "English Translation:" label or echoed --- delimiters.
var labelPattern = regexp.MustCompile(`(?im)^(english translation:|---)\s*`)

// Translator turns Malayalam transcripts into canonical English text.
type Translator struct {
	gen    Generator
	logger zerolog.Logger
}

// NewTranslator creates a Translator on top of a Generator.
func NewTranslator(gen Generator) *Translator {
	return &Translator{
		gen:    gen,
		logger: logging.WithComponent("emr.translator"),
	}
}

// Translate returns the English rendition of text with label boilerplate
// stripped and whitespace trimmed. Failures surface as errors so the
// pipeline can degrade instead of carrying a marker string forward.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoInput
	}

	raw, err := t.gen.Generate(ctx, translationPrompt(text))
	if err != nil {
		return "", fmt.Errorf("translate transcript: %w", err)
	}

	out := strings.TrimSpace(labelPattern.ReplaceAllString(raw, ""))
	t.logger.Debug().Int("inputLen", len(text)).Int("outputLen", len(out)).Msg("Translation completed")
	return out, nil
}
