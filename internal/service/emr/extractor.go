// Package emr turns consult transcripts into structured clinical records and
// advisory suggestions by prompting a remote inference model for strict
// KEY: VALUE output and parsing it against closed field sets.
package emr

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
)

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor asks the inference model for structured consult data.
type Extractor struct {
	gen    Generator
	logger zerolog.Logger
}

// NewExtractor creates an Extractor on top of a Generator.
func NewExtractor(gen Generator) *Extractor {
	return &Extractor{
		gen:    gen,
		logger: logging.WithComponent("emr.extractor"),
	}
}

// ExtractRecord pulls the clinical record fields out of a transcript. It is
// total: on empty input or remote failure every field holds the sentinel and
// the caller decides how to degrade.
func (e *Extractor) ExtractRecord(ctx context.Context, text string) Record {
	if strings.TrimSpace(text) == "" {
		e.logger.Warn().Msg("No transcript text for record extraction")
		return RecordFields.SentinelRecord()
	}

	raw, err := e.gen.Generate(ctx, recordPrompt(text))
	if err != nil {
		e.logger.Error().Err(err).Msg("Record extraction failed")
		return RecordFields.SentinelRecord()
	}
	return ParseFields(raw, RecordFields)
}

// Suggest generates the advisory categories from an extracted record. The
// prompt carries only the informative entries; with none left the remote
// call is skipped. Total like ExtractRecord.
func (e *Extractor) Suggest(ctx context.Context, rec Record) Record {
	summary := summarize(rec)
	if summary == "" {
		e.logger.Warn().Msg("No informative record entries for suggestions")
		return SuggestionFields.SentinelRecord()
	}

	raw, err := e.gen.Generate(ctx, suggestionsPrompt(summary))
	if err != nil {
		e.logger.Error().Err(err).Msg("Suggestion generation failed")
		return SuggestionFields.SentinelRecord()
	}
	return ParseFields(raw, SuggestionFields)
}
