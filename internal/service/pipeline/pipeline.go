// Package pipeline orchestrates a consult request end to end: language
// resolution, transcription, translation, record extraction and suggestion
// generation. Stages after transcription degrade in place instead of failing
// the request, so every accepted consult yields a complete response.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
	"github.com/Afnanksalal/meditech-backend/internal/service/emr"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech"
)

// Detection methods reported in the response.
const (
	DetectionSpecified = "specified"
	DetectionAutomatic = "automatic"
)

// Informational flags substituted for record or suggestion content when a
// stage did not produce any.
const (
	FlagRecordPriorIssues        = "EMR not generated due to issues in prior steps."
	FlagSuggestionsPriorIssues   = "Suggestions not generated due to issues in prior steps."
	FlagSuggestionsNotMeaningful = "Suggestions not generated due to non-informative EMR data."
)

// Validation errors surfaced before any stage runs.
var (
	ErrEmptySample         = errors.New("empty audio sample")
	ErrUnsupportedLanguage = errors.New("unsupported language code")
)

// TranscriptionError is the one fatal stage failure: without a transcript
// nothing downstream can run.
type TranscriptionError struct {
	ModelKey string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (%s): %v", e.ModelKey, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Transcriber runs a speech model on a sample.
type Transcriber interface {
	Run(ctx context.Context, key string, sample audio.Sample) (speech.Result, error)
}

// LanguageDetector resolves the spoken language of a sample.
type LanguageDetector interface {
	Detect(ctx context.Context, sample audio.Sample) speech.Language
}

// Translator turns Malayalam text into canonical English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Extractor produces the structured record and the suggestions built on it.
type Extractor interface {
	ExtractRecord(ctx context.Context, text string) emr.Record
	Suggest(ctx context.Context, rec emr.Record) emr.Record
}

// Request is one consult processing job.
type Request struct {
	ConsultId string
	Sample    audio.Sample
	// Language optionally pins the spoken language ("en" or "ml") and skips
	// detection. Empty means detect automatically.
	Language string
}

// Response is the complete outcome of a consult run. Every field is set even
// when stages degraded.
type Response struct {
	DetectionMethod   string
	EffectiveLanguage string
	RawTranscription  string
	// CanonicalText is the English text the record and suggestions are based
	// on. Empty when the transcription was empty or translation degraded.
	CanonicalText   string
	Record          emr.Record
	RecordFlag      string
	Suggestions     emr.Record
	SuggestionsFlag string
	Degraded        []string
}

// Pipeline wires the consult stages together.
type Pipeline struct {
	detector    LanguageDetector
	transcriber Transcriber
	translator  Translator
	extractor   Extractor
	logger      zerolog.Logger
}

// New creates a Pipeline from its stage collaborators.
func New(detector LanguageDetector, transcriber Transcriber, translator Translator, extractor Extractor) *Pipeline {
	return &Pipeline{
		detector:    detector,
		transcriber: transcriber,
		translator:  translator,
		extractor:   extractor,
		logger:      logging.WithComponent("pipeline"),
	}
}

// Process runs a consult request through every stage and assembles the
// response. Validation and transcription errors abort the request; anything
// later degrades and is reported in Response.Degraded.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Response, error) {
	if req.Sample.Empty() {
		return nil, ErrEmptySample
	}
	var explicit speech.Language
	if req.Language != "" {
		lang, err := speech.ParseLanguage(req.Language)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
		}
		explicit = lang
	}

	lc := NewLifecycle(req.ConsultId)
	logger := p.logger.With().Str("consultId", req.ConsultId).Logger()
	start := time.Now()
	metrics.DefaultMetrics.RecordConsultStart()

	resp, err := p.run(ctx, lc, logger, req.Sample, explicit)
	if err != nil {
		lc.Fail()
		metrics.DefaultMetrics.RecordConsultEnd(false, time.Since(start).Seconds())
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Consult failed")
		return nil, err
	}

	resp.Degraded = lc.Degraded()
	metrics.DefaultMetrics.RecordConsultEnd(true, time.Since(start).Seconds())
	logger.Info().
		Str("language", resp.EffectiveLanguage).
		Str("detectionMethod", resp.DetectionMethod).
		Strs("skipped", lc.Skipped()).
		Strs("degraded", resp.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("Consult completed")
	return resp, nil
}

func (p *Pipeline) run(ctx context.Context, lc *Lifecycle, logger zerolog.Logger, sample audio.Sample, explicit speech.Language) (*Response, error) {
	resp := &Response{}

	var lang speech.Language
	if explicit != "" {
		lang = explicit
		resp.DetectionMethod = DetectionSpecified
	} else {
		stageStart := time.Now()
		lang = p.detector.Detect(ctx, sample)
		metrics.DefaultMetrics.RecordStageDuration(stageLabel(StageLanguageResolved), time.Since(stageStart).Seconds())
		resp.DetectionMethod = DetectionAutomatic
	}
	resp.EffectiveLanguage = lang.String()
	metrics.DefaultMetrics.RecordDetection(resp.EffectiveLanguage, resp.DetectionMethod)
	if err := lc.Advance(StageLanguageResolved); err != nil {
		return nil, err
	}

	stageStart := time.Now()
	result, err := p.transcriber.Run(ctx, lang.ModelKey(), sample)
	if err != nil {
		return nil, &TranscriptionError{ModelKey: lang.ModelKey(), Err: err}
	}
	metrics.DefaultMetrics.RecordStageDuration(stageLabel(StageTranscribed), time.Since(stageStart).Seconds())
	resp.RawTranscription = result.Text
	if err := lc.Advance(StageTranscribed); err != nil {
		return nil, err
	}
	if resp.RawTranscription == "" {
		logger.Warn().Str("modelKey", result.ModelKey).Msg("Transcription came back empty")
		lc.MarkDegraded(StageTranscribed)
	}

	switch {
	case lang == speech.LanguageEnglish:
		// English transcription is already canonical.
		resp.CanonicalText = resp.RawTranscription
		if err := lc.Skip(StageTranslated); err != nil {
			return nil, err
		}
		metrics.DefaultMetrics.RecordStageSkipped(stageLabel(StageTranslated), "english_input")
	case resp.RawTranscription == "":
		if err := lc.Skip(StageTranslated); err != nil {
			return nil, err
		}
		metrics.DefaultMetrics.RecordStageSkipped(stageLabel(StageTranslated), "empty_transcription")
	default:
		stageStart = time.Now()
		text, err := p.translator.Translate(ctx, resp.RawTranscription)
		metrics.DefaultMetrics.RecordStageDuration(stageLabel(StageTranslated), time.Since(stageStart).Seconds())
		if err != nil || text == "" {
			logger.Warn().Err(err).Msg("Translation degraded, continuing without canonical text")
			lc.MarkDegraded(StageTranslated)
			text = ""
		}
		resp.CanonicalText = text
		if err := lc.Advance(StageTranslated); err != nil {
			return nil, err
		}
	}

	if resp.CanonicalText == "" {
		resp.Record = emr.RecordFields.SentinelRecord()
		resp.RecordFlag = FlagRecordPriorIssues
		resp.Suggestions = emr.SuggestionFields.SentinelRecord()
		resp.SuggestionsFlag = FlagSuggestionsPriorIssues
		if err := lc.Skip(StageExtracted); err != nil {
			return nil, err
		}
		if err := lc.Skip(StageSuggested); err != nil {
			return nil, err
		}
		metrics.DefaultMetrics.RecordStageSkipped(stageLabel(StageExtracted), "no_canonical_text")
		metrics.DefaultMetrics.RecordStageSkipped(stageLabel(StageSuggested), "no_canonical_text")
	} else {
		stageStart = time.Now()
		resp.Record = p.extractor.ExtractRecord(ctx, resp.CanonicalText)
		metrics.DefaultMetrics.RecordStageDuration(stageLabel(StageExtracted), time.Since(stageStart).Seconds())
		if err := lc.Advance(StageExtracted); err != nil {
			return nil, err
		}

		if emr.Meaningful(resp.Record) {
			stageStart = time.Now()
			resp.Suggestions = p.extractor.Suggest(ctx, resp.Record)
			metrics.DefaultMetrics.RecordStageDuration(stageLabel(StageSuggested), time.Since(stageStart).Seconds())
			if err := lc.Advance(StageSuggested); err != nil {
				return nil, err
			}
		} else {
			logger.Warn().Msg("Record not informative, skipping suggestions")
			resp.Suggestions = emr.SuggestionFields.SentinelRecord()
			resp.SuggestionsFlag = FlagSuggestionsNotMeaningful
			if err := lc.Skip(StageSuggested); err != nil {
				return nil, err
			}
			metrics.DefaultMetrics.RecordStageSkipped(stageLabel(StageSuggested), "not_meaningful")
		}
	}

	if err := lc.Advance(StageResponded); err != nil {
		return nil, err
	}
	return resp, nil
}

func stageLabel(s Stage) string {
	return strings.ToLower(s.String())
}
