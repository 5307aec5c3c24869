package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/service/emr"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech"
)

type fakeDetector struct {
	lang  speech.Language
	calls int
}

func (d *fakeDetector) Detect(context.Context, audio.Sample) speech.Language {
	d.calls++
	return d.lang
}

type fakeTranscriber struct {
	text string
	err  error
	keys []string
}

func (f *fakeTranscriber) Run(_ context.Context, key string, _ audio.Sample) (speech.Result, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return speech.Result{}, f.err
	}
	return speech.Result{Text: f.text, ModelKey: key}, nil
}

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeExtractor struct {
	record       emr.Record
	suggestions  emr.Record
	extractCalls int
	suggestCalls int
	extractInput string
}

func (f *fakeExtractor) ExtractRecord(_ context.Context, text string) emr.Record {
	f.extractCalls++
	f.extractInput = text
	if f.record == nil {
		return emr.RecordFields.SentinelRecord()
	}
	return f.record
}

func (f *fakeExtractor) Suggest(context.Context, emr.Record) emr.Record {
	f.suggestCalls++
	if f.suggestions == nil {
		return emr.SuggestionFields.SentinelRecord()
	}
	return f.suggestions
}

func testSample() audio.Sample {
	return audio.Sample{Samples: make([]float32, 1600), Rate: 16000}
}

func informativeRecord() emr.Record {
	rec := emr.RecordFields.SentinelRecord()
	rec["Presenting Complaint"] = "fever and cough for two days"
	return rec
}

func TestProcess_EnglishSpecified(t *testing.T) {
	detector := &fakeDetector{lang: speech.LanguageMalayalam}
	transcriber := &fakeTranscriber{text: "patient reports fever and cough"}
	translator := &fakeTranslator{}
	extractor := &fakeExtractor{record: informativeRecord()}
	p := New(detector, transcriber, translator, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if resp.DetectionMethod != DetectionSpecified {
		t.Errorf("expected specified, got %q", resp.DetectionMethod)
	}
	if resp.EffectiveLanguage != "en" {
		t.Errorf("expected en, got %q", resp.EffectiveLanguage)
	}
	if detector.calls != 0 {
		t.Errorf("expected detection skipped, got %d calls", detector.calls)
	}
	if len(transcriber.keys) != 1 || transcriber.keys[0] != speech.ModelKeyEnglish {
		t.Errorf("expected one run with %q, got %v", speech.ModelKeyEnglish, transcriber.keys)
	}
	if translator.calls != 0 {
		t.Errorf("expected no translation for English, got %d calls", translator.calls)
	}
	if resp.CanonicalText != resp.RawTranscription {
		t.Errorf("expected canonical text to equal raw transcription, got %q vs %q", resp.CanonicalText, resp.RawTranscription)
	}
	if resp.RecordFlag != "" || resp.SuggestionsFlag != "" {
		t.Errorf("expected no flags, got %q / %q", resp.RecordFlag, resp.SuggestionsFlag)
	}
	if extractor.suggestCalls != 1 {
		t.Errorf("expected suggestions generated, got %d calls", extractor.suggestCalls)
	}
	if len(resp.Degraded) != 0 {
		t.Errorf("expected no degraded stages, got %v", resp.Degraded)
	}
}

func TestProcess_AutomaticDetection(t *testing.T) {
	detector := &fakeDetector{lang: speech.LanguageMalayalam}
	transcriber := &fakeTranscriber{text: "രോഗിക്ക് പനി"}
	translator := &fakeTranslator{out: "The patient has a fever"}
	extractor := &fakeExtractor{record: informativeRecord()}
	p := New(detector, transcriber, translator, extractor)

	resp, err := p.Process(context.Background(), Request{ConsultId: "consult-1", Sample: testSample()})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if detector.calls != 1 {
		t.Errorf("expected 1 detection call, got %d", detector.calls)
	}
	if resp.DetectionMethod != DetectionAutomatic {
		t.Errorf("expected automatic, got %q", resp.DetectionMethod)
	}
	if resp.EffectiveLanguage != "ml" {
		t.Errorf("expected ml, got %q", resp.EffectiveLanguage)
	}
	if len(transcriber.keys) != 1 || transcriber.keys[0] != speech.ModelKeyMalayalam {
		t.Errorf("expected one run with %q, got %v", speech.ModelKeyMalayalam, transcriber.keys)
	}
}

func TestProcess_MalayalamTranslated(t *testing.T) {
	transcriber := &fakeTranscriber{text: "രോഗിക്ക് പനിയും ചുമയും ഉണ്ട്"}
	translator := &fakeTranslator{out: "The patient has fever and cough"}
	extractor := &fakeExtractor{record: informativeRecord()}
	p := New(&fakeDetector{}, transcriber, translator, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "ml",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if translator.calls != 1 {
		t.Errorf("expected 1 translation call, got %d", translator.calls)
	}
	if resp.RawTranscription != "രോഗിക്ക് പനിയും ചുമയും ഉണ്ട്" {
		t.Errorf("expected raw Malayalam transcription, got %q", resp.RawTranscription)
	}
	if resp.CanonicalText != "The patient has fever and cough" {
		t.Errorf("expected translated canonical text, got %q", resp.CanonicalText)
	}
	if extractor.extractInput != "The patient has fever and cough" {
		t.Errorf("expected extraction on canonical text, got %q", extractor.extractInput)
	}
	for _, k := range emr.RecordFields.Keys {
		if _, ok := resp.Record[k]; !ok {
			t.Errorf("expected record key %q present", k)
		}
	}
}

func TestProcess_TranslationFailureDegrades(t *testing.T) {
	transcriber := &fakeTranscriber{text: "രോഗിക്ക് പനി"}
	translator := &fakeTranslator{err: errors.New("model unavailable")}
	extractor := &fakeExtractor{}
	p := New(&fakeDetector{}, transcriber, translator, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "ml",
	})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}

	if resp.CanonicalText != "" {
		t.Errorf("expected empty canonical text, got %q", resp.CanonicalText)
	}
	if resp.RawTranscription == "" {
		t.Error("expected raw transcription preserved")
	}
	if resp.RecordFlag != FlagRecordPriorIssues {
		t.Errorf("expected record flag %q, got %q", FlagRecordPriorIssues, resp.RecordFlag)
	}
	if resp.SuggestionsFlag != FlagSuggestionsPriorIssues {
		t.Errorf("expected suggestions flag %q, got %q", FlagSuggestionsPriorIssues, resp.SuggestionsFlag)
	}
	if extractor.extractCalls != 0 || extractor.suggestCalls != 0 {
		t.Errorf("expected no extraction calls, got %d/%d", extractor.extractCalls, extractor.suggestCalls)
	}
	for _, k := range emr.RecordFields.Keys {
		if resp.Record[k] != emr.RecordFields.Sentinel {
			t.Errorf("expected sentinel for %q, got %q", k, resp.Record[k])
		}
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != "TRANSLATED" {
		t.Errorf("expected [TRANSLATED] degraded, got %v", resp.Degraded)
	}
}

func TestProcess_EmptyTranslationDegrades(t *testing.T) {
	transcriber := &fakeTranscriber{text: "രോഗിക്ക് പനി"}
	translator := &fakeTranslator{out: ""}
	extractor := &fakeExtractor{}
	p := New(&fakeDetector{}, transcriber, translator, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "ml",
	})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}

	if resp.RecordFlag != FlagRecordPriorIssues {
		t.Errorf("expected record flag, got %q", resp.RecordFlag)
	}
	if extractor.extractCalls != 0 {
		t.Errorf("expected no extraction calls, got %d", extractor.extractCalls)
	}
}

func TestProcess_EmptyTranscriptionDegrades(t *testing.T) {
	transcriber := &fakeTranscriber{text: ""}
	translator := &fakeTranslator{}
	extractor := &fakeExtractor{}
	p := New(&fakeDetector{}, transcriber, translator, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}

	if resp.RawTranscription != "" || resp.CanonicalText != "" {
		t.Errorf("expected empty texts, got %q / %q", resp.RawTranscription, resp.CanonicalText)
	}
	if resp.RecordFlag != FlagRecordPriorIssues {
		t.Errorf("expected record flag, got %q", resp.RecordFlag)
	}
	if resp.SuggestionsFlag != FlagSuggestionsPriorIssues {
		t.Errorf("expected suggestions flag, got %q", resp.SuggestionsFlag)
	}
	if translator.calls != 0 || extractor.extractCalls != 0 || extractor.suggestCalls != 0 {
		t.Error("expected no downstream calls on empty transcription")
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != "TRANSCRIBED" {
		t.Errorf("expected [TRANSCRIBED] degraded, got %v", resp.Degraded)
	}
}

func TestProcess_NonMeaningfulRecordSkipsSuggestions(t *testing.T) {
	transcriber := &fakeTranscriber{text: "background noise only"}
	extractor := &fakeExtractor{record: emr.RecordFields.SentinelRecord()}
	p := New(&fakeDetector{}, transcriber, &fakeTranslator{}, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if extractor.extractCalls != 1 {
		t.Errorf("expected 1 extraction call, got %d", extractor.extractCalls)
	}
	if extractor.suggestCalls != 0 {
		t.Errorf("expected no suggestion call, got %d", extractor.suggestCalls)
	}
	if resp.RecordFlag != "" {
		t.Errorf("expected no record flag, got %q", resp.RecordFlag)
	}
	if resp.SuggestionsFlag != FlagSuggestionsNotMeaningful {
		t.Errorf("expected flag %q, got %q", FlagSuggestionsNotMeaningful, resp.SuggestionsFlag)
	}
	for _, k := range emr.SuggestionFields.Keys {
		if resp.Suggestions[k] != emr.SuggestionFields.Sentinel {
			t.Errorf("expected sentinel for %q, got %q", k, resp.Suggestions[k])
		}
	}
}

func TestProcess_TranscriptionFailureIsFatal(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("model crashed")}
	extractor := &fakeExtractor{}
	p := New(&fakeDetector{}, transcriber, &fakeTranslator{}, extractor)

	resp, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "en",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}

	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptionError, got %T", err)
	}
	if terr.ModelKey != speech.ModelKeyEnglish {
		t.Errorf("expected model key %q, got %q", speech.ModelKeyEnglish, terr.ModelKey)
	}
	if extractor.extractCalls != 0 || extractor.suggestCalls != 0 {
		t.Error("expected no extraction after fatal transcription failure")
	}
}

func TestProcess_MissingModelIsFatal(t *testing.T) {
	registry := speech.NewRegistry(nil)
	runner := speech.NewRunner(registry, 1)
	p := New(&fakeDetector{}, runner, &fakeTranslator{}, &fakeExtractor{})

	_, err := p.Process(context.Background(), Request{
		ConsultId: "consult-1",
		Sample:    testSample(),
		Language:  "en",
	})
	if !errors.Is(err, speech.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound through TranscriptionError, got %v", err)
	}
}

func TestProcess_EmptySampleRejected(t *testing.T) {
	p := New(&fakeDetector{}, &fakeTranscriber{}, &fakeTranslator{}, &fakeExtractor{})

	_, err := p.Process(context.Background(), Request{ConsultId: "consult-1"})
	if !errors.Is(err, ErrEmptySample) {
		t.Errorf("expected ErrEmptySample, got %v", err)
	}
}

func TestProcess_UnsupportedLanguageRejected(t *testing.T) {
	detector := &fakeDetector{}
	transcriber := &fakeTranscriber{}
	p := New(detector, transcriber, &fakeTranslator{}, &fakeExtractor{})

	for _, code := range []string{"fr", "EN", "malayalam"} {
		_, err := p.Process(context.Background(), Request{
			ConsultId: "consult-1",
			Sample:    testSample(),
			Language:  code,
		})
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("code %q: expected ErrUnsupportedLanguage, got %v", code, err)
		}
	}
	if detector.calls != 0 || len(transcriber.keys) != 0 {
		t.Error("expected rejection before any stage ran")
	}
}
