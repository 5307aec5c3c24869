package emr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func TestExtractRecord_ParsesReply(t *testing.T) {
	gen := &fakeGenerator{reply: "Presenting Complaint: dizziness\nAllergies: latex"}
	ext := NewExtractor(gen)

	rec := ext.ExtractRecord(context.Background(), "patient reports dizziness, allergic to latex")

	if rec["Presenting Complaint"] != "dizziness" {
		t.Errorf("expected 'dizziness', got %q", rec["Presenting Complaint"])
	}
	if rec["Allergies"] != "latex" {
		t.Errorf("expected 'latex', got %q", rec["Allergies"])
	}
	if rec["Past Medical History"] != "Not mentioned" {
		t.Errorf("expected sentinel, got %q", rec["Past Medical History"])
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 remote call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "patient reports dizziness, allergic to latex") {
		t.Error("expected prompt to carry the source text")
	}
	for _, k := range RecordFields.Keys {
		if !strings.Contains(prompt, "- "+k+":") {
			t.Errorf("expected prompt to list field %q", k)
		}
	}
	if !strings.Contains(prompt, `"Not mentioned"`) {
		t.Error("expected prompt to state the sentinel")
	}
}

func TestExtractRecord_RemoteFailure(t *testing.T) {
	ext := NewExtractor(&fakeGenerator{err: errors.New("model unavailable")})

	rec := ext.ExtractRecord(context.Background(), "some transcript")

	for _, k := range RecordFields.Keys {
		if rec[k] != "Not mentioned" {
			t.Errorf("expected sentinel for %q, got %q", k, rec[k])
		}
	}
}

func TestExtractRecord_EmptyInput_NoRemoteCall(t *testing.T) {
	gen := &fakeGenerator{reply: "should not be used"}
	ext := NewExtractor(gen)

	rec := ext.ExtractRecord(context.Background(), "   \n\t")

	if len(gen.prompts) != 0 {
		t.Errorf("expected no remote call, got %d", len(gen.prompts))
	}
	for _, k := range RecordFields.Keys {
		if rec[k] != "Not mentioned" {
			t.Errorf("expected sentinel for %q, got %q", k, rec[k])
		}
	}
}

func TestSuggest_ParsesReply(t *testing.T) {
	gen := &fakeGenerator{reply: "Differential Diagnosis: tension headache\nFurther Investigations: CT scan if symptoms persist"}
	ext := NewExtractor(gen)

	rec := Record{
		"Presenting Complaint": "recurring headaches",
		"Allergies":            "Not mentioned",
	}
	sug := ext.Suggest(context.Background(), rec)

	if sug["Differential Diagnosis"] != "tension headache" {
		t.Errorf("expected parsed suggestion, got %q", sug["Differential Diagnosis"])
	}
	if sug["Follow-up Recommendations"] != "Not specified" {
		t.Errorf("expected sentinel, got %q", sug["Follow-up Recommendations"])
	}
}

func TestSuggest_SummaryOmitsPlaceholders(t *testing.T) {
	gen := &fakeGenerator{reply: ""}
	ext := NewExtractor(gen)

	rec := Record{
		"Presenting Complaint":          "chest pain on exertion",
		"History of Presenting Illness": "None",
		"Past Medical History":          "Not mentioned",
		"Current Medications":           "aspirin 75mg",
		"Allergies":                     "n/a",
	}
	ext.Suggest(context.Background(), rec)

	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 remote call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "- Presenting Complaint: chest pain on exertion") {
		t.Error("expected informative entry in summary")
	}
	if !strings.Contains(prompt, "- Current Medications: aspirin 75mg") {
		t.Error("expected informative entry in summary")
	}
	if strings.Contains(prompt, "Past Medical History") {
		t.Error("expected placeholder entry left out of summary")
	}
	if strings.Contains(prompt, "- Allergies:") {
		t.Error("expected placeholder entry left out of summary")
	}
}

func TestSuggest_AllPlaceholders_NoRemoteCall(t *testing.T) {
	gen := &fakeGenerator{reply: "should not be used"}
	ext := NewExtractor(gen)

	sug := ext.Suggest(context.Background(), RecordFields.SentinelRecord())

	if len(gen.prompts) != 0 {
		t.Errorf("expected no remote call, got %d", len(gen.prompts))
	}
	for _, k := range SuggestionFields.Keys {
		if sug[k] != "Not specified" {
			t.Errorf("expected sentinel for %q, got %q", k, sug[k])
		}
	}
}

func TestSuggest_RemoteFailure(t *testing.T) {
	ext := NewExtractor(&fakeGenerator{err: errors.New("model unavailable")})

	sug := ext.Suggest(context.Background(), Record{"Presenting Complaint": "fever"})

	for _, k := range SuggestionFields.Keys {
		if sug[k] != "Not specified" {
			t.Errorf("expected sentinel for %q, got %q", k, sug[k])
		}
	}
}
