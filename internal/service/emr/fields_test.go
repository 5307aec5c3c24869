package emr

import (
	"testing"
)

func TestParseFields_WellFormedReply(t *testing.T) {
	raw := `Presenting Complaint: severe headache and fever
History of Presenting Illness: symptoms started three days ago
Past Medical History: hypertension
Current Medications: amlodipine 5mg
Allergies: penicillin`

	rec := ParseFields(raw, RecordFields)

	expected := map[string]string{
		"Presenting Complaint":          "severe headache and fever",
		"History of Presenting Illness": "symptoms started three days ago",
		"Past Medical History":          "hypertension",
		"Current Medications":           "amlodipine 5mg",
		"Allergies":                     "penicillin",
	}
	for k, v := range expected {
		if rec[k] != v {
			t.Errorf("expected %q for %q, got %q", v, k, rec[k])
		}
	}
}

func TestParseFields_CaseInsensitiveKeys(t *testing.T) {
	rec := ParseFields("PRESENTING COMPLAINT: chest pain\nallergies: none known", RecordFields)

	if rec["Presenting Complaint"] != "chest pain" {
		t.Errorf("expected canonical key match, got %q", rec["Presenting Complaint"])
	}
	if rec["Allergies"] != "none known" {
		t.Errorf("expected canonical key match, got %q", rec["Allergies"])
	}
}

func TestParseFields_SplitsAtFirstColon(t *testing.T) {
	rec := ParseFields("Current Medications: insulin: 10 units at night", RecordFields)

	if rec["Current Medications"] != "insulin: 10 units at night" {
		t.Errorf("expected value to keep later colons, got %q", rec["Current Medications"])
	}
}

func TestParseFields_FirstOccurrenceWins(t *testing.T) {
	rec := ParseFields("Allergies: penicillin\nAllergies: sulfa drugs", RecordFields)

	if rec["Allergies"] != "penicillin" {
		t.Errorf("expected first occurrence, got %q", rec["Allergies"])
	}
}

func TestParseFields_FillsMissingWithSentinel(t *testing.T) {
	rec := ParseFields("Presenting Complaint: back pain", RecordFields)

	if rec["Presenting Complaint"] != "back pain" {
		t.Errorf("expected extracted value, got %q", rec["Presenting Complaint"])
	}
	for _, k := range []string{"History of Presenting Illness", "Past Medical History", "Current Medications", "Allergies"} {
		if rec[k] != "Not mentioned" {
			t.Errorf("expected sentinel for %q, got %q", k, rec[k])
		}
	}
}

func TestParseFields_DropsNoise(t *testing.T) {
	raw := `Here is the extracted data:

Presenting Complaint: cough
Blood Pressure: 120/80
just a narrative line without structure
`
	rec := ParseFields(raw, RecordFields)

	if rec["Presenting Complaint"] != "cough" {
		t.Errorf("expected extracted value, got %q", rec["Presenting Complaint"])
	}
	if _, ok := rec["Blood Pressure"]; ok {
		t.Error("expected unknown key to be dropped")
	}
	if len(rec) != len(RecordFields.Keys) {
		t.Errorf("expected exactly %d keys, got %d", len(RecordFields.Keys), len(rec))
	}
}

func TestParseFields_EmptyInput(t *testing.T) {
	rec := ParseFields("", RecordFields)

	if len(rec) != len(RecordFields.Keys) {
		t.Fatalf("expected %d keys, got %d", len(RecordFields.Keys), len(rec))
	}
	for k, v := range rec {
		if v != RecordFields.Sentinel {
			t.Errorf("expected sentinel for %q, got %q", k, v)
		}
	}
}

func TestParseFields_SuggestionSentinel(t *testing.T) {
	rec := ParseFields("Differential Diagnosis: migraine", SuggestionFields)

	if rec["Differential Diagnosis"] != "migraine" {
		t.Errorf("expected extracted value, got %q", rec["Differential Diagnosis"])
	}
	if rec["Specialist Referrals (if applicable)"] != "Not specified" {
		t.Errorf("expected suggestion sentinel, got %q", rec["Specialist Referrals (if applicable)"])
	}
}

func TestMeaningful(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		expected bool
	}{
		{"all sentinel", RecordFields.SentinelRecord(), false},
		{"one informative value", Record{"Presenting Complaint": "fever", "Allergies": "Not mentioned"}, true},
		{"placeholder variants", Record{"a": "None", "b": "N/A", "c": "", "d": "NOT MENTIONED"}, false},
		{"empty record", Record{}, false},
		{"informative among placeholders", Record{"a": "none", "b": "aspirin daily"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Meaningful(tt.rec); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFieldSet_SentinelRecord(t *testing.T) {
	rec := SuggestionFields.SentinelRecord()

	if len(rec) != len(SuggestionFields.Keys) {
		t.Fatalf("expected %d keys, got %d", len(SuggestionFields.Keys), len(rec))
	}
	for _, k := range SuggestionFields.Keys {
		if rec[k] != "Not specified" {
			t.Errorf("expected sentinel for %q, got %q", k, rec[k])
		}
	}
}
