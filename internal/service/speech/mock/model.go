// Package mock provides canned transcription models for running the service
// without model servers or cloud credentials. Each call cycles through a
// fixed set of realistic consult transcripts for its language.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech"
)

// DefaultEnglishTranscripts are sample English consult transcriptions.
var DefaultEnglishTranscripts = []string{
	"Patient complains of severe headache and dizziness for the past two days. Known history of hypertension. Currently taking amlodipine five milligrams once daily. No known drug allergies.",
	"The patient reports chest pain radiating to the left arm with sweating since this morning. Past history of type two diabetes mellitus. On metformin. Allergic to penicillin.",
	"Complaints of persistent dry cough and low grade fever for one week. No significant past medical history. Not on any regular medications. No allergies reported.",
}

// DefaultMalayalamTranscripts are sample Malayalam consult transcriptions.
var DefaultMalayalamTranscripts = []string{
	"രോഗിക്ക് രണ്ട് ദിവസമായി കടുത്ത തലവേദനയും തലകറക്കവും ഉണ്ട്. രക്തസമ്മർദ്ദത്തിന് മരുന്ന് കഴിക്കുന്നുണ്ട്.",
	"ഇന്ന് രാവിലെ മുതൽ നെഞ്ചുവേദനയും ശ്വാസതടസ്സവും അനുഭവപ്പെടുന്നു. പ്രമേഹരോഗിയാണ്.",
	"ഒരാഴ്ചയായി പനിയും ചുമയും ഉണ്ട്. മറ്റ് അസുഖങ്ങൾ ഒന്നും ഇല്ല.",
}

// Model implements speech.Model with canned transcripts and a simulated
// inference delay.
type Model struct {
	transcripts []string
	delay       time.Duration

	mu   sync.Mutex
	next int
}

// New creates a mock model for the given language.
func New(language speech.Language) *Model {
	transcripts := DefaultEnglishTranscripts
	if language == speech.LanguageMalayalam {
		transcripts = DefaultMalayalamTranscripts
	}
	return &Model{
		transcripts: transcripts,
		delay:       200 * time.Millisecond,
	}
}

// Transcribe returns the next canned transcript after a short simulated
// processing delay.
func (m *Model) Transcribe(ctx context.Context, sample audio.Sample) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(m.delay):
	}

	m.mu.Lock()
	text := m.transcripts[m.next%len(m.transcripts)]
	m.next++
	m.mu.Unlock()

	return text, nil
}

// Models returns a full mock registry mapping for both languages.
func Models() map[string]speech.Model {
	return map[string]speech.Model{
		speech.ModelKeyEnglish:   New(speech.LanguageEnglish),
		speech.ModelKeyMalayalam: New(speech.LanguageMalayalam),
	}
}
