// Package models defines the data structures for consult events.
package models

// EventTypeConsultRecord is the eventType carried by ConsultCompleted events.
const EventTypeConsultRecord = "consult.record.extracted"

// ConsultCompleted represents a fully processed consult: the raw
// transcription, the canonical English text and the structured outputs.
type ConsultCompleted struct {
	EventType         string            `json:"eventType"`
	RequestID         string            `json:"requestId"`
	Timestamp         int64             `json:"timestamp"`
	DetectionMethod   string            `json:"detectionMethod"`
	EffectiveLanguage string            `json:"effectiveLanguage"`
	RawTranscription  string            `json:"rawTranscription"`
	ProcessedText     string            `json:"processedText"`
	EMR               map[string]string `json:"emr"`
	Suggestions       map[string]string `json:"suggestions"`
	Degraded          []string          `json:"degraded,omitempty"`
}
