package events

import (
	"context"
	"testing"

	"github.com/Afnanksalal/meditech-backend/internal/models"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"nil brokers", &Config{Enabled: true, Brokers: nil}},
		{"nil config", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:   false,
		Brokers:   []string{"localhost:9092"},
		Topic:     "test.consults",
		Principal: "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topic != "test.consults" {
		t.Errorf("expected topic 'test.consults', got %s", p.topic)
	}
}

func TestPublisher_PublishConsult_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := models.ConsultCompleted{
		EventType:         models.EventTypeConsultRecord,
		RequestID:         "req-123",
		Timestamp:         1700000000000,
		DetectionMethod:   "automatic",
		EffectiveLanguage: "en",
		RawTranscription:  "patient reports fever",
	}
	err := p.PublishConsult(context.Background(), "req-123", event)

	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishConsult_RejectsInvalidEvent(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Missing request ID fails validation before any write.
	event := models.ConsultCompleted{
		EventType: models.EventTypeConsultRecord,
		Timestamp: 1700000000000,
	}
	if err := p.PublishConsult(context.Background(), "req-123", event); err == nil {
		t.Error("expected error for event without request id")
	}

	if err := p.PublishConsult(context.Background(), "req-123", struct{ X int }{1}); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestPublisher_Close_NoWriter(t *testing.T) {
	p := New(&Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}

func TestPublisher_Close_NilWriter(t *testing.T) {
	p := &Publisher{writer: nil}

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing publisher with nil writer, got %v", err)
	}
}
