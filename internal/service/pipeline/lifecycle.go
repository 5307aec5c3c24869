package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// Stage represents a step in the consult processing pipeline.
type Stage int

const (
	// StageIngested - Audio accepted and decoded, nothing processed yet.
	StageIngested Stage = iota
	// StageLanguageResolved - Effective language fixed (specified or detected).
	StageLanguageResolved
	// StageTranscribed - Raw transcription produced.
	StageTranscribed
	// StageTranslated - Canonical English text produced. Optional, Malayalam only.
	StageTranslated
	// StageExtracted - Record fields extracted from the canonical text.
	StageExtracted
	// StageSuggested - Advisory suggestions generated. Optional.
	StageSuggested
	// StageResponded - Response assembled. Terminal.
	StageResponded
	// StageFailed - Request aborted on a fatal stage error. Terminal.
	StageFailed
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageIngested:
		return "INGESTED"
	case StageLanguageResolved:
		return "LANGUAGE_RESOLVED"
	case StageTranscribed:
		return "TRANSCRIBED"
	case StageTranslated:
		return "TRANSLATED"
	case StageExtracted:
		return "EXTRACTED"
	case StageSuggested:
		return "SUGGESTED"
	case StageResponded:
		return "RESPONDED"
	case StageFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the stage is terminal (RESPONDED or FAILED).
func (s Stage) IsTerminal() bool {
	return s == StageResponded || s == StageFailed
}

// Errors for invalid stage transitions.
var (
	ErrRequestDone = errors.New("request already in a terminal stage")
	ErrStageOrder  = errors.New("stage transition must move forward")
)

// Lifecycle tracks the stage machine for a single consult request.
// Thread-safe for concurrent access.
//
// Stage transitions:
//
//	INGESTED → LANGUAGE_RESOLVED → TRANSCRIBED → [TRANSLATED] → EXTRACTED → [SUGGESTED] → RESPONDED
//	                                    │
//	                                    └── Fail() ──→ FAILED
//
// Rules:
//   - Advance and Skip only move forward; a terminal stage accepts nothing.
//   - Skipped optional stages and degraded stages are recorded by name.
//   - Fail is idempotent and wins over any later transition.
type Lifecycle struct {
	mu        sync.RWMutex
	consultId string
	stage     Stage
	skipped   []string
	degraded  []string
}

// NewLifecycle creates a lifecycle in INGESTED stage.
func NewLifecycle(consultId string) *Lifecycle {
	return &Lifecycle{
		consultId: consultId,
		stage:     StageIngested,
	}
}

// ConsultId returns the consult ID.
func (l *Lifecycle) ConsultId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.consultId
}

// Stage returns the current stage.
func (l *Lifecycle) Stage() Stage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stage
}

// Advance moves the request forward to next.
func (l *Lifecycle) Advance(next Stage) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stage.IsTerminal() {
		return ErrRequestDone
	}
	if next <= l.stage {
		return fmt.Errorf("%w: %v -> %v", ErrStageOrder, l.stage, next)
	}
	l.stage = next
	return nil
}

// Skip records an optional stage as skipped and moves past it.
func (l *Lifecycle) Skip(stage Stage) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stage.IsTerminal() {
		return ErrRequestDone
	}
	if stage <= l.stage {
		return fmt.Errorf("%w: %v -> %v", ErrStageOrder, l.stage, stage)
	}
	l.skipped = append(l.skipped, stage.String())
	l.stage = stage
	return nil
}

// MarkDegraded records a stage that ran but produced no usable output.
// The request keeps moving.
func (l *Lifecycle) MarkDegraded(stage Stage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.degraded = append(l.degraded, stage.String())
}

// Skipped returns the skipped stage names in order.
func (l *Lifecycle) Skipped() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.skipped...)
}

// Degraded returns the degraded stage names in order.
func (l *Lifecycle) Degraded() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.degraded...)
}

// Fail transitions the request to FAILED.
// Returns true if the request was failed, false if already in a terminal stage.
func (l *Lifecycle) Fail() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stage.IsTerminal() {
		return false
	}
	l.stage = StageFailed
	return true
}

// Done returns true if the request reached a terminal stage.
func (l *Lifecycle) Done() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stage.IsTerminal()
}
