// Package schema validates outbound events before they are published.
package schema

import (
	"errors"
	"fmt"

	"github.com/Afnanksalal/meditech-backend/internal/models"
)

// Validator checks events against the invariants consumers rely on.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate rejects events that would break downstream consumers. Unknown
// event types are rejected outright.
func (v *Validator) Validate(event any) error {
	switch e := event.(type) {
	case models.ConsultCompleted:
		return validateConsult(e)
	case *models.ConsultCompleted:
		return validateConsult(*e)
	}
	return fmt.Errorf("unknown event type %T", event)
}

func validateConsult(e models.ConsultCompleted) error {
	if e.EventType != models.EventTypeConsultRecord {
		return fmt.Errorf("unexpected eventType %q", e.EventType)
	}
	if e.RequestID == "" {
		return errors.New("requestId is required")
	}
	if e.Timestamp <= 0 {
		return errors.New("timestamp is required")
	}
	return nil
}
