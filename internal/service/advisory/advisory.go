// Package advisory generates standalone clinical guidance from
// patient-supplied context: a specialty referral for a predicted condition
// and a plain-text diet plan. Unlike the consult pipeline it takes typed
// form input rather than transcripts.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
)

// ErrNoInput is returned when every input field is blank.
var ErrNoInput = errors.New("no input provided")

// ErrEmptyReply is returned when the model answers with no content.
var ErrEmptyReply = errors.New("empty model reply")

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SpecialtyInput carries the patient context for a referral suggestion.
// At least one field must be non-blank.
type SpecialtyInput struct {
	Prediction    string
	Symptoms      string
	HealthRecords string
}

// Empty reports whether no field carries content.
func (in SpecialtyInput) Empty() bool {
	return in.Prediction == "" && in.Symptoms == "" && in.HealthRecords == ""
}

// DietInput carries the preferences and goals for a diet plan.
// At least one field must be non-blank.
type DietInput struct {
	Preferences string
	Goals       string
}

// Empty reports whether no field carries content.
func (in DietInput) Empty() bool {
	return in.Preferences == "" && in.Goals == ""
}

// Advisor asks the inference model for referral and diet suggestions.
type Advisor struct {
	gen    Generator
	logger zerolog.Logger
}

// NewAdvisor creates an Advisor on top of a Generator.
func NewAdvisor(gen Generator) *Advisor {
	return &Advisor{
		gen:    gen,
		logger: logging.WithComponent("advisory"),
	}
}

const specialtyPromptTemplate = `Based on the following patient information, recommend the single most appropriate medical specialty to consult.
Return *only* the name of the medical specialty (e.g., Cardiologist, Neurologist, Endocrinologist, General Practitioner).
Do not include any explanations, introductory phrases, or extra text.

Patient Information:
- Disease Prediction Result: %s
- Reported Symptoms: %s
- Relevant Health Records: %s

Recommended Specialty:`

const dietPromptTemplate = `Suggest a brief, simple diet plan based on the following user information.
Provide the plan in plain English text only. Do not use bullet points, bolding, italics, or any special formatting symbols.
Keep the plan concise and easy to follow.

User Information:
- Dietary Preferences/Restrictions: %s
- Health Goals: %s

Suggested Diet Plan:`

// SuggestSpecialty recommends a medical specialty for the given patient
// context. The reply is reduced to the bare specialty name: any echoed
// label up to the last colon is dropped, as are periods.
func (a *Advisor) SuggestSpecialty(ctx context.Context, in SpecialtyInput) (string, error) {
	in.Prediction = strings.TrimSpace(in.Prediction)
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	in.HealthRecords = strings.TrimSpace(in.HealthRecords)
	if in.Empty() {
		return "", ErrNoInput
	}

	prompt := fmt.Sprintf(specialtyPromptTemplate,
		orDefault(in.Prediction, "Not provided"),
		orDefault(in.Symptoms, "Not provided"),
		orDefault(in.HealthRecords, "Not provided"))

	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error().Err(err).Msg("Specialty suggestion failed")
		return "", fmt.Errorf("suggest specialty: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("suggest specialty: %w", ErrEmptyReply)
	}

	specialty := strings.TrimSpace(afterLastColon(raw))
	specialty = strings.TrimSpace(strings.ReplaceAll(specialty, ".", ""))
	a.logger.Debug().Str("specialty", specialty).Msg("Specialty suggestion generated")
	return specialty, nil
}

// SuggestDietPlan produces a short plain-text diet plan. Only an echoed
// label up to the last colon is stripped; the plan text itself is kept
// as the model wrote it.
func (a *Advisor) SuggestDietPlan(ctx context.Context, in DietInput) (string, error) {
	in.Preferences = strings.TrimSpace(in.Preferences)
	in.Goals = strings.TrimSpace(in.Goals)
	if in.Empty() {
		return "", ErrNoInput
	}

	prompt := fmt.Sprintf(dietPromptTemplate,
		orDefault(in.Preferences, "None specified"),
		orDefault(in.Goals, "None specified"))

	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error().Err(err).Msg("Diet plan suggestion failed")
		return "", fmt.Errorf("suggest diet plan: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("suggest diet plan: %w", ErrEmptyReply)
	}

	plan := strings.TrimSpace(afterLastColon(raw))
	a.logger.Debug().Int("chars", len(plan)).Msg("Diet plan generated")
	return plan, nil
}

func afterLastColon(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
