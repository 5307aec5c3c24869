package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Afnanksalal/meditech-backend/internal/service/advisory"
)

const msgNoJSONBody = "No JSON data received in the request body."

type doctorSuggestionRequest struct {
	Prediction    string `json:"prediction"`
	Symptoms      string `json:"symptoms"`
	HealthRecords string `json:"health_records"`
}

type dietPlanRequest struct {
	Preferences string `json:"preferences"`
	Goals       string `json:"goals"`
}

// handleDoctorSuggestion recommends a medical specialty from whatever
// context the caller can offer.
func (a *api) handleDoctorSuggestion(w http.ResponseWriter, r *http.Request) {
	var req doctorSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoJSONBody)
		return
	}

	suggestion, err := a.deps.Advisor.SuggestSpecialty(r.Context(), advisory.SpecialtyInput{
		Prediction:    req.Prediction,
		Symptoms:      req.Symptoms,
		HealthRecords: req.HealthRecords,
	})
	if err != nil {
		if errors.Is(err, advisory.ErrNoInput) {
			writeError(w, http.StatusBadRequest, "Please provide prediction result, symptoms, or health records.")
			return
		}
		a.logger.Error().Err(err).Msg("Doctor suggestion generation failed")
		writeError(w, http.StatusInternalServerError, "Could not generate doctor suggestion at this time.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}

// handleDietPlan generates a short plain-text diet plan.
func (a *api) handleDietPlan(w http.ResponseWriter, r *http.Request) {
	var req dietPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoJSONBody)
		return
	}

	plan, err := a.deps.Advisor.SuggestDietPlan(r.Context(), advisory.DietInput{
		Preferences: req.Preferences,
		Goals:       req.Goals,
	})
	if err != nil {
		if errors.Is(err, advisory.ErrNoInput) {
			writeError(w, http.StatusBadRequest, "Please provide dietary preferences or health goals.")
			return
		}
		a.logger.Error().Err(err).Msg("Diet plan generation failed")
		writeError(w, http.StatusInternalServerError, "Could not generate diet plan suggestion at this time.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"diet_plan": plan})
}
