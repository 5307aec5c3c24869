package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// errorEnvelope is the body of every non-2xx response.
type errorEnvelope struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// genericServerError is the description used when an internal failure has no
// client-safe message of its own.
const genericServerError = "An internal server error occurred."

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes the error envelope for the given status and description.
func writeError(w http.ResponseWriter, status int, description string) {
	writeJSON(w, status, errorEnvelope{
		Code:  status,
		Name:  http.StatusText(status),
		Error: description,
	})
}
