package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Afnanksalal/meditech-backend/internal/rooms"
)

// handleCreateRoom allocates a fresh room code.
func (a *api) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	code, err := a.deps.Rooms.Create(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("Room creation failed")
		writeError(w, http.StatusInternalServerError, "Failed to create room, please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": code})
}

// handleCheckRoom reports whether a room code has been allocated.
func (a *api) handleCheckRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if len(roomID) != rooms.CodeLength {
		writeError(w, http.StatusBadRequest, "Invalid room ID format.")
		return
	}

	exists, err := a.deps.Rooms.Exists(r.Context(), roomID)
	if err != nil {
		// Lookup failures read as absent rather than failing the check.
		a.logger.Error().Err(err).Str("roomId", roomID).Msg("Room lookup failed")
		exists = false
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
