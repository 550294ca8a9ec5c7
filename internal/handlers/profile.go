package handlers

import (
	"net/http"

	"github.com/crucial707/timetable/internal/service"
)

// ProfileHandler serves the caller's own extended profile.
type ProfileHandler struct {
	Directory *service.Directory
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	p, err := h.Directory.GetProfile(r.Context(), username)
	if err != nil {
		writeServiceError(w, err, "Profile not fetched")
		return
	}

	JSONOK(w, http.StatusOK, "Profile fetched", p)
}

// PatchProfile applies a sparse profile update. Body: any of display_name, department, phone.
func (h *ProfileHandler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	patch, err := decodePatch(r)
	if err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	outcomes, err := h.Directory.PatchProfile(r.Context(), username, patch)
	if err != nil {
		writeServiceError(w, err, "Profile not updated")
		return
	}

	writeFieldOutcomes(w, "Profile updated", outcomes)
}
