package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crucial707/timetable/internal/service"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Directory *service.Directory
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	token, err := h.Directory.Register(r.Context(), input.Username, input.Password)
	if err != nil {
		writeServiceError(w, err, "User not registered")
		return
	}

	JSONOK(w, http.StatusCreated, "User registered", map[string]string{"token": token})
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	token, profile, err := h.Directory.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		writeServiceError(w, err, "Login failed")
		return
	}

	JSONOK(w, http.StatusOK, "Login successful", map[string]any{
		"token":   token,
		"profile": profile,
	})
}

// ==========================
// Deregister (password re-entered in body; username from the token)
// ==========================
func (h *AuthHandler) Deregister(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.Directory.Deregister(r.Context(), username, input.Password); err != nil {
		writeServiceError(w, err, "User not deleted")
		return
	}

	JSONOK(w, http.StatusOK, "User deleted", nil)
}
