package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"geoquiz/internal/repository"
	"geoquiz/internal/transport/rest/middleware"
)

// ProfileHandler reads and writes the durable display name.
type ProfileHandler struct {
	profileRepo repository.ProfileRepo
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileRepo repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

// Get handles GET /v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	profile, err := h.profileRepo.Get(r.Context(), accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	displayName := ""
	if profile != nil {
		displayName = profile.DisplayName
	}
	writeJSON(w, http.StatusOK, map[string]string{"displayName": displayName})
}

// UpdateRequest sets the display name.
type UpdateRequest struct {
	DisplayName string `json:"displayName"`
}

// Update handles PUT /v1/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	profile, err := h.profileRepo.Upsert(r.Context(), accountID, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"displayName": profile.DisplayName})
}
