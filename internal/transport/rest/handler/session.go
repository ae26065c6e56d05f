package handler

import (
	"net/http"

	"geoquiz/internal/service"
)

// SessionHandler opens anonymous sessions.
type SessionHandler struct {
	authSvc *service.AuthService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{authSvc: authSvc}
}

// Open handles POST /v1/session
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authSvc.OpenSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
