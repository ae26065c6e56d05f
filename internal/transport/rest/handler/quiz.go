package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"geoquiz/internal/model"
	"geoquiz/internal/service"
	"geoquiz/internal/transport/rest/middleware"
)

// QuizHandler exposes the round state machine over HTTP.
type QuizHandler struct {
	roundSvc *service.RoundService
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(roundSvc *service.RoundService) *QuizHandler {
	return &QuizHandler{roundSvc: roundSvc}
}

// StartRequest optionally pins the category; empty plays the rotation.
type StartRequest struct {
	Category string `json:"category,omitempty"`
}

// Start handles POST /v1/quiz/start
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req StartRequest
	if r.Body != nil {
		// An empty body is a valid "play the rotation" request.
		json.NewDecoder(r.Body).Decode(&req)
	}

	var category model.Category
	if req.Category != "" {
		c, ok := model.ParseCategory(req.Category)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		category = c
	}

	view, err := h.roundSvc.Start(r.Context(), sessionID, category)
	if err != nil {
		if errors.Is(err, service.ErrRoundSuperseded) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if errors.Is(err, service.ErrDataFetch) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// State handles GET /v1/quiz
func (h *QuizHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	view, err := h.roundSvc.State(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNoRound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GotoRequest targets a question by zero-based index.
type GotoRequest struct {
	Index int `json:"index"`
}

// Goto handles POST /v1/quiz/goto
func (h *QuizHandler) Goto(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.roundSvc.Navigate(r.Context(), sessionID, req.Index)
	h.respond(w, view, err)
}

// Next handles POST /v1/quiz/next
func (h *QuizHandler) Next(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	view, err := h.roundSvc.Next(r.Context(), sessionID)
	h.respond(w, view, err)
}

// Prev handles POST /v1/quiz/prev
func (h *QuizHandler) Prev(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	view, err := h.roundSvc.Prev(r.Context(), sessionID)
	h.respond(w, view, err)
}

// AnswerRequest carries the picked option.
type AnswerRequest struct {
	Option string `json:"option"`
}

// Answer handles POST /v1/quiz/answer
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.roundSvc.SubmitAnswer(r.Context(), sessionID, req.Option)
	h.respond(w, view, err)
}

// Score handles GET /v1/quiz/score
func (h *QuizHandler) Score(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	score, err := h.roundSvc.Score(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (h *QuizHandler) respond(w http.ResponseWriter, view *service.RoundView, err error) {
	if err != nil {
		if errors.Is(err, service.ErrNoRound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}
