// Package api exposes the workflow engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	"github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/engine"
)

// TurnRunner processes one user submission on a thread.
type TurnRunner interface {
	Run(ctx context.Context, threadID, text string) (contractx.TurnResult, error)
}

type Handler struct {
	engine TurnRunner
}

func NewHandler(eng TurnRunner) *Handler {
	return &Handler{engine: eng}
}

// Routes builds the service router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Post("/v1/threads/{threadID}/messages", h.postMessage)

	return r
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.engine.Run(r.Context(), threadID, req.Message)
	switch {
	case errors.Is(err, engine.ErrInvalidThread), errors.Is(err, engine.ErrInvalidMessage):
		Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("thread_id", threadID).Msg("turn failed")
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	JSON(w, http.StatusOK, result)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
