// Package meta serves the service banner, health, and configuration
// endpoints.
package meta

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Engineernoob/ai-interview-buddy/internal/service/session"
	"github.com/Engineernoob/ai-interview-buddy/pkg/utils"
)

// Info captures the non-secret runtime facts the endpoints expose.
type Info struct {
	Version         string
	WhisperModel    string
	LLMModel        string
	UseLocalLLM     bool
	TranscribeReady bool
	SuggestReady    bool
}

// Handler serves service metadata.
type Handler struct {
	sessions *session.Manager
	info     Info
}

// New creates the metadata handler.
func New(sessions *session.Manager, info Info) *Handler {
	if info.Version == "" {
		info.Version = "1.0.0"
	}
	return &Handler{sessions: sessions, info: info}
}

// RegisterRoutes registers the banner, health, and config endpoints at the
// server root.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Get("/config", h.handleConfig)
}

// RegisterAPIRoutes registers the session listing under the API group.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/sessions", h.handleSessions)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "AI Interview Buddy API",
		"version": h.info.Version,
		"status":  "running",
		"endpoints": map[string]string{
			"websocket": "/ws/audio",
			"upload":    "/api/upload",
			"health":    "/health",
			"config":    "/config",
			"sessions":  "/api/sessions",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	localLLM := "disabled"
	if h.info.UseLocalLLM {
		localLLM = "enabled"
	}
	whisper := "canned"
	if h.info.TranscribeReady {
		whisper = "available"
	}
	suggestions := "fallback"
	if h.info.SuggestReady {
		suggestions = "available"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "All systems operational",
		"services": map[string]string{
			"local_llm":       localLLM,
			"whisper":         whisper,
			"suggestions":     suggestions,
			"websocket":       "available",
			"document_upload": "available",
		},
		"active_sessions": h.sessions.Count(),
	})
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"whisper_model": h.info.WhisperModel,
		"llm_model":     h.info.LLMModel,
		"use_local_llm": h.info.UseLocalLLM,
		"websocket_url": "/ws/audio",
		"features": []string{
			"real_time_transcription",
			"local_llm_coaching",
			"resume_upload",
			"job_description_analysis",
			"intent_detection",
		},
	})
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.Sessions()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
