// Package profile accepts the resume and job-description uploads that
// personalize coaching.
package profile

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/profile"
	"github.com/Engineernoob/ai-interview-buddy/pkg/utils"
)

// minResumeChars is the smallest extraction considered usable.
const minResumeChars = 50

// Handler serves profile upload and inspection.
type Handler struct {
	store       profile.Store
	extractor   profile.Extractor
	maxFileSize int64
}

// New creates the profile handler. maxFileSize bounds the resume payload in
// bytes.
func New(store profile.Store, extractor profile.Extractor, maxFileSize int64) *Handler {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	return &Handler{store: store, extractor: extractor, maxFileSize: maxFileSize}
}

// RegisterRoutes registers the upload endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
	r.Get("/profile", h.handleCurrent)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	jobDescription := strings.TrimSpace(r.FormValue("job_description"))
	if jobDescription == "" {
		utils.RespondError(w, http.StatusBadRequest, "job_description is required")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read resume file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "resume file exceeds the upload limit")
		return
	}

	text, err := h.extractor.Extract(data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(strings.TrimSpace(text)) < minResumeChars {
		utils.RespondError(w, http.StatusUnprocessableEntity, "could not extract sufficient text from the resume")
		return
	}

	h.store.Set(profile.Profile{
		ResumeText:     text,
		ResumeFilename: header.Filename,
		JobDescription: jobDescription,
		UploadedAt:     time.Now(),
	})

	log.Printf("[upload] stored profile resume=%s chars=%d", header.Filename, len(text))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Documents uploaded successfully"})
}

// handleCurrent reports the active profile. Sessions opened before an upload
// keep their original snapshot.
func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	current, ok := h.store.Current()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, profile.ErrNoProfile.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, current)
}
