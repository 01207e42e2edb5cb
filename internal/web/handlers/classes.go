package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

// ClassesHandler handles classroom endpoints
type ClassesHandler struct {
	classes    database.ClassStore
	store      gallery.Store
	studentDir string
	log        zerolog.Logger
}

// NewClassesHandler creates a new classes handler
func NewClassesHandler(classes database.ClassStore, store gallery.Store, studentDir string, log zerolog.Logger) *ClassesHandler {
	return &ClassesHandler{
		classes:    classes,
		store:      store,
		studentDir: studentDir,
		log:        log,
	}
}

// classResponse is the JSON shape of one classroom
type classResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Batch  string `json:"batch"`
	Folder string `json:"folder"`
}

func toClassResponse(c database.ClassRoom) classResponse {
	return classResponse{ID: c.ID, Name: c.Name, Batch: c.Batch, Folder: c.FolderPath}
}

// List returns the authenticated professor's classrooms
func (h *ClassesHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	classes, err := h.classes.ListByProfessor(r.Context(), session.ProfessorID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list classrooms")
		respondError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}

	resp := make([]classResponse, 0, len(classes))
	for _, c := range classes {
		resp = append(resp, toClassResponse(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"classes": resp})
}

// createClassRequest represents a class creation request
type createClassRequest struct {
	Name  string `json:"name"`
	Batch string `json:"batch"`
}

// Create creates a classroom and its reference image folder
func (h *ClassesHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" || req.Batch == "" {
		respondError(w, http.StatusBadRequest, "name and batch are required")
		return
	}

	folder := filepath.Join(h.studentDir, gallery.ClassFolderName(req.Name, req.Batch))
	if err := h.store.EnsureFolder(r.Context(), folder); err != nil {
		h.log.Error().Err(err).Str("folder", folder).Msg("failed to create class folder")
		respondError(w, http.StatusInternalServerError, "failed to create class folder")
		return
	}

	class := &database.ClassRoom{
		Name:        req.Name,
		Batch:       req.Batch,
		ProfessorID: session.ProfessorID,
		FolderPath:  folder,
	}
	if err := h.classes.Create(r.Context(), class); err != nil {
		h.log.Error().Err(err).Msg("failed to create classroom")
		respondError(w, http.StatusInternalServerError, "failed to create class")
		return
	}

	h.log.Info().Int64("class_id", class.ID).Str("name", sanitizeForLog(req.Name)).Msg("classroom created")
	respondJSON(w, http.StatusCreated, toClassResponse(*class))
}

// classFromRequest resolves the {classID} URL parameter to a classroom owned
// by the session professor. Writes the error response itself on failure.
func classFromRequest(w http.ResponseWriter, r *http.Request, classes database.ClassStore) *database.ClassRoom {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "classID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class ID")
		return nil
	}

	class, err := classes.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load class")
		return nil
	}
	if class == nil || class.ProfessorID != session.ProfessorID {
		respondError(w, http.StatusNotFound, fmt.Sprintf("class %d not found", id))
		return nil
	}
	return class
}
