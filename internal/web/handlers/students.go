package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
)

// StudentsHandler handles roster endpoints
type StudentsHandler struct {
	classes database.ClassStore
	roster  database.RosterStore
	store   gallery.Store
	log     zerolog.Logger
}

// NewStudentsHandler creates a new students handler
func NewStudentsHandler(classes database.ClassStore, roster database.RosterStore, store gallery.Store, log zerolog.Logger) *StudentsHandler {
	return &StudentsHandler{
		classes: classes,
		roster:  roster,
		store:   store,
		log:     log,
	}
}

// studentResponse is the JSON shape of one roster entry
type studentResponse struct {
	ID   int64  `json:"id"`
	Roll string `json:"roll"`
	Name string `json:"name"`
}

// List returns a classroom's roster in creation order
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	students, err := h.roster.ListStudents(r.Context(), class.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("class_id", class.ID).Msg("failed to list students")
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	resp := make([]studentResponse, 0, len(students))
	for _, s := range students {
		resp = append(resp, studentResponse{ID: s.ID, Roll: s.RollNumber, Name: s.Name})
	}
	respondJSON(w, http.StatusOK, map[string]any{"students": resp})
}

// Create enrolls a student with their first reference image. The request is
// multipart: roll and name fields plus an image file.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	image, filename, err := readUploadedFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "reference image is required")
		return
	}

	roll := r.FormValue("roll")
	name := r.FormValue("name")
	if roll == "" || name == "" {
		respondError(w, http.StatusBadRequest, "roll and name are required")
		return
	}

	existing, err := h.roster.GetStudentByRoll(r.Context(), class.ID, roll)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check roll number")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "roll number already enrolled")
		return
	}

	folder := filepath.Join(class.FolderPath, gallery.StudentFolderName(roll))
	if err := h.store.SaveImage(r.Context(), folder, filename, image); err != nil {
		h.log.Error().Err(err).Str("folder", folder).Msg("failed to save reference image")
		respondError(w, http.StatusInternalServerError, "failed to save reference image")
		return
	}

	student := &database.Student{
		RollNumber:  roll,
		Name:        name,
		ClassroomID: class.ID,
		FolderPath:  folder,
	}
	if err := h.roster.CreateStudent(r.Context(), student); err != nil {
		h.log.Error().Err(err).Msg("failed to create student")
		respondError(w, http.StatusInternalServerError, "failed to enroll student")
		return
	}

	h.log.Info().
		Int64("class_id", class.ID).
		Str("roll", sanitizeForLog(roll)).
		Msg("student enrolled")
	respondJSON(w, http.StatusCreated, studentResponse{ID: student.ID, Roll: student.RollNumber, Name: student.Name})
}

// AddImage appends one more reference image to an enrolled student's gallery.
func (h *StudentsHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	image, filename, err := readUploadedFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "reference image is required")
		return
	}

	roll := r.FormValue("roll")
	student, err := h.roster.GetStudentByRoll(r.Context(), class.ID, roll)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	if err := h.store.SaveImage(r.Context(), student.FolderPath, filename, image); err != nil {
		h.log.Error().Err(err).Str("folder", student.FolderPath).Msg("failed to save reference image")
		respondError(w, http.StatusInternalServerError, "failed to save reference image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
