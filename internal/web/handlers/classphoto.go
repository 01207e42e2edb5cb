package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
)

// RefLoader builds bounded per-student reference sets for a class scan.
type RefLoader interface {
	Class(ctx context.Context, sources []gallery.Source, perStudent int) ([]gallery.StudentRefs, error)
}

// GroupMatcher matches the faces of a class photo against reference sets.
type GroupMatcher interface {
	Match(ctx context.Context, photo []byte, refs []gallery.StudentRefs) ([]string, error)
}

// ClassPhotoHandler handles the class photo batch scan endpoint
type ClassPhotoHandler struct {
	classes      database.ClassStore
	roster       database.RosterStore
	events       database.EventStore
	refs         RefLoader
	matcher      GroupMatcher
	maxGroupRefs int
	log          zerolog.Logger
}

// NewClassPhotoHandler creates a new class photo handler
func NewClassPhotoHandler(
	classes database.ClassStore,
	roster database.RosterStore,
	events database.EventStore,
	refs RefLoader,
	matcher GroupMatcher,
	maxGroupRefs int,
	log zerolog.Logger,
) *ClassPhotoHandler {
	return &ClassPhotoHandler{
		classes:      classes,
		roster:       roster,
		events:       events,
		refs:         refs,
		matcher:      matcher,
		maxGroupRefs: maxGroupRefs,
		log:          log,
	}
}

// ClassPhotoResponse reports which roster members were recognized
type ClassPhotoResponse struct {
	Recognized []string `json:"recognized"`
	Marked     int      `json:"marked"`
}

// Scan processes an uploaded class photo: every detected face is matched
// against the bounded reference sets of the roster, and each recognized
// student gets a class photo event for today.
func (h *ClassPhotoHandler) Scan(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	photo, _, err := readUploadedFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "class photo is required")
		return
	}

	students, err := h.roster.ListStudents(r.Context(), class.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load roster")
		return
	}
	if len(students) == 0 {
		respondJSON(w, http.StatusOK, ClassPhotoResponse{Recognized: []string{}})
		return
	}

	sources := make([]gallery.Source, 0, len(students))
	byRoll := make(map[string]*database.Student, len(students))
	for i := range students {
		sources = append(sources, gallery.Source{Roll: students[i].RollNumber, Folder: students[i].FolderPath})
		byRoll[students[i].RollNumber] = &students[i]
	}

	refs, err := h.refs.Class(r.Context(), sources, h.maxGroupRefs)
	if err != nil {
		h.log.Error().Err(err).Int64("class_id", class.ID).Msg("failed to load reference galleries")
		respondError(w, http.StatusInternalServerError, "failed to load reference galleries")
		return
	}

	recognized, err := h.matcher.Match(r.Context(), photo, refs)
	if err != nil {
		h.log.Error().Err(err).Int64("class_id", class.ID).Msg("class photo scan failed")
		respondError(w, http.StatusInternalServerError, "class photo scan failed")
		return
	}

	date := attendance.Today()
	marked := 0
	for _, roll := range recognized {
		student, ok := byRoll[roll]
		if !ok {
			continue
		}
		ev := &attendance.MatchEvent{
			StudentID:   student.ID,
			ClassroomID: class.ID,
			Date:        date,
			Time:        attendance.NoTime,
			Method:      attendance.MethodClassPhoto,
		}
		if err := h.events.Append(r.Context(), ev); err != nil {
			h.log.Error().Err(err).Str("roll", sanitizeForLog(roll)).Msg("failed to record class photo event")
			respondError(w, http.StatusInternalServerError, "failed to record attendance")
			return
		}
		marked++
	}

	h.log.Info().
		Int64("class_id", class.ID).
		Int("roster", len(students)).
		Int("recognized", len(recognized)).
		Msg("class photo scanned")
	respondJSON(w, http.StatusOK, ClassPhotoResponse{Recognized: recognized, Marked: marked})
}
