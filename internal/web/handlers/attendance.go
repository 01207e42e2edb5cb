package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceHandler handles attendance view, toggle, and export endpoints
type AttendanceHandler struct {
	classes database.ClassStore
	roster  database.RosterStore
	events  database.EventStore
	log     zerolog.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(classes database.ClassStore, roster database.RosterStore, events database.EventStore, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		classes: classes,
		roster:  roster,
		events:  events,
		log:     log,
	}
}

// dateFromQuery reads the ?date query parameter, defaulting to today.
func dateFromQuery(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return attendance.Today(), nil
	}
	if _, err := time.Parse(attendance.DateFormat, date); err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return date, nil
}

// buildDayView loads the roster and events and reconciles them into records.
func (h *AttendanceHandler) buildDayView(r *http.Request, classID int64, date string) ([]attendance.Record, error) {
	students, err := h.roster.ListStudents(r.Context(), classID)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}

	events, err := h.events.QueryDay(r.Context(), classID, date)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}

	roster := make([]attendance.RosterEntry, 0, len(students))
	for _, s := range students {
		roster = append(roster, attendance.RosterEntry{StudentID: s.ID, Roll: s.RollNumber, Name: s.Name})
	}
	return attendance.BuildView(roster, events), nil
}

// View returns the reconciled attendance of a classroom for one date
func (h *AttendanceHandler) View(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	date, err := dateFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.buildDayView(r, class.ID, date)
	if err != nil {
		h.log.Error().Err(err).Int64("class_id", class.ID).Msg("failed to build attendance view")
		respondError(w, http.StatusInternalServerError, "failed to build attendance view")
		return
	}

	present := 0
	for _, rec := range records {
		if rec.IsPresent {
			present++
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"records": records,
		"present": present,
		"total":   len(records),
	})
}

// toggleRequest represents a manual attendance toggle request
type toggleRequest struct {
	Roll string `json:"roll"`
	Date string `json:"date"`
}

// Toggle flips a student's attendance for one date. A student with any
// events for the date has them all removed (goes Absent); a student with
// none gets a manual event (goes Present).
func (h *AttendanceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	date := req.Date
	if date == "" {
		date = attendance.Today()
	} else if _, err := time.Parse(attendance.DateFormat, date); err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	student, err := h.roster.GetStudentByRoll(r.Context(), class.ID, req.Roll)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	removed, err := h.events.DeleteStudentDay(r.Context(), student.ID, date)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to clear attendance events")
		respondError(w, http.StatusInternalServerError, "failed to toggle attendance")
		return
	}

	status := attendance.StatusAbsent
	if removed == 0 {
		// Nothing to clear, so this toggle marks the student present.
		ev := &attendance.MatchEvent{
			StudentID:   student.ID,
			ClassroomID: class.ID,
			Date:        date,
			Time:        attendance.NoTime,
			Method:      attendance.MethodManual,
		}
		if err := h.events.Append(r.Context(), ev); err != nil {
			h.log.Error().Err(err).Msg("failed to record manual event")
			respondError(w, http.StatusInternalServerError, "failed to toggle attendance")
			return
		}
		status = attendance.StatusPresent
	}

	h.log.Info().
		Str("roll", sanitizeForLog(req.Roll)).
		Str("date", date).
		Str("status", status).
		Msg("attendance toggled")
	respondJSON(w, http.StatusOK, map[string]string{"roll": req.Roll, "date": date, "status": status})
}

// ExportCSV streams the reconciled attendance of one date as a CSV download
func (h *AttendanceHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	class := classFromRequest(w, r, h.classes)
	if class == nil {
		return
	}

	date, err := dateFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.buildDayView(r, class.ID, date)
	if err != nil {
		h.log.Error().Err(err).Int64("class_id", class.ID).Msg("failed to build attendance export")
		respondError(w, http.StatusInternalServerError, "failed to build attendance export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance_%s.csv"`, date))
	if err := attendance.WriteCSV(w, records); err != nil {
		h.log.Error().Err(err).Msg("failed to write attendance CSV")
	}
}
