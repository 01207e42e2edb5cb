package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/match"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// Verifier matches one selfie against one student's reference gallery.
type Verifier interface {
	Verify(ctx context.Context, probe []byte, studentFolder string) (match.VerifyResult, error)
}

// VerifyHandler handles the student-facing selfie check-in endpoint. It is
// unauthenticated: students check in from their own phones.
type VerifyHandler struct {
	classes  database.ClassStore
	roster   database.RosterStore
	events   database.EventStore
	probes   database.ProbeLog
	verifier Verifier
	log      zerolog.Logger
}

// NewVerifyHandler creates a new verify handler
func NewVerifyHandler(
	classes database.ClassStore,
	roster database.RosterStore,
	events database.EventStore,
	probes database.ProbeLog,
	verifier Verifier,
	log zerolog.Logger,
) *VerifyHandler {
	return &VerifyHandler{
		classes:  classes,
		roster:   roster,
		events:   events,
		probes:   probes,
		verifier: verifier,
		log:      log,
	}
}

// VerifyResponse is the selfie check-in result
type VerifyResponse struct {
	Match    bool    `json:"match"`
	Distance float64 `json:"distance"`
	Marked   bool    `json:"marked"`
	Reason   string  `json:"reason,omitempty"`
}

// Verify handles a selfie check-in. Multipart fields: class_id, roll, image.
// Recognition failures never surface as errors to the student; they come
// back as a non-match so the kiosk flow keeps moving.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	image, _, err := readUploadedFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "selfie image is required")
		return
	}

	classID, err := strconv.ParseInt(r.FormValue("class_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class_id")
		return
	}
	roll := r.FormValue("roll")
	if roll == "" {
		respondError(w, http.StatusBadRequest, "roll is required")
		return
	}

	class, err := h.classes.Get(r.Context(), classID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load class")
		return
	}
	if class == nil {
		respondError(w, http.StatusNotFound, "class not found")
		return
	}

	student, err := h.roster.GetStudentByRoll(r.Context(), classID, roll)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	result, err := h.verifier.Verify(r.Context(), image, student.FolderPath)
	if err != nil {
		// Degraded mode: a selfie without a detectable face or an
		// unreachable recognizer is a definitive non-match, not a 500.
		if errors.Is(err, recognizer.ErrNoFaceDetected) {
			respondJSON(w, http.StatusOK, VerifyResponse{Match: false, Distance: result.Distance, Reason: "no face detected"})
			return
		}
		if errors.Is(err, recognizer.ErrUnavailable) {
			h.log.Warn().Err(err).Msg("recognizer unavailable during selfie check")
			respondJSON(w, http.StatusOK, VerifyResponse{Match: false, Distance: result.Distance, Reason: "recognition unavailable"})
			return
		}
		h.log.Error().Err(err).Str("roll", sanitizeForLog(roll)).Msg("selfie verification failed")
		respondError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	h.logProbe(r.Context(), student, result)

	resp := VerifyResponse{Match: result.Match, Distance: result.Distance}
	if result.Match {
		ev := &attendance.MatchEvent{
			StudentID:   student.ID,
			ClassroomID: class.ID,
			Date:        attendance.Today(),
			Time:        time.Now().Format(attendance.TimeFormat),
			Method:      attendance.MethodSelfie,
		}
		if err := h.events.Append(r.Context(), ev); err != nil {
			h.log.Error().Err(err).Msg("failed to record selfie event")
			respondError(w, http.StatusInternalServerError, "failed to record attendance")
			return
		}
		resp.Marked = true
		h.log.Info().
			Str("roll", sanitizeForLog(roll)).
			Float64("distance", result.Distance).
			Msg("selfie check-in matched")
	}

	respondJSON(w, http.StatusOK, resp)
}

// logProbe records the verification attempt in the audit log. Best effort;
// a failed audit write never blocks the check-in.
func (h *VerifyHandler) logProbe(ctx context.Context, student *database.Student, result match.VerifyResult) {
	if len(result.Embedding) == 0 {
		return
	}
	probe := &database.Probe{
		ID:          uuid.NewString(),
		StudentID:   student.ID,
		ClassroomID: student.ClassroomID,
		Kind:        "selfie",
		Matched:     result.Match,
		Distance:    result.Distance,
		Embedding:   result.Embedding,
	}
	if err := h.probes.Append(ctx, probe); err != nil {
		h.log.Warn().Err(err).Msg("failed to log verification probe")
	}
}
