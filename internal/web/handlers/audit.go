package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/database"
)

const defaultSimilarLimit = 10

// Embedder computes an embedding for an image.
type Embedder interface {
	Represent(ctx context.Context, image []byte, strict bool) ([]float32, error)
}

// AuditHandler handles the verification audit endpoints. Professors can
// submit a face image and find the closest logged check-in attempts, which
// helps investigate suspected proxy check-ins.
type AuditHandler struct {
	embedder Embedder
	probes   database.ProbeLog
	log      zerolog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(embedder Embedder, probes database.ProbeLog, log zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		embedder: embedder,
		probes:   probes,
		log:      log,
	}
}

// similarProbe is the JSON shape of one audit match
type similarProbe struct {
	ID            string  `json:"id"`
	StudentID     int64   `json:"student_id"`
	ClassroomID   int64   `json:"classroom_id"`
	Kind          string  `json:"kind"`
	Matched       bool    `json:"matched"`
	QueryDistance float64 `json:"query_distance"`
	CreatedAt     string  `json:"created_at"`
}

// FindSimilar embeds the uploaded image and returns the logged probes
// nearest to it by cosine distance.
func (h *AuditHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	image, _, err := readUploadedFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "query image is required")
		return
	}

	limit := defaultSimilarLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	embedding, err := h.embedder.Represent(r.Context(), image, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to embed audit query image")
		respondError(w, http.StatusUnprocessableEntity, "could not extract a face embedding from the image")
		return
	}

	probes, distances, err := h.probes.FindSimilar(r.Context(), embedding, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("audit similarity search failed")
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	results := make([]similarProbe, 0, len(probes))
	for i, p := range probes {
		results = append(results, similarProbe{
			ID:            p.ID,
			StudentID:     p.StudentID,
			ClassroomID:   p.ClassroomID,
			Kind:          p.Kind,
			Matched:       p.Matched,
			QueryDistance: distances[i],
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}
