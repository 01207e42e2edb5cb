package match

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// Recognizer is the slice of the recognition client the group matcher needs.
type Recognizer interface {
	Embedder
	ExtractFaces(ctx context.Context, image []byte) ([]recognizer.Face, error)
}

// GroupPhotoMatcher matches every face detected in one class photo against
// the bounded reference sets of all students in the class.
type GroupPhotoMatcher struct {
	rec       Recognizer
	threshold float64
	faceEdge  int
	log       zerolog.Logger
}

// NewGroupPhotoMatcher creates a group photo matcher.
func NewGroupPhotoMatcher(rec Recognizer, threshold float64, faceEdge int, log zerolog.Logger) *GroupPhotoMatcher {
	return &GroupPhotoMatcher{
		rec:       rec,
		threshold: threshold,
		faceEdge:  faceEdge,
		log:       log,
	}
}

// Match returns the set of roll numbers recognized in the photo. Each
// detected face independently picks the best-scoring student across the
// whole class; a strictly lower distance is required to replace the current
// best, so equal distances keep the first student seen. Faces whose best
// distance reaches the threshold stay unmatched, as do students nobody
// nominated. Per-face failures are skipped; a failed detection step yields
// an empty result rather than an error.
func (m *GroupPhotoMatcher) Match(ctx context.Context, photo []byte, refs []gallery.StudentRefs) ([]string, error) {
	faces, err := m.rec.ExtractFaces(ctx, photo)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.log.Warn().Err(err).Msg("face detection failed, returning empty result")
		return []string{}, nil
	}

	seen := make(map[string]bool)
	var rolls []string

	for _, face := range faces {
		crop, err := NormalizeFace(face, m.faceEdge)
		if err != nil {
			m.log.Debug().Err(err).Int("face", face.Index).Msg("skipping unusable face crop")
			continue
		}

		emb, err := m.rec.Represent(ctx, crop, false)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			m.log.Debug().Err(err).Int("face", face.Index).Msg("skipping face, embedding failed")
			continue
		}

		bestDist := m.threshold
		bestRoll := ""
		for _, student := range refs {
			for _, ref := range student.Embeddings {
				if d := CosineDistance(emb, ref); d < bestDist {
					bestDist = d
					bestRoll = student.Roll
				}
			}
		}

		if bestRoll == "" {
			continue
		}
		// Multiple faces may nominate the same student; the result is a set.
		if !seen[bestRoll] {
			seen[bestRoll] = true
			rolls = append(rolls, bestRoll)
		}
	}

	if rolls == nil {
		rolls = []string{}
	}
	return rolls, nil
}
