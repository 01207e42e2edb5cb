package match

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/gallery"
)

// Embedder computes an embedding for an image, strictly or leniently.
type Embedder interface {
	Represent(ctx context.Context, image []byte, strict bool) ([]float32, error)
}

// VerifyResult is the outcome of a selfie verification.
type VerifyResult struct {
	Match      bool
	Distance   float64 // minimum distance seen; MaxDistance when no references
	References int     // reference embeddings compared against
	Embedding  []float32
}

// SelfieVerifier matches one probe image against one student's full gallery.
type SelfieVerifier struct {
	embedder  Embedder
	gallery   *gallery.Loader
	threshold float64
}

// NewSelfieVerifier creates a selfie verifier.
func NewSelfieVerifier(embedder Embedder, loader *gallery.Loader, threshold float64) *SelfieVerifier {
	return &SelfieVerifier{
		embedder:  embedder,
		gallery:   loader,
		threshold: threshold,
	}
}

// Verify embeds the probe strictly (a selfie must contain a usable face) and
// compares it against every reference in the student's folder. The minimum
// distance must come in under the threshold for a match. An empty or missing
// gallery never matches. Strict embedding failures are returned to the
// caller, which surfaces them as a definitive non-match.
func (v *SelfieVerifier) Verify(ctx context.Context, probe []byte, studentFolder string) (VerifyResult, error) {
	probeEmb, err := v.embedder.Represent(ctx, probe, true)
	if err != nil {
		return VerifyResult{Distance: MaxDistance}, fmt.Errorf("embedding selfie: %w", err)
	}

	// Full gallery: cost is one probe against one student, so accuracy
	// wins over the bounded scan used for class photos.
	refs, err := v.gallery.Student(ctx, studentFolder, 0)
	if err != nil {
		return VerifyResult{Distance: MaxDistance, Embedding: probeEmb}, err
	}

	minDist := MaxDistance
	for _, ref := range refs {
		if d := CosineDistance(probeEmb, ref); d < minDist {
			minDist = d
		}
	}

	return VerifyResult{
		Match:      minDist < v.threshold,
		Distance:   minDist,
		References: len(refs),
		Embedding:  probeEmb,
	}, nil
}
