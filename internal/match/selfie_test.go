package match

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// selfieStub embeds by image content. Content starting with "faceless"
// fails strict embedding; content starting with "broken" always fails.
type selfieStub struct {
	vectors map[string][]float32
}

func (s *selfieStub) Represent(ctx context.Context, image []byte, strict bool) ([]float32, error) {
	content := string(image)
	if strict && content == "faceless" {
		return nil, recognizer.ErrNoFaceDetected
	}
	if v, ok := s.vectors[content]; ok {
		return v, nil
	}
	return nil, errors.New("cannot embed")
}

func writeRefs(t *testing.T, folder string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(folder, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(folder, name), []byte(name), 0o640); err != nil {
			t.Fatal(err)
		}
	}
}

func newVerifier(stub *selfieStub, threshold float64) *SelfieVerifier {
	loader := gallery.NewLoader(gallery.NewFSStore(), stub)
	return NewSelfieVerifier(stub, loader, threshold)
}

func TestVerifyMatch(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "stu_1")
	writeRefs(t, folder, "ref1.jpg", "ref2.jpg")

	stub := &selfieStub{vectors: map[string][]float32{
		"probe":    {1, 0, 0},
		"ref1.jpg": {0, 1, 0},   // orthogonal, distance 1
		"ref2.jpg": {1, 0.1, 0}, // nearly identical, distance well under 0.4
	}}
	v := newVerifier(stub, 0.4)

	res, err := v.Verify(context.Background(), []byte("probe"), folder)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !res.Match {
		t.Errorf("expected match, best distance %v", res.Distance)
	}
	if res.References != 2 {
		t.Errorf("expected 2 references, got %d", res.References)
	}
}

func TestVerifyNoMatchAboveThreshold(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "stu_1")
	writeRefs(t, folder, "ref1.jpg")

	stub := &selfieStub{vectors: map[string][]float32{
		"probe":    {1, 0, 0},
		"ref1.jpg": {0, 1, 0}, // distance 1 >= 0.4
	}}
	v := newVerifier(stub, 0.4)

	res, err := v.Verify(context.Background(), []byte("probe"), folder)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if res.Match {
		t.Errorf("expected no match at distance %v", res.Distance)
	}
}

func TestVerifyEmptyGallery(t *testing.T) {
	stub := &selfieStub{vectors: map[string][]float32{"probe": {1, 0, 0}}}
	v := newVerifier(stub, 0.4)

	res, err := v.Verify(context.Background(), []byte("probe"), filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if res.Match {
		t.Error("empty gallery must never match")
	}
	if res.Distance != MaxDistance {
		t.Errorf("expected sentinel distance, got %v", res.Distance)
	}
}

func TestVerifySkipsBrokenReferences(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "stu_1")
	writeRefs(t, folder, "broken.jpg", "ref.jpg")

	stub := &selfieStub{vectors: map[string][]float32{
		"probe":   {1, 0, 0},
		"ref.jpg": {1, 0, 0},
	}}
	v := newVerifier(stub, 0.4)

	res, err := v.Verify(context.Background(), []byte("probe"), folder)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !res.Match {
		t.Error("expected match via the readable reference")
	}
	if res.References != 1 {
		t.Errorf("expected broken reference skipped, got %d refs", res.References)
	}
}

func TestVerifyStrictFailureSurfaces(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "stu_1")
	writeRefs(t, folder, "ref.jpg")

	stub := &selfieStub{vectors: map[string][]float32{"ref.jpg": {1, 0, 0}}}
	v := newVerifier(stub, 0.4)

	res, err := v.Verify(context.Background(), []byte("faceless"), folder)
	if !errors.Is(err, recognizer.ErrNoFaceDetected) {
		t.Errorf("expected ErrNoFaceDetected, got %v", err)
	}
	if res.Match {
		t.Error("failed strict embedding must not match")
	}
}
