package match

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// groupStub serves a fixed face list and hands out embeddings in call order:
// faces are processed in detection order, so the n-th Represent call gets
// the n-th queued vector (nil entries fail).
type groupStub struct {
	faces      []recognizer.Face
	extractErr error
	queue      [][]float32
	call       int
}

func (s *groupStub) ExtractFaces(ctx context.Context, image []byte) ([]recognizer.Face, error) {
	if s.extractErr != nil {
		return nil, s.extractErr
	}
	return s.faces, nil
}

func (s *groupStub) Represent(ctx context.Context, image []byte, strict bool) ([]float32, error) {
	if s.call >= len(s.queue) {
		return nil, errors.New("unexpected embed call")
	}
	v := s.queue[s.call]
	s.call++
	if v == nil {
		return nil, errors.New("cannot embed face")
	}
	return v, nil
}

func testFace(index int) recognizer.Face {
	pixels := make([]float32, 4*4*3)
	for i := range pixels {
		pixels[i] = 0.5
	}
	return recognizer.Face{Index: index, Width: 4, Height: 4, Channels: 3, Pixels: pixels}
}

func testFaces(n int) []recognizer.Face {
	faces := make([]recognizer.Face, n)
	for i := range faces {
		faces[i] = testFace(i)
	}
	return faces
}

func classRefs() []gallery.StudentRefs {
	return []gallery.StudentRefs{
		{Roll: "1", Embeddings: [][]float32{{1, 0, 0}}},
		{Roll: "2", Embeddings: [][]float32{{0, 1, 0}}},
		{Roll: "3", Embeddings: [][]float32{{0, 0, 1}}},
	}
}

func newMatcher(stub *groupStub) *GroupPhotoMatcher {
	return NewGroupPhotoMatcher(stub, 0.5, 0, zerolog.Nop())
}

func TestGroupMatchTwoOfThreeFaces(t *testing.T) {
	stub := &groupStub{
		faces: testFaces(3),
		queue: [][]float32{
			{1, 0.1, 0},    // close to student 1
			{0.1, 1, 0},    // close to student 2
			{-1, -1, -0.5}, // far from everyone
		},
	}
	m := newMatcher(stub)

	rolls, err := m.Match(context.Background(), []byte("photo"), classRefs())
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(rolls) != 2 {
		t.Fatalf("expected exactly 2 matches, got %v", rolls)
	}
	if rolls[0] != "1" || rolls[1] != "2" {
		t.Errorf("unexpected rolls: %v", rolls)
	}
}

func TestGroupMatchTieKeepsFirstStudent(t *testing.T) {
	// Two students share an identical reference; the face must go to the
	// student seen first in iteration order.
	refs := []gallery.StudentRefs{
		{Roll: "A", Embeddings: [][]float32{{1, 0, 0}}},
		{Roll: "B", Embeddings: [][]float32{{1, 0, 0}}},
	}
	stub := &groupStub{
		faces: testFaces(1),
		queue: [][]float32{{1, 0, 0}},
	}
	m := newMatcher(stub)

	rolls, err := m.Match(context.Background(), []byte("photo"), refs)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(rolls) != 1 || rolls[0] != "A" {
		t.Errorf("expected tie broken to first student, got %v", rolls)
	}
}

func TestGroupMatchDuplicateNominationsCollapse(t *testing.T) {
	stub := &groupStub{
		faces: testFaces(2),
		queue: [][]float32{
			{1, 0, 0},
			{1, 0.05, 0},
		},
	}
	m := newMatcher(stub)

	rolls, err := m.Match(context.Background(), []byte("photo"), classRefs())
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(rolls) != 1 || rolls[0] != "1" {
		t.Errorf("expected duplicates collapsed to one membership, got %v", rolls)
	}
}

func TestGroupMatchDetectionFailureYieldsEmpty(t *testing.T) {
	stub := &groupStub{extractErr: errors.New("detector crashed")}
	m := newMatcher(stub)

	rolls, err := m.Match(context.Background(), []byte("photo"), classRefs())
	if err != nil {
		t.Fatalf("detection failure must not propagate: %v", err)
	}
	if len(rolls) != 0 {
		t.Errorf("expected empty result, got %v", rolls)
	}
}

func TestGroupMatchSkipsFailedEmbeddings(t *testing.T) {
	stub := &groupStub{
		faces: testFaces(2),
		queue: [][]float32{
			nil, // first face fails to embed
			{0, 1, 0},
		},
	}
	m := newMatcher(stub)

	rolls, err := m.Match(context.Background(), []byte("photo"), classRefs())
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(rolls) != 1 || rolls[0] != "2" {
		t.Errorf("expected failing face skipped, got %v", rolls)
	}
}

func TestGroupMatchThresholdIsExclusive(t *testing.T) {
	// A reference at exactly the threshold distance must not match:
	// orthogonal vectors sit at distance 1 with a threshold of 1.
	refs := []gallery.StudentRefs{
		{Roll: "X", Embeddings: [][]float32{{0, 1, 0}}},
	}
	stub := &groupStub{
		faces: testFaces(1),
		queue: [][]float32{{1, 0, 0}},
	}
	m := NewGroupPhotoMatcher(stub, 1.0, 0, zerolog.Nop())

	rolls, err := m.Match(context.Background(), []byte("photo"), refs)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(rolls) != 0 {
		t.Errorf("distance equal to threshold must not match, got %v", rolls)
	}
}
