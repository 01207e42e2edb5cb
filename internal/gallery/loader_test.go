package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// stubEmbedder maps image content to a fixed vector. Unknown content fails.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Represent(ctx context.Context, image []byte, strict bool) ([]float32, error) {
	s.calls++
	if v, ok := s.vectors[string(image)]; ok {
		return v, nil
	}
	return nil, errors.New("cannot embed image")
}

func writeTestImages(t *testing.T, folder string, names ...string) {
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

func TestLoaderStudentOrderAndCap(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stu_42")
	writeTestImages(t, dir, "a.jpg", "b.jpg", "c.jpg", "d.jpg")

	emb := &stubEmbedder{vectors: map[string][]float32{
		"a.jpg": {1, 0}, "b.jpg": {0, 1}, "c.jpg": {1, 1}, "d.jpg": {0, 0},
	}}
	loader := NewLoader(NewFSStore(), emb)

	refs, err := loader.Student(context.Background(), dir, 3)
	if err != nil {
		t.Fatalf("Student failed: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs (cap), got %d", len(refs))
	}
	// os.ReadDir returns names sorted, so a, b, c survive the cap.
	if refs[0][0] != 1 || refs[0][1] != 0 {
		t.Error("first reference out of order")
	}
	if emb.calls != 3 {
		t.Errorf("expected 3 embed calls with cap, got %d", emb.calls)
	}
}

func TestLoaderStudentSkipsFailures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stu_7")
	writeTestImages(t, dir, "bad.jpg", "good.jpg")

	emb := &stubEmbedder{vectors: map[string][]float32{"good.jpg": {1, 2}}}
	loader := NewLoader(NewFSStore(), emb)

	refs, err := loader.Student(context.Background(), dir, 0)
	if err != nil {
		t.Fatalf("Student failed: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected failed image skipped, got %d refs", len(refs))
	}
}

func TestLoaderStudentMissingFolder(t *testing.T) {
	loader := NewLoader(NewFSStore(), &stubEmbedder{})

	refs, err := loader.Student(context.Background(), filepath.Join(t.TempDir(), "nope"), 0)
	if err != nil {
		t.Fatalf("missing folder must not be an error, got %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected empty gallery, got %d refs", len(refs))
	}
}

func TestLoaderClassFolder(t *testing.T) {
	classDir := t.TempDir()
	writeTestImages(t, filepath.Join(classDir, "stu_1"), "one.jpg")
	writeTestImages(t, filepath.Join(classDir, "stu_2"), "two.jpg")

	emb := &stubEmbedder{vectors: map[string][]float32{
		"one.jpg": {1, 0}, "two.jpg": {0, 1},
	}}
	loader := NewLoader(NewFSStore(), emb)

	refs, err := loader.ClassFolder(context.Background(), classDir, 3)
	if err != nil {
		t.Fatalf("ClassFolder failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 students, got %d", len(refs))
	}
	if refs[0].Roll != "1" || refs[1].Roll != "2" {
		t.Errorf("rolls not extracted from folder names: %+v", refs)
	}
}

func TestClassFolderName(t *testing.T) {
	if got := ClassFolderName("Class A ComSci", "2024"); got != "Class_A_ComSci_2024" {
		t.Errorf("unexpected folder name: %s", got)
	}
	if got := ClassFolderName("Třída Jiří", "2025"); got != "Trida_Jiri_2025" {
		t.Errorf("diacritics not stripped: %s", got)
	}
}

func TestStudentFolderRoundTrip(t *testing.T) {
	folder := StudentFolderName("CS-042")
	if folder != "stu_CS-042" {
		t.Errorf("unexpected student folder: %s", folder)
	}
	if roll := RollFromFolderName(folder); roll != "CS-042" {
		t.Errorf("roll round trip failed: %s", roll)
	}
}
