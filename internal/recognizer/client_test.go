package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRepresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/represent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("enforce_detection"); got != "true" {
			t.Errorf("expected enforce_detection=true, got %q", got)
		}
		if got := r.FormValue("model"); got != "facenet512" {
			t.Errorf("expected model=facenet512, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"dim":       4,
			"embedding": []float32{0.1, 0.2, 0.3, 0.4},
			"model":     "facenet512",
		})
	}))
	defer server.Close()

	c := New(server.URL, "")
	emb, err := c.Represent(context.Background(), []byte("fake-image"), true)
	if err != nil {
		t.Fatalf("Represent failed: %v", err)
	}
	if len(emb) != 4 {
		t.Errorf("expected 4 values, got %d", len(emb))
	}
}

func TestRepresentNoFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "no face detected"}`))
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.Represent(context.Background(), []byte("fake-image"), true)
	if !errors.Is(err, ErrNoFaceDetected) {
		t.Errorf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestRepresentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.Represent(context.Background(), []byte("fake-image"), false)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestRepresentUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	_, err := c.Represent(context.Background(), []byte("fake-image"), false)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestRepresentEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"dim": 0, "embedding": []float32{}})
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.Represent(context.Background(), []byte("fake-image"), false)
	if err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestExtractFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract-faces" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"faces_count": 2,
			"faces": []map[string]any{
				{
					"face_index": 0,
					"bbox":       []float64{10, 10, 50, 50},
					"det_score":  0.99,
					"width":      2,
					"height":     1,
					"channels":   3,
					"pixels":     []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
				},
				{
					"face_index": 1,
					"bbox":       []float64{60, 10, 100, 50},
					"det_score":  0.87,
					"width":      1,
					"height":     1,
					"channels":   3,
					"pixels":     []float32{0.7, 0.8, 0.9},
				},
			},
			"model": "facenet512",
		})
	}))
	defer server.Close()

	c := New(server.URL, "")
	faces, err := c.ExtractFaces(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("ExtractFaces failed: %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(faces))
	}
	if faces[0].Index != 0 || faces[1].Index != 1 {
		t.Error("face indices not preserved")
	}
	if len(faces[0].Pixels) != 6 {
		t.Errorf("expected 6 pixel values, got %d", len(faces[0].Pixels))
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"short", []byte{0x01}, "application/octet-stream"},
		{"unknown", []byte{1, 2, 3, 4, 5, 6, 7, 8}, "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.want {
				t.Errorf("detectMIMEType() = %s, want %s", got, tt.want)
			}
		})
	}
}
