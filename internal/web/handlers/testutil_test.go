package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

// testLogger returns a silent logger for handler tests
func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// testSession creates an authenticated session context value
func testSession(professorID int64) *middleware.Session {
	return &middleware.Session{
		ID:          "test-session",
		ProfessorID: professorID,
		Username:    "prof",
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

// requestWithSession attaches a session to the request context
func requestWithSession(r *http.Request, session *middleware.Session) *http.Request {
	return r.WithContext(middleware.SetSessionInContext(r.Context(), session))
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// seedClass creates a classroom owned by professor 1 with two students.
func seedClass(t *testing.T, classes *mock.ClassStore, roster *mock.RosterStore) (*database.ClassRoom, []database.Student) {
	t.Helper()
	ctx := context.Background()

	class := &database.ClassRoom{Name: "Algorithms", Batch: "2026", ProfessorID: 1, FolderPath: "student_db/Algorithms_2026"}
	if err := classes.Create(ctx, class); err != nil {
		t.Fatalf("failed to create class: %v", err)
	}

	students := []database.Student{
		{RollNumber: "A01", Name: "Alice", ClassroomID: class.ID, FolderPath: "student_db/Algorithms_2026/stu_A01"},
		{RollNumber: "B02", Name: "Bob", ClassroomID: class.ID, FolderPath: "student_db/Algorithms_2026/stu_B02"},
	}
	for i := range students {
		if err := roster.CreateStudent(ctx, &students[i]); err != nil {
			t.Fatalf("failed to create student: %v", err)
		}
	}
	return class, students
}

// multipartBody builds a multipart request body with one image file plus
// optional form fields. Returns the body and the content type.
func multipartBody(t *testing.T, image []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
