package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
)

var errMock = errors.New("mock error")

func setupAttendanceTest(t *testing.T) (*mock.ClassStore, *mock.RosterStore, *mock.EventStore, *AttendanceHandler) {
	t.Helper()
	classes := mock.NewClassStore()
	roster := mock.NewRosterStore()
	events := mock.NewEventStore()
	handler := NewAttendanceHandler(classes, roster, events, testLogger())
	return classes, roster, events, handler
}

func viewRequest(classID int64, date string) *http.Request {
	url := "/api/v1/classes/" + strconv.FormatInt(classID, 10) + "/attendance"
	if date != "" {
		url += "?date=" + date
	}
	req := httptest.NewRequest("GET", url, nil)
	req = requestWithSession(req, testSession(1))
	return requestWithChiParams(req, map[string]string{"classID": strconv.FormatInt(classID, 10)})
}

func toggleRequestFor(classID int64, body string) *http.Request {
	url := "/api/v1/classes/" + strconv.FormatInt(classID, 10) + "/attendance/toggle"
	req := httptest.NewRequest("POST", url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = requestWithSession(req, testSession(1))
	return requestWithChiParams(req, map[string]string{"classID": strconv.FormatInt(classID, 10)})
}

func TestAttendanceHandler_View_AllAbsent(t *testing.T) {
	classes, roster, _, handler := setupAttendanceTest(t)
	class, _ := seedClass(t, classes, roster)

	recorder := httptest.NewRecorder()
	handler.View(recorder, viewRequest(class.ID, "2026-03-15"))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Date    string              `json:"date"`
		Records []attendance.Record `json:"records"`
		Present int                 `json:"present"`
		Total   int                 `json:"total"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Total != 2 || resp.Present != 0 {
		t.Errorf("expected 2 total, 0 present, got %d/%d", resp.Present, resp.Total)
	}
	for _, rec := range resp.Records {
		if rec.Status != attendance.StatusAbsent {
			t.Errorf("expected %s for %s, got %s", attendance.StatusAbsent, rec.Roll, rec.Status)
		}
	}
}

func TestAttendanceHandler_View_SelfieWithoutPhotoFlagsSuspect(t *testing.T) {
	classes, roster, events, handler := setupAttendanceTest(t)
	class, students := seedClass(t, classes, roster)

	ev := attendance.MatchEvent{
		StudentID:   students[0].ID,
		ClassroomID: class.ID,
		Date:        "2026-03-15",
		Time:        "09:14",
		Method:      attendance.MethodSelfie,
	}
	if err := events.Append(context.Background(), &ev); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.View(recorder, viewRequest(class.ID, "2026-03-15"))

	var resp struct {
		Records []attendance.Record `json:"records"`
	}
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.Records))
	}
	first := resp.Records[0]
	if !first.IsPresent || first.Method != string(attendance.MethodSelfie) {
		t.Errorf("expected present via selfie, got %+v", first)
	}
	if first.Alert != attendance.AlertSuspect {
		t.Errorf("expected suspect alert, got %q", first.Alert)
	}
}

func TestAttendanceHandler_View_ClassNotOwned(t *testing.T) {
	classes, roster, _, handler := setupAttendanceTest(t)
	class, _ := seedClass(t, classes, roster)

	req := requestWithSession(httptest.NewRequest("GET", "/api/v1/classes/1/attendance", nil), testSession(99))
	req = requestWithChiParams(req, map[string]string{"classID": strconv.FormatInt(class.ID, 10)})

	recorder := httptest.NewRecorder()
	handler.View(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestAttendanceHandler_View_InvalidDate(t *testing.T) {
	classes, roster, _, handler := setupAttendanceTest(t)
	class, _ := seedClass(t, classes, roster)

	recorder := httptest.NewRecorder()
	handler.View(recorder, viewRequest(class.ID, "15-03-2026"))
	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestAttendanceHandler_Toggle_MarksAbsentStudentPresent(t *testing.T) {
	classes, roster, events, handler := setupAttendanceTest(t)
	class, students := seedClass(t, classes, roster)

	recorder := httptest.NewRecorder()
	handler.Toggle(recorder, toggleRequestFor(class.ID, `{"roll":"A01","date":"2026-03-15"}`))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp map[string]string
	parseJSONResponse(t, recorder, &resp)
	if resp["status"] != attendance.StatusPresent {
		t.Errorf("expected %s, got %s", attendance.StatusPresent, resp["status"])
	}

	day, _ := events.QueryDay(context.Background(), class.ID, "2026-03-15")
	if len(day) != 1 {
		t.Fatalf("expected 1 event, got %d", len(day))
	}
	if day[0].Method != attendance.MethodManual || day[0].StudentID != students[0].ID {
		t.Errorf("unexpected event %+v", day[0])
	}
	if day[0].Time != attendance.NoTime {
		t.Errorf("expected placeholder time, got %q", day[0].Time)
	}
}

func TestAttendanceHandler_Toggle_ClearsAllEvidence(t *testing.T) {
	classes, roster, events, handler := setupAttendanceTest(t)
	class, students := seedClass(t, classes, roster)

	// Student has both selfie and class photo evidence for the day.
	for _, method := range []attendance.Method{attendance.MethodSelfie, attendance.MethodClassPhoto} {
		ev := attendance.MatchEvent{
			StudentID:   students[0].ID,
			ClassroomID: class.ID,
			Date:        "2026-03-15",
			Time:        attendance.NoTime,
			Method:      method,
		}
		if err := events.Append(context.Background(), &ev); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	recorder := httptest.NewRecorder()
	handler.Toggle(recorder, toggleRequestFor(class.ID, `{"roll":"A01","date":"2026-03-15"}`))

	var resp map[string]string
	parseJSONResponse(t, recorder, &resp)
	if resp["status"] != attendance.StatusAbsent {
		t.Errorf("expected %s, got %s", attendance.StatusAbsent, resp["status"])
	}

	day, _ := events.QueryDay(context.Background(), class.ID, "2026-03-15")
	if len(day) != 0 {
		t.Errorf("expected all events cleared, got %d", len(day))
	}
}

func TestAttendanceHandler_Toggle_Roundtrip(t *testing.T) {
	classes, roster, events, handler := setupAttendanceTest(t)
	class, _ := seedClass(t, classes, roster)

	// Present, then absent again.
	recorder := httptest.NewRecorder()
	handler.Toggle(recorder, toggleRequestFor(class.ID, `{"roll":"B02","date":"2026-03-15"}`))
	recorder = httptest.NewRecorder()
	handler.Toggle(recorder, toggleRequestFor(class.ID, `{"roll":"B02","date":"2026-03-15"}`))

	var resp map[string]string
	parseJSONResponse(t, recorder, &resp)
	if resp["status"] != attendance.StatusAbsent {
		t.Errorf("expected %s after second toggle, got %s", attendance.StatusAbsent, resp["status"])
	}

	day, _ := events.QueryDay(context.Background(), class.ID, "2026-03-15")
	if len(day) != 0 {
		t.Errorf("expected no events after roundtrip, got %d", len(day))
	}
}

func TestAttendanceHandler_Toggle_UnknownStudent(t *testing.T) {
	classes, roster, _, handler := setupAttendanceTest(t)
	class, _ := seedClass(t, classes, roster)

	recorder := httptest.NewRecorder()
	handler.Toggle(recorder, toggleRequestFor(class.ID, `{"roll":"Z99","date":"2026-03-15"}`))
	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "student not found")
}

func TestAttendanceHandler_Toggle_DeleteError(t *testing.T) {
	classes, roster, events, handler := setupAttendanceTest(t)
	class, _ := seedClass(t, classes, roster)
	events.DeleteError = errMock

	recorder := httptest.NewRecorder()
	handler.Toggle(recorder, toggleRequestFor(class.ID, `{"roll":"A01","date":"2026-03-15"}`))
	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func TestAttendanceHandler_ExportCSV(t *testing.T) {
	classes, roster, events, handler := setupAttendanceTest(t)
	class, students := seedClass(t, classes, roster)

	ev := attendance.MatchEvent{
		StudentID:   students[1].ID,
		ClassroomID: class.ID,
		Date:        "2026-03-15",
		Time:        attendance.NoTime,
		Method:      attendance.MethodClassPhoto,
	}
	if err := events.Append(context.Background(), &ev); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	url := "/api/v1/classes/" + strconv.FormatInt(class.ID, 10) + "/attendance/export?date=2026-03-15"
	req := httptest.NewRequest("GET", url, nil)
	req = requestWithSession(req, testSession(1))
	req = requestWithChiParams(req, map[string]string{"classID": strconv.FormatInt(class.ID, 10)})

	recorder := httptest.NewRecorder()
	handler.ExportCSV(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if ct := recorder.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
	if cd := recorder.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_2026-03-15.csv") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	body := recorder.Body.String()
	if !strings.Contains(body, attendance.AlertPhotoOnly) {
		t.Errorf("expected photo-only alert in CSV, got:\n%s", body)
	}
	if !strings.Contains(body, "A01,Alice,Absent") {
		t.Errorf("expected absent row for A01, got:\n%s", body)
	}
}
