// Package attendance derives per-student daily attendance from raw match
// events. Events are the durable source of truth; status, method, and alert
// are recomputed from the event set on every read.
package attendance

import "time"

// Method is the evidentiary channel of a match event.
type Method string

const (
	MethodSelfie     Method = "Selfie"
	MethodClassPhoto Method = "ClassPhoto"
	MethodManual     Method = "Manual"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"

	// NoMethod is displayed for absent students.
	NoMethod = "-"

	// ColorPresent and ColorAbsent are the display colors the UI renders
	// status cells with.
	ColorPresent = "#2e7d32"
	ColorAbsent  = "#c62828"

	// AlertSuspect flags a selfie-only presence: the class photo should
	// have corroborated it but did not.
	AlertSuspect = "SUSPECT: not seen in class photo"
	// AlertPhotoOnly flags a photo-only presence that lacks the stronger
	// selfie proof.
	AlertPhotoOnly = "Present (Photo), No QR/selfie check"

	// DateFormat is the canonical date key of an attendance day.
	DateFormat = "2006-01-02"
	// TimeFormat is the wall-clock format stored on selfie events.
	TimeFormat = "15:04"
	// NoTime is stored on events without a meaningful wall-clock time.
	NoTime = "--"
)

// MatchEvent is one piece of positive evidence that a student was present.
// Multiple events for the same student and date may coexist; reconciliation
// depends only on which methods are represented, never on count or order.
type MatchEvent struct {
	ID          int64
	StudentID   int64
	ClassroomID int64
	Date        string // DateFormat
	Time        string // TimeFormat or NoTime
	Method      Method
	CreatedAt   time.Time
}

// Flags records which evidence channels fired for one student on one date.
type Flags struct {
	Selfie bool
	Photo  bool
	Manual bool
}

// Record is the reconciled attendance view for one student on one date.
type Record struct {
	Roll      string `json:"roll"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Alert     string `json:"alert"`
	Color     string `json:"color"`
	IsPresent bool   `json:"is_present"`
}

// RosterEntry is the roster input to the view builder.
type RosterEntry struct {
	StudentID int64
	Roll      string
	Name      string
}

// Today returns the current date key.
func Today() string {
	return time.Now().Format(DateFormat)
}
