// Package database defines the storage interfaces and shared entity types.
// The postgres subpackage provides the production implementation; the mock
// subpackage provides in-memory implementations for tests.
package database

import (
	"context"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// ProfessorStore manages professor accounts.
type ProfessorStore interface {
	// Create inserts a professor. Duplicate usernames fail.
	Create(ctx context.Context, prof *Professor) error
	// GetByUsername returns a professor, or nil if not found.
	GetByUsername(ctx context.Context, username string) (*Professor, error)
}

// ClassStore manages classrooms.
type ClassStore interface {
	// Create inserts a classroom.
	Create(ctx context.Context, class *ClassRoom) error
	// Get returns a classroom by ID, or nil if not found.
	Get(ctx context.Context, id int64) (*ClassRoom, error)
	// ListByProfessor returns a professor's classrooms in creation order.
	ListByProfessor(ctx context.Context, professorID int64) ([]ClassRoom, error)
}

// RosterStore manages students.
type RosterStore interface {
	// CreateStudent inserts a student.
	CreateStudent(ctx context.Context, student *Student) error
	// ListStudents returns a classroom's roster in creation order.
	ListStudents(ctx context.Context, classroomID int64) ([]Student, error)
	// GetStudentByRoll returns a student by classroom and roll number,
	// or nil if not found.
	GetStudentByRoll(ctx context.Context, classroomID int64, roll string) (*Student, error)
}

// EventStore is the append-only match event log. Events are the durable
// source of truth for attendance; no derived status is ever stored.
type EventStore interface {
	// Append inserts a match event. Inserts are additive; a second event
	// for the same student, date, and method is harmless double-evidence.
	Append(ctx context.Context, ev *attendance.MatchEvent) error
	// QueryDay returns all events of a classroom for one date.
	QueryDay(ctx context.Context, classroomID int64, date string) ([]attendance.MatchEvent, error)
	// DeleteStudentDay removes all events of a student for one date and
	// returns the number of rows removed. Used by the manual toggle-off.
	DeleteStudentDay(ctx context.Context, studentID int64, date string) (int64, error)
}

// ProbeLog is the verification audit log.
type ProbeLog interface {
	// Append records a verification attempt.
	Append(ctx context.Context, probe *Probe) error
	// FindSimilar returns the probes closest to the embedding by cosine
	// distance, with their distances, ordered nearest first.
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]Probe, []float64, error)
}
