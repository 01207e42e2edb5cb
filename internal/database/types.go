package database

import "time"

// Professor is an account that owns classes.
type Professor struct {
	ID        int64
	Username  string
	Password  string
	CreatedAt time.Time
}

// ClassRoom groups students under one professor.
type ClassRoom struct {
	ID          int64
	Name        string
	Batch       string
	ProfessorID int64
	FolderPath  string // class reference image folder
}

// Student is one roster entry.
type Student struct {
	ID          int64
	RollNumber  string
	Name        string
	ClassroomID int64
	FolderPath  string // student reference image folder
}

// Probe is one audit-log entry for a verification attempt. The embedding is
// stored for later review and similarity lookup; it is never used for
// matching, which always rebuilds galleries from the stored images.
type Probe struct {
	ID          string // uuid
	StudentID   int64
	ClassroomID int64
	Kind        string // "selfie" or "face"
	Matched     bool
	Distance    float64
	Embedding   []float32
	CreatedAt   time.Time
}
