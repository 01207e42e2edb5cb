package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// RosterRepository provides PostgreSQL-backed student storage
type RosterRepository struct {
	pool *Pool
}

// NewRosterRepository creates a new PostgreSQL roster repository
func NewRosterRepository(pool *Pool) *RosterRepository {
	return &RosterRepository{pool: pool}
}

// CreateStudent inserts a student
func (r *RosterRepository) CreateStudent(ctx context.Context, student *database.Student) error {
	query := `
		INSERT INTO students (roll_number, name, classroom_id, folder_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, student.RollNumber, student.Name, student.ClassroomID, student.FolderPath).Scan(&student.ID)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// ListStudents returns a classroom's roster in creation order
func (r *RosterRepository) ListStudents(ctx context.Context, classroomID int64) ([]database.Student, error) {
	query := `
		SELECT id, roll_number, name, classroom_id, folder_path
		FROM students
		WHERE classroom_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, classroomID)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []database.Student
	for rows.Next() {
		var s database.Student
		if err := rows.Scan(&s.ID, &s.RollNumber, &s.Name, &s.ClassroomID, &s.FolderPath); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// GetStudentByRoll returns a student by classroom and roll number, or nil if not found
func (r *RosterRepository) GetStudentByRoll(ctx context.Context, classroomID int64, roll string) (*database.Student, error) {
	query := `
		SELECT id, roll_number, name, classroom_id, folder_path
		FROM students
		WHERE classroom_id = $1 AND roll_number = $2
	`

	var s database.Student
	err := r.pool.QueryRow(ctx, query, classroomID, roll).Scan(&s.ID, &s.RollNumber, &s.Name, &s.ClassroomID, &s.FolderPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	return &s, nil
}

// Verify interface compliance
var _ database.RosterStore = (*RosterRepository)(nil)
