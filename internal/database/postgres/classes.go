package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// ClassRepository provides PostgreSQL-backed classroom storage
type ClassRepository struct {
	pool *Pool
}

// NewClassRepository creates a new PostgreSQL class repository
func NewClassRepository(pool *Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// Create inserts a classroom
func (r *ClassRepository) Create(ctx context.Context, class *database.ClassRoom) error {
	query := `
		INSERT INTO classrooms (name, batch, professor_id, folder_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, class.Name, class.Batch, class.ProfessorID, class.FolderPath).Scan(&class.ID)
	if err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Get returns a classroom by ID, or nil if not found
func (r *ClassRepository) Get(ctx context.Context, id int64) (*database.ClassRoom, error) {
	query := `
		SELECT id, name, batch, professor_id, folder_path
		FROM classrooms
		WHERE id = $1
	`

	var c database.ClassRoom
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Batch, &c.ProfessorID, &c.FolderPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query classroom: %w", err)
	}
	return &c, nil
}

// ListByProfessor returns a professor's classrooms in creation order
func (r *ClassRepository) ListByProfessor(ctx context.Context, professorID int64) ([]database.ClassRoom, error) {
	query := `
		SELECT id, name, batch, professor_id, folder_path
		FROM classrooms
		WHERE professor_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, professorID)
	if err != nil {
		return nil, fmt.Errorf("query classrooms: %w", err)
	}
	defer rows.Close()

	var classes []database.ClassRoom
	for rows.Next() {
		var c database.ClassRoom
		if err := rows.Scan(&c.ID, &c.Name, &c.Batch, &c.ProfessorID, &c.FolderPath); err != nil {
			return nil, fmt.Errorf("scan classroom: %w", err)
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classrooms: %w", err)
	}
	return classes, nil
}

// Verify interface compliance
var _ database.ClassStore = (*ClassRepository)(nil)
