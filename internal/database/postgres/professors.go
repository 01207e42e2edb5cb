package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// ProfessorRepository provides PostgreSQL-backed professor storage
type ProfessorRepository struct {
	pool *Pool
}

// NewProfessorRepository creates a new PostgreSQL professor repository
func NewProfessorRepository(pool *Pool) *ProfessorRepository {
	return &ProfessorRepository{pool: pool}
}

// Create inserts a professor, failing on duplicate usernames
func (r *ProfessorRepository) Create(ctx context.Context, prof *database.Professor) error {
	query := `
		INSERT INTO professors (username, password)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, prof.Username, prof.Password).Scan(&prof.ID, &prof.CreatedAt)
	if err != nil {
		return fmt.Errorf("create professor: %w", err)
	}
	return nil
}

// GetByUsername returns a professor, or nil if not found
func (r *ProfessorRepository) GetByUsername(ctx context.Context, username string) (*database.Professor, error) {
	query := `
		SELECT id, username, password, created_at
		FROM professors
		WHERE username = $1
	`

	var p database.Professor
	err := r.pool.QueryRow(ctx, query, username).Scan(&p.ID, &p.Username, &p.Password, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query professor: %w", err)
	}
	return &p, nil
}

// Verify interface compliance
var _ database.ProfessorStore = (*ProfessorRepository)(nil)
