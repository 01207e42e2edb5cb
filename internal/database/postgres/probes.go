package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// ProbeRepository provides PostgreSQL-backed probe audit storage with
// pgvector similarity search over the logged embeddings.
type ProbeRepository struct {
	pool *Pool
}

// NewProbeRepository creates a new PostgreSQL probe repository
func NewProbeRepository(pool *Pool) *ProbeRepository {
	return &ProbeRepository{pool: pool}
}

// Append records a verification attempt
func (r *ProbeRepository) Append(ctx context.Context, probe *database.Probe) error {
	query := `
		INSERT INTO probes (id, student_id, classroom_id, kind, matched, distance, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7::vector)
		RETURNING created_at
	`

	vec := pgvector.NewVector(probe.Embedding)
	err := r.pool.QueryRow(ctx, query,
		probe.ID, probe.StudentID, probe.ClassroomID, probe.Kind, probe.Matched, probe.Distance, vec,
	).Scan(&probe.CreatedAt)
	if err != nil {
		return fmt.Errorf("append probe: %w", err)
	}
	return nil
}

// FindSimilar returns the probes closest to the embedding by cosine distance
func (r *ProbeRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]database.Probe, []float64, error) {
	query := `
		SELECT id, student_id, classroom_id, kind, matched, distance, embedding, created_at,
		       embedding <=> $1::vector AS query_distance
		FROM probes
		ORDER BY query_distance
		LIMIT $2
	`

	vec := pgvector.NewVector(embedding)
	rows, err := r.pool.Query(ctx, query, vec, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query similar probes: %w", err)
	}
	defer rows.Close()

	var probes []database.Probe
	var distances []float64
	for rows.Next() {
		var p database.Probe
		var v pgvector.Vector
		var dist float64
		if err := rows.Scan(
			&p.ID, &p.StudentID, &p.ClassroomID, &p.Kind, &p.Matched, &p.Distance, &v, &p.CreatedAt, &dist,
		); err != nil {
			return nil, nil, fmt.Errorf("scan probe: %w", err)
		}
		p.Embedding = v.Slice()
		probes = append(probes, p)
		distances = append(distances, dist)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate probes: %w", err)
	}
	return probes, distances, nil
}

// CountByStudent returns the number of logged probes for a student
func (r *ProbeRepository) CountByStudent(ctx context.Context, studentID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM probes WHERE student_id = $1", studentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count probes: %w", err)
	}
	return count, nil
}

// Verify interface compliance
var _ database.ProbeLog = (*ProbeRepository)(nil)
