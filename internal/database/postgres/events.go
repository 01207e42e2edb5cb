package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
)

// EventRepository provides PostgreSQL-backed match event storage
type EventRepository struct {
	pool *Pool
}

// NewEventRepository creates a new PostgreSQL event repository
func NewEventRepository(pool *Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Append inserts a match event
func (r *EventRepository) Append(ctx context.Context, ev *attendance.MatchEvent) error {
	query := `
		INSERT INTO attendance_events (student_id, classroom_id, date, time, method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, ev.StudentID, ev.ClassroomID, ev.Date, ev.Time, string(ev.Method)).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("append match event: %w", err)
	}
	return nil
}

// QueryDay returns all events of a classroom for one date
func (r *EventRepository) QueryDay(ctx context.Context, classroomID int64, date string) ([]attendance.MatchEvent, error) {
	query := `
		SELECT id, student_id, classroom_id, date, time, method, created_at
		FROM attendance_events
		WHERE classroom_id = $1 AND date = $2
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, classroomID, date)
	if err != nil {
		return nil, fmt.Errorf("query match events: %w", err)
	}
	defer rows.Close()

	var events []attendance.MatchEvent
	for rows.Next() {
		var ev attendance.MatchEvent
		var method string
		if err := rows.Scan(&ev.ID, &ev.StudentID, &ev.ClassroomID, &ev.Date, &ev.Time, &method, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match event: %w", err)
		}
		ev.Method = attendance.Method(method)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match events: %w", err)
	}
	return events, nil
}

// DeleteStudentDay removes all events of a student for one date
func (r *EventRepository) DeleteStudentDay(ctx context.Context, studentID int64, date string) (int64, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM attendance_events WHERE student_id = $1 AND date = $2", studentID, date)
	if err != nil {
		return 0, fmt.Errorf("delete match events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return count, nil
}

// Verify interface compliance
var _ database.EventStore = (*EventRepository)(nil)
