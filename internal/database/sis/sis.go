// Package sis reads rosters from an upstream student information system
// over MySQL. Access is read-only; the attendance database is never
// written back.
package sis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool manages a MySQL connection pool to the student information system.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new SIS connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("SIS DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SIS database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SIS database: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Enrollment is one student row from the upstream enrollment table.
type Enrollment struct {
	RollNumber string
	Name       string
	CourseCode string
	Batch      string
}

// ListEnrollments returns all enrollments for a course and batch, ordered
// by roll number.
func (p *Pool) ListEnrollments(ctx context.Context, courseCode, batch string) ([]Enrollment, error) {
	query := `
		SELECT roll_number, student_name, course_code, batch
		FROM enrollments
		WHERE course_code = ? AND batch = ?
		ORDER BY roll_number
	`

	rows, err := p.db.QueryContext(ctx, query, courseCode, batch)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.RollNumber, &e.Name, &e.CourseCode, &e.Batch); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return enrollments, nil
}
