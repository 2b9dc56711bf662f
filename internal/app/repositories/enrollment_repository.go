package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridian/academics/internal/app/models"
)

// Enrollment error types
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
	}
}

// ListByOffering retrieves all enrollments for an offering
func (r *EnrollmentRepository) ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error) {
	query := `
		SELECT id, student_id, offering_id, status, enrolled_at, closed_at
		FROM enrollments
		WHERE offering_id = $1
		ORDER BY student_id
	`

	rows, err := r.db.Query(ctx, query, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.StudentID,
			&enrollment.OfferingID,
			&enrollment.Status,
			&enrollment.EnrolledAt,
			&enrollment.ClosedAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// ExistsTx checks for an existing (student, offering) enrollment inside the
// caller's transaction
func (r *EnrollmentRepository) ExistsTx(ctx context.Context, tx pgx.Tx, studentID, offeringID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND offering_id = $2)`,
		studentID, offeringID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking enrollment existence: %w", err)
	}

	return exists, nil
}

// CreateTx inserts an enrollment within the caller's transaction
func (r *EnrollmentRepository) CreateTx(ctx context.Context, tx pgx.Tx, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, offering_id, status, enrolled_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		enrollment.StudentID,
		enrollment.OfferingID,
		enrollment.Status,
		enrollment.EnrolledAt,
	).Scan(&enrollment.ID)
	if err != nil {
		return fmt.Errorf("error creating enrollment: %w", err)
	}

	return nil
}

// CloseActiveByOfferingTx closes every active enrollment on an offering,
// stamping the close time, within the caller's transaction
func (r *EnrollmentRepository) CloseActiveByOfferingTx(ctx context.Context, tx pgx.Tx, offeringID int64, closedAt time.Time) error {
	query := `
		UPDATE enrollments
		SET status = $1, closed_at = $2
		WHERE offering_id = $3 AND status = $4
	`

	_, err := tx.Exec(ctx, query, models.EnrollmentClosed, closedAt, offeringID, models.EnrollmentActive)
	if err != nil {
		return fmt.Errorf("error closing enrollments: %w", err)
	}

	return nil
}
