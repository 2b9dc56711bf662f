package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridian/academics/internal/app/models"
)

// Offering error types
var (
	ErrOfferingNotFound  = errors.New("course offering not found")
	ErrProfessorNotFound = errors.New("professor not found")
)

const offeringColumns = `id, course_id, career_id, professor_id, section, term, status, seats_total, seats_taken`

// OfferingRepository handles database operations for course offerings
type OfferingRepository struct {
	db *pgxpool.Pool
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{
		db: db,
	}
}

func scanOffering(row pgx.Row) (*models.CourseOffering, error) {
	var offering models.CourseOffering
	err := row.Scan(
		&offering.ID,
		&offering.CourseID,
		&offering.CareerID,
		&offering.ProfessorID,
		&offering.Section,
		&offering.Term,
		&offering.Status,
		&offering.SeatsTotal,
		&offering.SeatsTaken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}
	return &offering, nil
}

// GetByID retrieves a course offering by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	query := `SELECT ` + offeringColumns + ` FROM course_offerings WHERE id = $1`
	return scanOffering(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdateTx retrieves an offering inside the caller's transaction
// with a row lock, so concurrent enrollments or closures serialize on it
func (r *OfferingRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*models.CourseOffering, error) {
	query := `SELECT ` + offeringColumns + ` FROM course_offerings WHERE id = $1 FOR UPDATE`
	return scanOffering(tx.QueryRow(ctx, query, id))
}

// Create creates a new course offering in Draft state
func (r *OfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	query := `
		INSERT INTO course_offerings
			(course_id, career_id, professor_id, section, term, status, seats_total, seats_taken)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		offering.CourseID,
		offering.CareerID,
		offering.ProfessorID,
		offering.Section,
		offering.Term,
		offering.Status,
		offering.SeatsTotal,
		offering.SeatsTaken,
	).Scan(&offering.ID)
	if err != nil {
		return fmt.Errorf("error creating offering: %w", err)
	}

	return nil
}

// UpdateStatus persists a status transition computed by the domain model
func (r *OfferingRepository) UpdateStatus(ctx context.Context, id int64, status models.OfferingStatus) error {
	query := `UPDATE course_offerings SET status = $1 WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating offering status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOfferingNotFound
	}

	return nil
}

// UpdateStatusTx persists a status transition within the caller's transaction
func (r *OfferingRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status models.OfferingStatus) error {
	query := `UPDATE course_offerings SET status = $1 WHERE id = $2`

	cmdTag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating offering status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOfferingNotFound
	}

	return nil
}

// UpdateSeatsTx persists the seat counter within the caller's transaction
func (r *OfferingRepository) UpdateSeatsTx(ctx context.Context, tx pgx.Tx, id int64, seatsTaken int) error {
	query := `UPDATE course_offerings SET seats_taken = $1 WHERE id = $2`

	cmdTag, err := tx.Exec(ctx, query, seatsTaken, id)
	if err != nil {
		return fmt.Errorf("error updating offering seats: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOfferingNotFound
	}

	return nil
}

// GetProfessorName retrieves a professor's display name for snapshotting
// into academic records
func (r *OfferingRepository) GetProfessorName(ctx context.Context, professorID int64) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT full_name FROM professors WHERE id = $1`, professorID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfessorNotFound
		}
		return "", fmt.Errorf("error retrieving professor: %w", err)
	}
	return name, nil
}
