package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridian/academics/internal/app/models"
)

// AcademicRecordRepository handles database operations for academic records.
// Records are a derived cache regenerated at offering closure, never edited
// in place.
type AcademicRecordRepository struct {
	db *pgxpool.Pool
}

// NewAcademicRecordRepository creates a new academic record repository
func NewAcademicRecordRepository(db *pgxpool.Pool) *AcademicRecordRepository {
	return &AcademicRecordRepository{
		db: db,
	}
}

// ListByStudent retrieves all academic records for a student, newest first
func (r *AcademicRecordRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.AcademicRecord, error) {
	query := `
		SELECT id, student_id, course_id, period, grade, credits, result_status, professor_name, created_at
		FROM academic_records
		WHERE student_id = $1
		ORDER BY created_at DESC, period DESC
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AcademicRecord
	for rows.Next() {
		var record models.AcademicRecord
		if err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&record.CourseID,
			&record.Period,
			&record.Grade,
			&record.Credits,
			&record.ResultStatus,
			&record.ProfessorName,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteForStudentCoursePeriodTx removes any pre-existing records for the
// (student, course, period) triple within the caller's transaction. Closure
// calls this before inserting, which keeps repeated closures from
// duplicating history.
func (r *AcademicRecordRepository) DeleteForStudentCoursePeriodTx(ctx context.Context, tx pgx.Tx, studentID, courseID int64, period string) error {
	query := `
		DELETE FROM academic_records
		WHERE student_id = $1 AND course_id = $2 AND period = $3
	`

	_, err := tx.Exec(ctx, query, studentID, courseID, period)
	if err != nil {
		return fmt.Errorf("error deleting academic records: %w", err)
	}

	return nil
}

// InsertTx inserts a freshly-derived academic record within the caller's
// transaction
func (r *AcademicRecordRepository) InsertTx(ctx context.Context, tx pgx.Tx, record *models.AcademicRecord) error {
	query := `
		INSERT INTO academic_records
			(student_id, course_id, period, grade, credits, result_status, professor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		record.StudentID,
		record.CourseID,
		record.Period,
		record.Grade,
		record.Credits,
		record.ResultStatus,
		record.ProfessorName,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("error inserting academic record: %w", err)
	}

	return nil
}
