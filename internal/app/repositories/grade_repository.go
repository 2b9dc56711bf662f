package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridian/academics/internal/app/models"
)

// Grade entry error types
var (
	ErrGradeEntryNotFound = errors.New("grade entry not found")
	ErrGradeEntryLocked   = errors.New("grade entry is published")
)

const gradeEntryColumns = `id, offering_id, student_id, draft_grade, published_grade, is_published, updated_by, updated_at, published_at`

// GradeRepository handles database operations for grade entries
type GradeRepository struct {
	db *pgxpool.Pool
}

// NewGradeRepository creates a new grade repository
func NewGradeRepository(db *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{
		db: db,
	}
}

func scanGradeEntry(row pgx.Row) (*models.GradeEntry, error) {
	var entry models.GradeEntry
	err := row.Scan(
		&entry.ID,
		&entry.OfferingID,
		&entry.StudentID,
		&entry.DraftGrade,
		&entry.PublishedGrade,
		&entry.IsPublished,
		&entry.UpdatedBy,
		&entry.UpdatedAt,
		&entry.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGradeEntryNotFound
		}
		return nil, fmt.Errorf("error retrieving grade entry: %w", err)
	}
	return &entry, nil
}

// GetByOfferingAndStudent retrieves the grade entry for one (offering,
// student) pair
func (r *GradeRepository) GetByOfferingAndStudent(ctx context.Context, offeringID, studentID int64) (*models.GradeEntry, error) {
	query := `SELECT ` + gradeEntryColumns + ` FROM grade_entries WHERE offering_id = $1 AND student_id = $2`
	return scanGradeEntry(r.db.QueryRow(ctx, query, offeringID, studentID))
}

// ListByOffering retrieves all grade entries attached to an offering
func (r *GradeRepository) ListByOffering(ctx context.Context, offeringID int64) ([]*models.GradeEntry, error) {
	query := `SELECT ` + gradeEntryColumns + ` FROM grade_entries WHERE offering_id = $1 ORDER BY student_id`

	rows, err := r.db.Query(ctx, query, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.GradeEntry
	for rows.Next() {
		var entry models.GradeEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.OfferingID,
			&entry.StudentID,
			&entry.DraftGrade,
			&entry.PublishedGrade,
			&entry.IsPublished,
			&entry.UpdatedBy,
			&entry.UpdatedAt,
			&entry.PublishedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpsertDraft inserts the entry on first draft write, or replaces the draft
// on later writes. The is_published guard makes a concurrent publish win:
// the update silently matches zero rows, which surfaces as a locked entry.
func (r *GradeRepository) UpsertDraft(ctx context.Context, entry *models.GradeEntry) error {
	query := `
		INSERT INTO grade_entries (offering_id, student_id, draft_grade, is_published, updated_by, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		ON CONFLICT (offering_id, student_id) DO UPDATE
		SET draft_grade = EXCLUDED.draft_grade,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at
		WHERE grade_entries.is_published = FALSE
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		entry.OfferingID,
		entry.StudentID,
		entry.DraftGrade,
		entry.UpdatedBy,
		entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGradeEntryLocked
		}
		return fmt.Errorf("error writing draft grade: %w", err)
	}

	return nil
}

// SaveTx persists a fully-computed entry state within the caller's
// transaction
func (r *GradeRepository) SaveTx(ctx context.Context, tx pgx.Tx, entry *models.GradeEntry) error {
	query := `
		UPDATE grade_entries
		SET draft_grade = $1, published_grade = $2, is_published = $3,
		    updated_by = $4, updated_at = $5, published_at = $6
		WHERE id = $7
	`

	cmdTag, err := tx.Exec(ctx, query,
		entry.DraftGrade,
		entry.PublishedGrade,
		entry.IsPublished,
		entry.UpdatedBy,
		entry.UpdatedAt,
		entry.PublishedAt,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("error saving grade entry: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrGradeEntryNotFound
	}

	return nil
}
