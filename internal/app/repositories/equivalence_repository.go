package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridian/academics/internal/app/models"
)

// Equivalence error types
var (
	ErrEquivalenceNotFound = errors.New("course equivalence not found")
)

// EquivalenceRepository handles database operations for course equivalences
type EquivalenceRepository struct {
	db *pgxpool.Pool
}

// NewEquivalenceRepository creates a new equivalence repository
func NewEquivalenceRepository(db *pgxpool.Pool) *EquivalenceRepository {
	return &EquivalenceRepository{
		db: db,
	}
}

// ListActive retrieves all currently-active equivalence edges
func (r *EquivalenceRepository) ListActive(ctx context.Context) ([]*models.CourseEquivalence, error) {
	query := `
		SELECT id, source_course_id, target_course_id, equivalence_type,
		       effective_from, effective_to, active
		FROM course_equivalences
		WHERE active = TRUE
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var equivalences []*models.CourseEquivalence
	for rows.Next() {
		var eq models.CourseEquivalence
		if err := rows.Scan(
			&eq.ID,
			&eq.SourceCourseID,
			&eq.TargetCourseID,
			&eq.Type,
			&eq.EffectiveFrom,
			&eq.EffectiveTo,
			&eq.Active,
		); err != nil {
			return nil, err
		}
		equivalences = append(equivalences, &eq)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return equivalences, nil
}

// ActiveExistsForPair checks whether an active equivalence already covers
// the canonicalized unordered pair (low, high)
func (r *EquivalenceRepository) ActiveExistsForPair(ctx context.Context, low, high int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM course_equivalences
			WHERE active = TRUE
			  AND LEAST(source_course_id, target_course_id) = $1
			  AND GREATEST(source_course_id, target_course_id) = $2
		)`,
		low, high).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking equivalence existence: %w", err)
	}

	return exists, nil
}

// Create creates a new course equivalence
func (r *EquivalenceRepository) Create(ctx context.Context, eq *models.CourseEquivalence) error {
	query := `
		INSERT INTO course_equivalences
			(source_course_id, target_course_id, equivalence_type, effective_from, effective_to, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		eq.SourceCourseID,
		eq.TargetCourseID,
		eq.Type,
		eq.EffectiveFrom,
		eq.EffectiveTo,
		eq.Active,
	).Scan(&eq.ID)
	if err != nil {
		return fmt.Errorf("error creating equivalence: %w", err)
	}

	return nil
}

// Deactivate marks an equivalence inactive; historical progress computations
// built on it are unaffected since the resolver only reads active edges
func (r *EquivalenceRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE course_equivalences
		SET active = FALSE
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deactivating equivalence: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrEquivalenceNotFound
	}

	return nil
}
