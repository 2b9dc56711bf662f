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

// Curriculum error types
var (
	ErrCurriculumVersionNotFound = errors.New("curriculum version not found")
	ErrAssignmentNotFound        = errors.New("student has no active curriculum assignment")
)

// CurriculumRepository handles database operations for curriculum versions,
// their required courses and student assignments
type CurriculumRepository struct {
	db *pgxpool.Pool
}

// NewCurriculumRepository creates a new curriculum repository
func NewCurriculumRepository(db *pgxpool.Pool) *CurriculumRepository {
	return &CurriculumRepository{
		db: db,
	}
}

// GetVersionByID retrieves a curriculum version by ID
func (r *CurriculumRepository) GetVersionByID(ctx context.Context, id int64) (*models.CurriculumVersion, error) {
	query := `
		SELECT id, career_id, code, name, effective_from, active
		FROM curriculum_versions
		WHERE id = $1
	`

	var version models.CurriculumVersion
	err := r.db.QueryRow(ctx, query, id).Scan(
		&version.ID,
		&version.CareerID,
		&version.Code,
		&version.Name,
		&version.EffectiveFrom,
		&version.Active,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCurriculumVersionNotFound
		}
		return nil, fmt.Errorf("error retrieving curriculum version: %w", err)
	}

	return &version, nil
}

// GetRequiredCourses retrieves the ordered required-course entries of a
// curriculum version. Electives (mandatory = FALSE) are listed in the
// curriculum but never gate progress or certificates.
func (r *CurriculumRepository) GetRequiredCourses(ctx context.Context, versionID int64) ([]*models.CurriculumCourse, error) {
	query := `
		SELECT curriculum_version_id, course_id, suggested_term, mandatory
		FROM curriculum_courses
		WHERE curriculum_version_id = $1 AND mandatory = TRUE
		ORDER BY suggested_term, course_id
	`

	rows, err := r.db.Query(ctx, query, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.CurriculumCourse
	for rows.Next() {
		var course models.CurriculumCourse
		if err := rows.Scan(
			&course.CurriculumVersionID,
			&course.CourseID,
			&course.SuggestedTerm,
			&course.Mandatory,
		); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// GetActiveAssignment retrieves the student's single active curriculum
// assignment
func (r *CurriculumRepository) GetActiveAssignment(ctx context.Context, studentID int64) (*models.StudentCurriculum, error) {
	query := `
		SELECT id, student_id, curriculum_version_id, active, assigned_at
		FROM student_curricula
		WHERE student_id = $1 AND active = TRUE
	`

	var assignment models.StudentCurriculum
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&assignment.ID,
		&assignment.StudentID,
		&assignment.CurriculumVersionID,
		&assignment.Active,
		&assignment.AssignedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error retrieving curriculum assignment: %w", err)
	}

	return &assignment, nil
}

// AssignStudentTx deactivates any prior assignment and inserts the new one
// within the caller's transaction, keeping "one active assignment per
// student" true at every commit point
func (r *CurriculumRepository) AssignStudentTx(ctx context.Context, tx pgx.Tx, studentID, versionID int64, now time.Time) (*models.StudentCurriculum, error) {
	_, err := tx.Exec(ctx, `
		UPDATE student_curricula
		SET active = FALSE
		WHERE student_id = $1 AND active = TRUE`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("error deactivating prior assignment: %w", err)
	}

	assignment := &models.StudentCurriculum{
		StudentID:           studentID,
		CurriculumVersionID: versionID,
		Active:              true,
		AssignedAt:          now,
	}

	query := `
		INSERT INTO student_curricula (student_id, curriculum_version_id, active, assigned_at)
		VALUES ($1, $2, TRUE, $3)
		RETURNING id
	`

	err = tx.QueryRow(ctx, query, studentID, versionID, now).Scan(&assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("error creating curriculum assignment: %w", err)
	}

	return assignment, nil
}
