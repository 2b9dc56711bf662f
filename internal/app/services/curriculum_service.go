package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/app/repositories"
	"github.com/meridian/academics/internal/pkg/apperrors"
)

// curriculumStore extends curriculum reads with assignment writes.
type curriculumStore interface {
	curriculumReader
	AssignStudentTx(ctx context.Context, tx pgx.Tx, studentID, versionID int64, now time.Time) (*models.StudentCurriculum, error)
}

// CurriculumService handles curriculum version assignment
type CurriculumService struct {
	curricula curriculumStore
	tx        txRunner
}

// NewCurriculumService creates a new curriculum service instance
func NewCurriculumService(curricula curriculumStore, tx txRunner) *CurriculumService {
	return &CurriculumService{
		curricula: curricula,
		tx:        tx,
	}
}

// AssignStudent assigns a student to a curriculum version, replacing any
// prior active assignment in the same transaction so at most one is active
// at any commit point.
func (s *CurriculumService) AssignStudent(ctx context.Context, studentID, curriculumVersionID int64, now time.Time) (*models.StudentCurriculum, error) {
	if studentID <= 0 || curriculumVersionID <= 0 {
		return nil, apperrors.ErrInvalidID
	}

	if _, err := s.curricula.GetVersionByID(ctx, curriculumVersionID); err != nil {
		if errors.Is(err, repositories.ErrCurriculumVersionNotFound) {
			return nil, apperrors.ErrCurriculumVersionNotFound
		}
		return nil, fmt.Errorf("error retrieving curriculum version: %w", err)
	}

	var assignment *models.StudentCurriculum
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		assignment, err = s.curricula.AssignStudentTx(ctx, tx, studentID, curriculumVersionID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// GetActiveAssignment returns the student's active curriculum assignment.
func (s *CurriculumService) GetActiveAssignment(ctx context.Context, studentID int64) (*models.StudentCurriculum, error) {
	if studentID <= 0 {
		return nil, apperrors.ErrInvalidID
	}

	assignment, err := s.curricula.GetActiveAssignment(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrAssignmentNotFound) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error retrieving curriculum assignment: %w", err)
	}

	return assignment, nil
}
