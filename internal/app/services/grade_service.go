package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/app/repositories"
	"github.com/meridian/academics/internal/db"
	"github.com/meridian/academics/internal/pkg/apperrors"
	"github.com/meridian/academics/internal/pkg/logger"
)

// txRunner runs a unit of work inside a storage-level transaction.
type txRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// gradeStore is the slice of the data-access layer for grade entries.
type gradeStore interface {
	GetByOfferingAndStudent(ctx context.Context, offeringID, studentID int64) (*models.GradeEntry, error)
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.GradeEntry, error)
	UpsertDraft(ctx context.Context, entry *models.GradeEntry) error
	SaveTx(ctx context.Context, tx pgx.Tx, entry *models.GradeEntry) error
}

// enrollmentReader reads an offering's roster.
type enrollmentReader interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error)
}

// offeringReader reads course offerings.
type offeringReader interface {
	GetByID(ctx context.Context, id int64) (*models.CourseOffering, error)
}

// GradeService handles draft grade entry and offering-wide publication
type GradeService struct {
	offerings   offeringReader
	enrollments enrollmentReader
	grades      gradeStore
	tx          txRunner
	maxGrade    float64
}

// NewGradeService creates a new grade service instance
func NewGradeService(offerings offeringReader, enrollments enrollmentReader, grades gradeStore, tx txRunner, maxGrade float64) *GradeService {
	return &GradeService{
		offerings:   offerings,
		enrollments: enrollments,
		grades:      grades,
		tx:          tx,
		maxGrade:    maxGrade,
	}
}

// SetDraftGrade writes or rewrites a student's draft grade on an offering.
// The entry is created on the first write. Published entries are frozen.
func (s *GradeService) SetDraftGrade(ctx context.Context, offeringID, studentID int64, grade float64, actor int64, now time.Time) error {
	if offeringID <= 0 || studentID <= 0 {
		return apperrors.ErrInvalidID
	}

	if _, err := s.offerings.GetByID(ctx, offeringID); err != nil {
		if errors.Is(err, repositories.ErrOfferingNotFound) {
			return apperrors.ErrOfferingNotFound
		}
		return fmt.Errorf("error retrieving offering: %w", err)
	}

	if err := s.requireEnrolled(ctx, offeringID, studentID); err != nil {
		return err
	}

	entry, err := s.grades.GetByOfferingAndStudent(ctx, offeringID, studentID)
	if err != nil {
		if !errors.Is(err, repositories.ErrGradeEntryNotFound) {
			return fmt.Errorf("error retrieving grade entry: %w", err)
		}
		entry = &models.GradeEntry{
			OfferingID: offeringID,
			StudentID:  studentID,
		}
	}

	next, err := entry.WithDraftGrade(grade, s.maxGrade, actor, now)
	if err != nil {
		return err
	}

	if err := s.grades.UpsertDraft(ctx, &next); err != nil {
		// A publish that raced this write leaves the row immutable.
		if errors.Is(err, repositories.ErrGradeEntryLocked) {
			return apperrors.ErrGradeEditLocked
		}
		return fmt.Errorf("error writing draft grade: %w", err)
	}

	return nil
}

// PublishGrades publishes every grade entry on an offering in one atomic
// step, after validating that each enrolled student has a draft. A failed
// validation mutates nothing.
func (s *GradeService) PublishGrades(ctx context.Context, offeringID int64, actor int64, now time.Time) error {
	if offeringID <= 0 {
		return apperrors.ErrInvalidID
	}

	if _, err := s.offerings.GetByID(ctx, offeringID); err != nil {
		if errors.Is(err, repositories.ErrOfferingNotFound) {
			return apperrors.ErrOfferingNotFound
		}
		return fmt.Errorf("error retrieving offering: %w", err)
	}

	enrollments, err := s.enrollments.ListByOffering(ctx, offeringID)
	if err != nil {
		return fmt.Errorf("error retrieving enrollments: %w", err)
	}

	entries, err := s.grades.ListByOffering(ctx, offeringID)
	if err != nil {
		return fmt.Errorf("error retrieving grade entries: %w", err)
	}

	entryByStudent := make(map[int64]*models.GradeEntry, len(entries))
	for _, entry := range entries {
		entryByStudent[entry.StudentID] = entry
	}

	var toPublish []*models.GradeEntry
	enrolled := 0
	for _, enrollment := range enrollments {
		if enrollment.Status != models.EnrollmentActive {
			continue
		}
		enrolled++

		entry, ok := entryByStudent[enrollment.StudentID]
		if !ok || (!entry.IsPublished && entry.DraftGrade == nil) {
			return apperrors.ErrGradesIncomplete
		}
		if !entry.IsPublished {
			toPublish = append(toPublish, entry)
		}
	}

	if enrolled == 0 {
		return apperrors.ErrGradesIncomplete
	}
	if len(toPublish) == 0 {
		return apperrors.ErrGradesAlreadyPublished
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, entry := range toPublish {
			published, err := entry.Published(actor, now)
			if err != nil {
				return err
			}
			if err := s.grades.SaveTx(ctx, tx, &published); err != nil {
				return fmt.Errorf("error saving published grade: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int64("offeringId", offeringID).
		Int("published", len(toPublish)).
		Msg("Grades published")
	return nil
}

// requireEnrolled checks that the student holds an active enrollment on the
// offering.
func (s *GradeService) requireEnrolled(ctx context.Context, offeringID, studentID int64) error {
	enrollments, err := s.enrollments.ListByOffering(ctx, offeringID)
	if err != nil {
		return fmt.Errorf("error retrieving enrollments: %w", err)
	}

	for _, enrollment := range enrollments {
		if enrollment.StudentID == studentID && enrollment.Status == models.EnrollmentActive {
			return nil
		}
	}

	return apperrors.ErrEnrollmentNotFound
}
