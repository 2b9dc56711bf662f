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
	"github.com/meridian/academics/internal/pkg/logger"
)

// offeringStore is the slice of the data-access layer for offerings,
// including the row-locked and transaction-scoped variants the closure unit
// of work relies on.
type offeringStore interface {
	Create(ctx context.Context, offering *models.CourseOffering) error
	GetByID(ctx context.Context, id int64) (*models.CourseOffering, error)
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*models.CourseOffering, error)
	UpdateStatus(ctx context.Context, id int64, status models.OfferingStatus) error
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status models.OfferingStatus) error
	UpdateSeatsTx(ctx context.Context, tx pgx.Tx, id int64, seatsTaken int) error
	GetProfessorName(ctx context.Context, professorID int64) (string, error)
}

// enrollmentStore reads and mutates an offering's roster.
type enrollmentStore interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error)
	ExistsTx(ctx context.Context, tx pgx.Tx, studentID, offeringID int64) (bool, error)
	CreateTx(ctx context.Context, tx pgx.Tx, enrollment *models.Enrollment) error
	CloseActiveByOfferingTx(ctx context.Context, tx pgx.Tx, offeringID int64, closedAt time.Time) error
}

// gradeLister reads the grade entries attached to an offering.
type gradeLister interface {
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.GradeEntry, error)
}

// courseReader reads catalog courses.
type courseReader interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// recordWriter replaces academic records inside the closure transaction.
type recordWriter interface {
	DeleteForStudentCoursePeriodTx(ctx context.Context, tx pgx.Tx, studentID, courseID int64, period string) error
	InsertTx(ctx context.Context, tx pgx.Tx, record *models.AcademicRecord) error
}

// OfferingService drives the offering lifecycle: publication, activation,
// student enrollment and the closure unit of work that regenerates the
// permanent grade history.
type OfferingService struct {
	offerings    offeringStore
	enrollments  enrollmentStore
	grades       gradeLister
	courses      courseReader
	records      recordWriter
	tx           txRunner
	passingGrade float64
}

// NewOfferingService creates a new offering service instance
func NewOfferingService(offerings offeringStore, enrollments enrollmentStore, grades gradeLister, courses courseReader, records recordWriter, tx txRunner, passingGrade float64) *OfferingService {
	return &OfferingService{
		offerings:    offerings,
		enrollments:  enrollments,
		grades:       grades,
		courses:      courses,
		records:      records,
		tx:           tx,
		passingGrade: passingGrade,
	}
}

// CreateOffering registers a new Draft section of a course for a term. The
// course must exist and the section needs at least one seat; professors can
// be attached later, before closure.
func (s *OfferingService) CreateOffering(ctx context.Context, offering *models.CourseOffering) (*models.CourseOffering, error) {
	if offering.CourseID <= 0 {
		return nil, apperrors.ErrInvalidID
	}
	if offering.SeatsTotal <= 0 || offering.Term == "" {
		return nil, apperrors.ErrValidation
	}

	if _, err := s.courses.GetByID(ctx, offering.CourseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	offering.Status = models.OfferingDraft
	offering.SeatsTaken = 0
	if err := s.offerings.Create(ctx, offering); err != nil {
		return nil, fmt.Errorf("error creating offering: %w", err)
	}

	logger.Info().
		Int64("offeringId", offering.ID).
		Int64("courseId", offering.CourseID).
		Str("term", offering.Term).
		Msg("Offering created")
	return offering, nil
}

// PublishOffering moves a draft offering to Published, opening it for
// enrollment.
func (s *OfferingService) PublishOffering(ctx context.Context, offeringID int64) error {
	return s.transition(ctx, offeringID, models.CourseOffering.Publish)
}

// ActivateOffering moves a published offering to Active; the roster is
// frozen from here on.
func (s *OfferingService) ActivateOffering(ctx context.Context, offeringID int64) error {
	return s.transition(ctx, offeringID, models.CourseOffering.Activate)
}

func (s *OfferingService) transition(ctx context.Context, offeringID int64, step func(models.CourseOffering) (models.CourseOffering, error)) error {
	if offeringID <= 0 {
		return apperrors.ErrInvalidID
	}

	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		if errors.Is(err, repositories.ErrOfferingNotFound) {
			return apperrors.ErrOfferingNotFound
		}
		return fmt.Errorf("error retrieving offering: %w", err)
	}

	next, err := step(*offering)
	if err != nil {
		return err
	}

	if err := s.offerings.UpdateStatus(ctx, offeringID, next.Status); err != nil {
		return fmt.Errorf("error updating offering status: %w", err)
	}

	return nil
}

// Enroll enrolls a student into a published offering with a free seat. The
// row lock on the offering serializes concurrent enrollments, so the seat
// counter can never pass seatsTotal.
func (s *OfferingService) Enroll(ctx context.Context, offeringID, studentID int64, now time.Time) error {
	if offeringID <= 0 || studentID <= 0 {
		return apperrors.ErrInvalidID
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		offering, err := s.offerings.GetByIDForUpdateTx(ctx, tx, offeringID)
		if err != nil {
			if errors.Is(err, repositories.ErrOfferingNotFound) {
				return apperrors.ErrOfferingNotFound
			}
			return fmt.Errorf("error retrieving offering: %w", err)
		}

		exists, err := s.enrollments.ExistsTx(ctx, tx, studentID, offeringID)
		if err != nil {
			return fmt.Errorf("error checking enrollment: %w", err)
		}
		if exists {
			return apperrors.ErrEnrollmentExists
		}

		next, err := offering.WithSeatTaken()
		if err != nil {
			return err
		}

		enrollment := &models.Enrollment{
			StudentID:  studentID,
			OfferingID: offeringID,
			Status:     models.EnrollmentActive,
			EnrolledAt: now,
		}
		if err := s.enrollments.CreateTx(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("error creating enrollment: %w", err)
		}

		if err := s.offerings.UpdateSeatsTx(ctx, tx, offeringID, next.SeatsTaken); err != nil {
			return fmt.Errorf("error updating seats: %w", err)
		}

		return nil
	})
}

// CloseOffering transitions an offering to its terminal Closed state and
// regenerates the academic records of every enrolled student, all inside a
// single transaction. Preconditions are checked in order; the first
// violation aborts with no partial writes. Closing replaces any pre-existing
// records for the same (student, course, term), so a duplicate invocation
// artifact cannot duplicate history.
func (s *OfferingService) CloseOffering(ctx context.Context, offeringID int64, actor int64, now time.Time) error {
	if offeringID <= 0 {
		return apperrors.ErrInvalidID
	}

	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		if errors.Is(err, repositories.ErrOfferingNotFound) {
			return apperrors.ErrOfferingNotFound
		}
		return fmt.Errorf("error retrieving offering: %w", err)
	}
	if offering.Status == models.OfferingClosed {
		return apperrors.ErrOfferingAlreadyClosed
	}

	course, err := s.courses.GetByID(ctx, offering.CourseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error retrieving course: %w", err)
	}

	// Snapshot the professor's display name now so a later reassignment
	// cannot rewrite history.
	professorName := ""
	if offering.ProfessorID != nil {
		professorName, err = s.offerings.GetProfessorName(ctx, *offering.ProfessorID)
		if err != nil {
			return fmt.Errorf("error retrieving professor: %w", err)
		}
	}

	var students int
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.offerings.GetByIDForUpdateTx(ctx, tx, offeringID)
		if err != nil {
			if errors.Is(err, repositories.ErrOfferingNotFound) {
				return apperrors.ErrOfferingNotFound
			}
			return fmt.Errorf("error locking offering: %w", err)
		}

		// Roster and grades are read under the offering row lock. A
		// concurrent enrollment either committed before the lock and is
		// counted here, or is still blocked on the lock and fails its
		// state check once the offering is Closed.
		entries, err := s.grades.ListByOffering(ctx, offeringID)
		if err != nil {
			return fmt.Errorf("error retrieving grade entries: %w", err)
		}

		// An offering with zero graded students cannot be closed; same
		// condition as unpublished grades.
		gradesPublished := len(entries) > 0
		for _, entry := range entries {
			if !entry.IsPublished {
				gradesPublished = false
				break
			}
		}

		closed, err := locked.Close(gradesPublished)
		if err != nil {
			return err
		}

		enrollments, err := s.enrollments.ListByOffering(ctx, offeringID)
		if err != nil {
			return fmt.Errorf("error retrieving enrollments: %w", err)
		}
		students = len(enrollments)

		gradeByStudent := make(map[int64]float64, len(entries))
		for _, entry := range entries {
			if entry.PublishedGrade != nil {
				gradeByStudent[entry.StudentID] = *entry.PublishedGrade
			}
		}

		if err := s.offerings.UpdateStatusTx(ctx, tx, offeringID, closed.Status); err != nil {
			return fmt.Errorf("error closing offering: %w", err)
		}

		if err := s.enrollments.CloseActiveByOfferingTx(ctx, tx, offeringID, now); err != nil {
			return err
		}

		for _, enrollment := range enrollments {
			if err := s.records.DeleteForStudentCoursePeriodTx(ctx, tx, enrollment.StudentID, offering.CourseID, offering.Term); err != nil {
				return err
			}

			// Precondition 2 guarantees a published grade; the zero
			// fallback keeps the record derivable even if it did not.
			grade := gradeByStudent[enrollment.StudentID]
			status := models.ResultFailed
			if grade >= s.passingGrade {
				status = models.ResultPassed
			}

			record := &models.AcademicRecord{
				StudentID:     enrollment.StudentID,
				CourseID:      offering.CourseID,
				Period:        offering.Term,
				Grade:         grade,
				Credits:       course.Credits,
				ResultStatus:  status,
				ProfessorName: professorName,
				CreatedAt:     now,
			}
			if err := s.records.InsertTx(ctx, tx, record); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int64("offeringId", offeringID).
		Int64("actor", actor).
		Int("students", students).
		Str("term", offering.Term).
		Msg("Offering closed")
	return nil
}
