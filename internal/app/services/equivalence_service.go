package services

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/pkg/apperrors"
	"github.com/meridian/academics/internal/pkg/logger"
)

// equivalenceStore curates equivalence edges.
type equivalenceStore interface {
	ActiveExistsForPair(ctx context.Context, low, high int64) (bool, error)
	Create(ctx context.Context, eq *models.CourseEquivalence) error
	Deactivate(ctx context.Context, id int64) error
}

// EquivalenceService handles director curation of course equivalences
type EquivalenceService struct {
	equivalences equivalenceStore
}

// NewEquivalenceService creates a new equivalence service instance
func NewEquivalenceService(equivalences equivalenceStore) *EquivalenceService {
	return &EquivalenceService{
		equivalences: equivalences,
	}
}

// CreateEquivalence declares a new active equivalence between two courses.
// The pair is canonicalized before the uniqueness check, so (a,b) and (b,a)
// count as the same equivalence.
func (s *EquivalenceService) CreateEquivalence(ctx context.Context, sourceCourseID, targetCourseID int64, eqType models.EquivalenceType, effectiveFrom time.Time, effectiveTo *time.Time) (*models.CourseEquivalence, error) {
	if sourceCourseID <= 0 || targetCourseID <= 0 {
		return nil, apperrors.ErrInvalidID
	}
	if sourceCourseID == targetCourseID {
		return nil, apperrors.ErrSelfEquivalence
	}

	eq := &models.CourseEquivalence{
		SourceCourseID: sourceCourseID,
		TargetCourseID: targetCourseID,
		Type:           eqType,
		EffectiveFrom:  effectiveFrom,
		EffectiveTo:    effectiveTo,
		Active:         true,
	}

	low, high := eq.CanonicalPair()
	exists, err := s.equivalences.ActiveExistsForPair(ctx, low, high)
	if err != nil {
		return nil, fmt.Errorf("error checking equivalence uniqueness: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEquivalenceExists
	}

	if err := s.equivalences.Create(ctx, eq); err != nil {
		return nil, fmt.Errorf("error creating equivalence: %w", err)
	}

	logger.Info().
		Int64("sourceCourseId", sourceCourseID).
		Int64("targetCourseId", targetCourseID).
		Str("type", string(eqType)).
		Msg("Equivalence created")
	return eq, nil
}

// DeactivateEquivalence retires an equivalence edge. Future progress
// resolutions stop using it; academic records already derived are
// untouched.
func (s *EquivalenceService) DeactivateEquivalence(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.ErrInvalidID
	}

	if err := s.equivalences.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("error deactivating equivalence: %w", err)
	}

	return nil
}
