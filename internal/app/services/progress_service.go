package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/app/repositories"
	"github.com/meridian/academics/internal/pkg/apperrors"
)

// curriculumReader is the slice of the data-access layer the resolver needs
// for curriculum data.
type curriculumReader interface {
	GetVersionByID(ctx context.Context, id int64) (*models.CurriculumVersion, error)
	GetRequiredCourses(ctx context.Context, versionID int64) ([]*models.CurriculumCourse, error)
	GetActiveAssignment(ctx context.Context, studentID int64) (*models.StudentCurriculum, error)
}

// recordReader reads a student's academic record history.
type recordReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]*models.AcademicRecord, error)
}

// equivalenceReader reads the active equivalence edges.
type equivalenceReader interface {
	ListActive(ctx context.Context) ([]*models.CourseEquivalence, error)
}

// ProgressResult reports which required courses a student has satisfied,
// directly or via equivalence, against one curriculum version.
type ProgressResult struct {
	CurriculumVersionID   int64   `json:"curriculumVersionId"`
	CurriculumCode        string  `json:"curriculumCode"`
	ApprovedCourseIDs     []int64 `json:"approvedCourseIds"`
	PendingCourseIDs      []int64 `json:"pendingCourseIds"`
	ResolvedByEquivalence []int64 `json:"resolvedByEquivalence"`
	TotalRequired         int     `json:"totalRequired"`
	ApprovedCount         int     `json:"approvedCount"`
	PendingCount          int     `json:"pendingCount"`
}

// ResolveProgressSets is the pure resolution step: expand every directly
// approved course through the equivalence graph, then intersect with the
// required set. Side-effect free; safe to call concurrently.
func ResolveProgressSets(requiredCourseIDs, directlyApprovedCourseIDs []int64, graph EquivalenceGraph) (approved, pending, resolvedByEquivalence []int64) {
	direct := make(map[int64]struct{}, len(directlyApprovedCourseIDs))
	for _, id := range directlyApprovedCourseIDs {
		direct[id] = struct{}{}
	}

	approvedExpanded := make(map[int64]struct{}, len(direct))
	for id := range direct {
		for reachable := range graph.Closure(id) {
			approvedExpanded[reachable] = struct{}{}
		}
	}

	approved = make([]int64, 0, len(requiredCourseIDs))
	pending = make([]int64, 0)
	resolvedByEquivalence = make([]int64, 0)
	for _, required := range requiredCourseIDs {
		if _, ok := approvedExpanded[required]; !ok {
			pending = append(pending, required)
			continue
		}
		approved = append(approved, required)
		if _, isDirect := direct[required]; !isDirect {
			resolvedByEquivalence = append(resolvedByEquivalence, required)
		}
	}

	sort.Slice(approved, func(i, j int) bool { return approved[i] < approved[j] })
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	sort.Slice(resolvedByEquivalence, func(i, j int) bool { return resolvedByEquivalence[i] < resolvedByEquivalence[j] })
	return approved, pending, resolvedByEquivalence
}

// ProgressService computes curriculum progress from freshly-fetched data on
// every call. It holds no mutable state of its own.
type ProgressService struct {
	curricula    curriculumReader
	records      recordReader
	equivalences equivalenceReader
	passingGrade float64
}

// NewProgressService creates a new progress service instance
func NewProgressService(curricula curriculumReader, records recordReader, equivalences equivalenceReader, passingGrade float64) *ProgressService {
	return &ProgressService{
		curricula:    curricula,
		records:      records,
		equivalences: equivalences,
		passingGrade: passingGrade,
	}
}

// ResolveProgress computes a student's progress against a curriculum
// version. A course is directly approved when any of the student's academic
// records for it reaches the passing threshold; retakes below it do not
// revoke an earlier pass.
func (s *ProgressService) ResolveProgress(ctx context.Context, curriculumVersionID, studentID int64) (*ProgressResult, error) {
	if curriculumVersionID <= 0 || studentID <= 0 {
		return nil, apperrors.ErrInvalidID
	}

	version, err := s.curricula.GetVersionByID(ctx, curriculumVersionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCurriculumVersionNotFound) {
			return nil, apperrors.ErrCurriculumVersionNotFound
		}
		return nil, fmt.Errorf("error retrieving curriculum version: %w", err)
	}

	requiredCourses, err := s.curricula.GetRequiredCourses(ctx, curriculumVersionID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving required courses: %w", err)
	}

	requiredIDs := make([]int64, 0, len(requiredCourses))
	for _, course := range requiredCourses {
		requiredIDs = append(requiredIDs, course.CourseID)
	}

	directIDs, err := s.directlyApprovedCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}

	edges, err := s.equivalences.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving equivalences: %w", err)
	}

	graph, err := BuildEquivalenceGraph(edges)
	if err != nil {
		return nil, err
	}

	approved, pending, resolved := ResolveProgressSets(requiredIDs, directIDs, graph)

	return &ProgressResult{
		CurriculumVersionID:   version.ID,
		CurriculumCode:        version.Code,
		ApprovedCourseIDs:     approved,
		PendingCourseIDs:      pending,
		ResolvedByEquivalence: resolved,
		TotalRequired:         len(requiredIDs),
		ApprovedCount:         len(approved),
		PendingCount:          len(pending),
	}, nil
}

// ResolveActiveProgress resolves progress against the student's active
// curriculum assignment.
func (s *ProgressService) ResolveActiveProgress(ctx context.Context, studentID int64) (*ProgressResult, error) {
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

	return s.ResolveProgress(ctx, assignment.CurriculumVersionID, studentID)
}

// directlyApprovedCourseIDs collects the distinct course IDs for which the
// student holds at least one record at or above the passing threshold.
func (s *ProgressService) directlyApprovedCourseIDs(ctx context.Context, studentID int64) ([]int64, error) {
	records, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving academic records: %w", err)
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, record := range records {
		if !record.Approved(s.passingGrade) {
			continue
		}
		if _, ok := seen[record.CourseID]; ok {
			continue
		}
		seen[record.CourseID] = struct{}{}
		ids = append(ids, record.CourseID)
	}

	return ids, nil
}
