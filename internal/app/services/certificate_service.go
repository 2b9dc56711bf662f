package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meridian/academics/internal/app/models"
)

// EligibilityResult is the gate's verdict on a curriculum-closure
// certificate request.
type EligibilityResult struct {
	Eligible         bool    `json:"eligible"`
	TotalRequired    int     `json:"totalRequired"`
	ApprovedCount    int     `json:"approvedCount"`
	PendingCount     int     `json:"pendingCount"`
	MissingCourseIDs []int64 `json:"missingCourseIds,omitempty"`
}

// CertificateEntry is one quoted course result on a closure certificate.
// For requirements satisfied via equivalence the quoted record belongs to
// the equivalent course actually passed.
type CertificateEntry struct {
	RequiredCourseID int64     `json:"requiredCourseId"`
	RecordCourseID   int64     `json:"recordCourseId"`
	CourseCode       string    `json:"courseCode"`
	CourseName       string    `json:"courseName"`
	Grade            float64   `json:"grade"`
	Credits          int       `json:"credits"`
	Period           string    `json:"period"`
	ProfessorName    string    `json:"professorName"`
	RecordedAt       time.Time `json:"recordedAt"`
}

// Certificate is the data handed to the external rendering collaborator.
type Certificate struct {
	Serial              string             `json:"serial"`
	StudentID           int64              `json:"studentId"`
	CurriculumVersionID int64              `json:"curriculumVersionId"`
	CurriculumCode      string             `json:"curriculumCode"`
	IssuedAt            time.Time          `json:"issuedAt"`
	Entries             []CertificateEntry `json:"entries"`
}

// courseBatchReader resolves catalog courses in bulk.
type courseBatchReader interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Course, error)
}

// CertificateService gates curriculum-closure certificates on full
// curriculum completion.
type CertificateService struct {
	progress     *ProgressService
	records      recordReader
	equivalences equivalenceReader
	courses      courseBatchReader
	passingGrade float64
}

// NewCertificateService creates a new certificate service instance
func NewCertificateService(progress *ProgressService, records recordReader, equivalences equivalenceReader, courses courseBatchReader, passingGrade float64) *CertificateService {
	return &CertificateService{
		progress:     progress,
		records:      records,
		equivalences: equivalences,
		courses:      courses,
		passingGrade: passingGrade,
	}
}

// CheckCertificateEligibility reruns progress resolution and reports
// whether every required course is approved, directly or via equivalence.
func (s *CertificateService) CheckCertificateEligibility(ctx context.Context, curriculumVersionID, studentID int64) (*EligibilityResult, error) {
	result, err := s.progress.ResolveProgress(ctx, curriculumVersionID, studentID)
	if err != nil {
		return nil, err
	}

	return eligibilityFromProgress(result), nil
}

// IssueClosureCertificate gates on eligibility and, when every required
// course is approved, assembles the certificate data: one entry per
// required course quoting the latest approved record (creation time desc,
// then period desc). Ineligible requests return the structured verdict with
// a nil certificate.
func (s *CertificateService) IssueClosureCertificate(ctx context.Context, studentID int64, now time.Time) (*Certificate, *EligibilityResult, error) {
	progress, err := s.progress.ResolveActiveProgress(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	eligibility := eligibilityFromProgress(progress)
	if !eligibility.Eligible {
		return nil, eligibility, nil
	}

	records, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving academic records: %w", err)
	}

	edges, err := s.equivalences.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving equivalences: %w", err)
	}
	graph, err := BuildEquivalenceGraph(edges)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]CertificateEntry, 0, len(progress.ApprovedCourseIDs))
	quoted := make([]*models.AcademicRecord, 0, len(progress.ApprovedCourseIDs))
	courseIDs := make([]int64, 0, len(progress.ApprovedCourseIDs))
	for _, requiredID := range progress.ApprovedCourseIDs {
		record := latestApprovedRecord(records, graph.Closure(requiredID), s.passingGrade)
		if record == nil {
			// Progress said approved, records disagree; stale input.
			return nil, nil, fmt.Errorf("no approved record found for course %d", requiredID)
		}
		quoted = append(quoted, record)
		courseIDs = append(courseIDs, record.CourseID)
	}

	courses, err := s.courses.GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving courses: %w", err)
	}

	for i, requiredID := range progress.ApprovedCourseIDs {
		record := quoted[i]
		entry := CertificateEntry{
			RequiredCourseID: requiredID,
			RecordCourseID:   record.CourseID,
			Grade:            record.Grade,
			Credits:          record.Credits,
			Period:           record.Period,
			ProfessorName:    record.ProfessorName,
			RecordedAt:       record.CreatedAt,
		}
		if course, ok := courses[record.CourseID]; ok {
			entry.CourseCode = course.Code
			entry.CourseName = course.Name
		}
		entries = append(entries, entry)
	}

	return &Certificate{
		Serial:              uuid.NewString(),
		StudentID:           studentID,
		CurriculumVersionID: progress.CurriculumVersionID,
		CurriculumCode:      progress.CurriculumCode,
		IssuedAt:            now,
		Entries:             entries,
	}, eligibility, nil
}

func eligibilityFromProgress(progress *ProgressResult) *EligibilityResult {
	result := &EligibilityResult{
		Eligible:      progress.PendingCount == 0,
		TotalRequired: progress.TotalRequired,
		ApprovedCount: progress.ApprovedCount,
		PendingCount:  progress.PendingCount,
	}
	if !result.Eligible {
		result.MissingCourseIDs = progress.PendingCourseIDs
	}
	return result
}

// latestApprovedRecord picks the newest approved record whose course falls
// inside the requirement's equivalence closure. Records arrive ordered by
// creation time desc, then period desc; ties beyond that do not matter.
func latestApprovedRecord(records []*models.AcademicRecord, closure map[int64]struct{}, passingGrade float64) *models.AcademicRecord {
	for _, record := range records {
		if !record.Approved(passingGrade) {
			continue
		}
		if _, ok := closure[record.CourseID]; ok {
			return record
		}
	}
	return nil
}
