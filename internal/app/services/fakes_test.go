package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/app/repositories"
	"github.com/meridian/academics/internal/db"
)

// In-memory stand-ins for the data-access collaborator. They return the
// repository sentinels so the services' error mapping is exercised too.

type fakeTxRunner struct {
	beginErr error
}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx, nil)
}

type fakeCurricula struct {
	versions    map[int64]*models.CurriculumVersion
	required    map[int64][]*models.CurriculumCourse
	assignments []*models.StudentCurriculum
}

func (f *fakeCurricula) GetVersionByID(_ context.Context, id int64) (*models.CurriculumVersion, error) {
	version, ok := f.versions[id]
	if !ok {
		return nil, repositories.ErrCurriculumVersionNotFound
	}
	return version, nil
}

func (f *fakeCurricula) GetRequiredCourses(_ context.Context, versionID int64) ([]*models.CurriculumCourse, error) {
	// Repository contract: electives never enter the required set.
	var out []*models.CurriculumCourse
	for _, course := range f.required[versionID] {
		if course.Mandatory {
			out = append(out, course)
		}
	}
	return out, nil
}

func (f *fakeCurricula) GetActiveAssignment(_ context.Context, studentID int64) (*models.StudentCurriculum, error) {
	for _, assignment := range f.assignments {
		if assignment.StudentID == studentID && assignment.Active {
			return assignment, nil
		}
	}
	return nil, repositories.ErrAssignmentNotFound
}

func (f *fakeCurricula) AssignStudentTx(_ context.Context, _ pgx.Tx, studentID, versionID int64, now time.Time) (*models.StudentCurriculum, error) {
	for _, assignment := range f.assignments {
		if assignment.StudentID == studentID {
			assignment.Active = false
		}
	}
	assignment := &models.StudentCurriculum{
		ID:                  int64(len(f.assignments) + 1),
		StudentID:           studentID,
		CurriculumVersionID: versionID,
		Active:              true,
		AssignedAt:          now,
	}
	f.assignments = append(f.assignments, assignment)
	return assignment, nil
}

type fakeRecords struct {
	records []*models.AcademicRecord
	nextID  int64
}

func (f *fakeRecords) ListByStudent(_ context.Context, studentID int64) ([]*models.AcademicRecord, error) {
	var out []*models.AcademicRecord
	for _, record := range f.records {
		if record.StudentID == studentID {
			out = append(out, record)
		}
	}
	// Repository contract: newest first by (created_at, period) desc.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i], out[j]
			if b.CreatedAt.After(a.CreatedAt) || (b.CreatedAt.Equal(a.CreatedAt) && b.Period > a.Period) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeRecords) DeleteForStudentCoursePeriodTx(_ context.Context, _ pgx.Tx, studentID, courseID int64, period string) error {
	kept := f.records[:0]
	for _, record := range f.records {
		if record.StudentID == studentID && record.CourseID == courseID && record.Period == period {
			continue
		}
		kept = append(kept, record)
	}
	f.records = kept
	return nil
}

func (f *fakeRecords) InsertTx(_ context.Context, _ pgx.Tx, record *models.AcademicRecord) error {
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, record)
	return nil
}

type fakeEquivalences struct {
	active []*models.CourseEquivalence
	nextID int64
}

func (f *fakeEquivalences) ListActive(_ context.Context) ([]*models.CourseEquivalence, error) {
	var out []*models.CourseEquivalence
	for _, eq := range f.active {
		if eq.Active {
			out = append(out, eq)
		}
	}
	return out, nil
}

func (f *fakeEquivalences) ActiveExistsForPair(_ context.Context, low, high int64) (bool, error) {
	for _, eq := range f.active {
		if !eq.Active {
			continue
		}
		l, h := eq.CanonicalPair()
		if l == low && h == high {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEquivalences) Create(_ context.Context, eq *models.CourseEquivalence) error {
	f.nextID++
	eq.ID = f.nextID
	f.active = append(f.active, eq)
	return nil
}

func (f *fakeEquivalences) Deactivate(_ context.Context, id int64) error {
	for _, eq := range f.active {
		if eq.ID == id {
			eq.Active = false
			return nil
		}
	}
	return repositories.ErrEquivalenceNotFound
}

type fakeOfferings struct {
	offerings  map[int64]*models.CourseOffering
	professors map[int64]string
	nextID     int64
}

func (f *fakeOfferings) Create(_ context.Context, offering *models.CourseOffering) error {
	f.nextID++
	offering.ID = f.nextID
	if f.offerings == nil {
		f.offerings = make(map[int64]*models.CourseOffering)
	}
	copied := *offering
	f.offerings[offering.ID] = &copied
	return nil
}

func (f *fakeOfferings) GetByID(_ context.Context, id int64) (*models.CourseOffering, error) {
	offering, ok := f.offerings[id]
	if !ok {
		return nil, repositories.ErrOfferingNotFound
	}
	copied := *offering
	return &copied, nil
}

func (f *fakeOfferings) GetByIDForUpdateTx(ctx context.Context, _ pgx.Tx, id int64) (*models.CourseOffering, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOfferings) UpdateStatus(_ context.Context, id int64, status models.OfferingStatus) error {
	offering, ok := f.offerings[id]
	if !ok {
		return repositories.ErrOfferingNotFound
	}
	offering.Status = status
	return nil
}

func (f *fakeOfferings) UpdateStatusTx(ctx context.Context, _ pgx.Tx, id int64, status models.OfferingStatus) error {
	return f.UpdateStatus(ctx, id, status)
}

func (f *fakeOfferings) UpdateSeatsTx(_ context.Context, _ pgx.Tx, id int64, seatsTaken int) error {
	offering, ok := f.offerings[id]
	if !ok {
		return repositories.ErrOfferingNotFound
	}
	offering.SeatsTaken = seatsTaken
	return nil
}

func (f *fakeOfferings) GetProfessorName(_ context.Context, professorID int64) (string, error) {
	name, ok := f.professors[professorID]
	if !ok {
		return "", repositories.ErrProfessorNotFound
	}
	return name, nil
}

type fakeEnrollments struct {
	enrollments []*models.Enrollment
	nextID      int64
}

func (f *fakeEnrollments) ListByOffering(_ context.Context, offeringID int64) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, enrollment := range f.enrollments {
		if enrollment.OfferingID == offeringID {
			out = append(out, enrollment)
		}
	}
	return out, nil
}

func (f *fakeEnrollments) ExistsTx(_ context.Context, _ pgx.Tx, studentID, offeringID int64) (bool, error) {
	for _, enrollment := range f.enrollments {
		if enrollment.StudentID == studentID && enrollment.OfferingID == offeringID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollments) CreateTx(_ context.Context, _ pgx.Tx, enrollment *models.Enrollment) error {
	f.nextID++
	enrollment.ID = f.nextID
	f.enrollments = append(f.enrollments, enrollment)
	return nil
}

func (f *fakeEnrollments) CloseActiveByOfferingTx(_ context.Context, _ pgx.Tx, offeringID int64, closedAt time.Time) error {
	for _, enrollment := range f.enrollments {
		if enrollment.OfferingID == offeringID && enrollment.Status == models.EnrollmentActive {
			enrollment.Status = models.EnrollmentClosed
			at := closedAt
			enrollment.ClosedAt = &at
		}
	}
	return nil
}

type fakeGrades struct {
	entries []*models.GradeEntry
	nextID  int64
}

func (f *fakeGrades) GetByOfferingAndStudent(_ context.Context, offeringID, studentID int64) (*models.GradeEntry, error) {
	for _, entry := range f.entries {
		if entry.OfferingID == offeringID && entry.StudentID == studentID {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, repositories.ErrGradeEntryNotFound
}

func (f *fakeGrades) ListByOffering(_ context.Context, offeringID int64) ([]*models.GradeEntry, error) {
	var out []*models.GradeEntry
	for _, entry := range f.entries {
		if entry.OfferingID == offeringID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGrades) UpsertDraft(_ context.Context, entry *models.GradeEntry) error {
	for _, existing := range f.entries {
		if existing.OfferingID == entry.OfferingID && existing.StudentID == entry.StudentID {
			if existing.IsPublished {
				return repositories.ErrGradeEntryLocked
			}
			existing.DraftGrade = entry.DraftGrade
			existing.UpdatedBy = entry.UpdatedBy
			existing.UpdatedAt = entry.UpdatedAt
			entry.ID = existing.ID
			return nil
		}
	}
	f.nextID++
	entry.ID = f.nextID
	copied := *entry
	f.entries = append(f.entries, &copied)
	return nil
}

func (f *fakeGrades) SaveTx(_ context.Context, _ pgx.Tx, entry *models.GradeEntry) error {
	for i, existing := range f.entries {
		if existing.ID == entry.ID {
			copied := *entry
			f.entries[i] = &copied
			return nil
		}
	}
	return repositories.ErrGradeEntryNotFound
}

type fakeCourses struct {
	courses map[int64]*models.Course
}

func (f *fakeCourses) GetByID(_ context.Context, id int64) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	return course, nil
}

func (f *fakeCourses) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Course, error) {
	out := make(map[int64]*models.Course, len(ids))
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			out[id] = course
		}
	}
	return out, nil
}
