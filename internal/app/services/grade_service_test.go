package services

import (
	"context"
	"testing"
	"time"

	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGradeFixture() (*GradeService, *fakeOfferings, *fakeEnrollments, *fakeGrades) {
	offerings := &fakeOfferings{
		offerings: map[int64]*models.CourseOffering{
			1: {ID: 1, CourseID: 5, CareerID: 1, Term: "2025-1", Status: models.OfferingActive, SeatsTotal: 30, SeatsTaken: 2},
		},
	}
	enrollments := &fakeEnrollments{
		enrollments: []*models.Enrollment{
			{ID: 1, StudentID: 100, OfferingID: 1, Status: models.EnrollmentActive},
			{ID: 2, StudentID: 101, OfferingID: 1, Status: models.EnrollmentActive},
		},
	}
	grades := &fakeGrades{}
	service := NewGradeService(offerings, enrollments, grades, &fakeTxRunner{}, 100)
	return service, offerings, enrollments, grades
}

func TestGradeService_SetDraftGrade(t *testing.T) {
	service, _, _, grades := newGradeFixture()
	now := time.Now()

	err := service.SetDraftGrade(context.Background(), 1, 100, 87.456, 9, now)
	require.NoError(t, err)

	require.Len(t, grades.entries, 1)
	entry := grades.entries[0]
	assert.Equal(t, int64(100), entry.StudentID)
	require.NotNil(t, entry.DraftGrade)
	assert.Equal(t, 87.46, *entry.DraftGrade)
	assert.False(t, entry.IsPublished)
}

func TestGradeService_SetDraftGrade_Rewrite(t *testing.T) {
	service, _, _, grades := newGradeFixture()
	now := time.Now()

	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 100, 50, 9, now))
	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 100, 65, 9, now.Add(time.Hour)))

	require.Len(t, grades.entries, 1)
	assert.Equal(t, 65.0, *grades.entries[0].DraftGrade)
}

func TestGradeService_SetDraftGrade_Validation(t *testing.T) {
	service, _, _, _ := newGradeFixture()
	now := time.Now()

	tests := []struct {
		name      string
		offering  int64
		student   int64
		grade     float64
		wantErr   error
	}{
		{name: "grade above range", offering: 1, student: 100, grade: 101, wantErr: apperrors.ErrGradeOutOfRange},
		{name: "grade below range", offering: 1, student: 100, grade: -1, wantErr: apperrors.ErrGradeOutOfRange},
		{name: "offering missing", offering: 99, student: 100, grade: 70, wantErr: apperrors.ErrOfferingNotFound},
		{name: "student not enrolled", offering: 1, student: 999, grade: 70, wantErr: apperrors.ErrEnrollmentNotFound},
		{name: "bad offering id", offering: 0, student: 100, grade: 70, wantErr: apperrors.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.SetDraftGrade(context.Background(), tt.offering, tt.student, tt.grade, 9, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGradeService_SetDraftGrade_Locked(t *testing.T) {
	service, _, _, grades := newGradeFixture()
	now := time.Now()
	published := 80.0
	grades.entries = []*models.GradeEntry{
		{ID: 1, OfferingID: 1, StudentID: 100, PublishedGrade: &published, IsPublished: true},
	}

	err := service.SetDraftGrade(context.Background(), 1, 100, 90, 9, now)
	assert.ErrorIs(t, err, apperrors.ErrGradeEditLocked)
	assert.Equal(t, 80.0, *grades.entries[0].PublishedGrade)
}

func TestGradeService_PublishGrades(t *testing.T) {
	service, _, _, grades := newGradeFixture()
	now := time.Now()

	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 100, 75, 9, now))
	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 101, 58, 9, now))

	err := service.PublishGrades(context.Background(), 1, 9, now)
	require.NoError(t, err)

	for _, entry := range grades.entries {
		assert.True(t, entry.IsPublished)
		require.NotNil(t, entry.PublishedGrade)
		assert.Equal(t, *entry.DraftGrade, *entry.PublishedGrade)
	}
}

func TestGradeService_PublishGrades_Incomplete(t *testing.T) {
	// Two enrolled students, only one draft: nothing may change.
	service, _, _, grades := newGradeFixture()
	now := time.Now()

	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 100, 75, 9, now))

	err := service.PublishGrades(context.Background(), 1, 9, now)
	assert.ErrorIs(t, err, apperrors.ErrGradesIncomplete)

	for _, entry := range grades.entries {
		assert.False(t, entry.IsPublished)
		assert.Nil(t, entry.PublishedGrade)
	}
}

func TestGradeService_PublishGrades_AlreadyPublished(t *testing.T) {
	service, _, _, _ := newGradeFixture()
	now := time.Now()

	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 100, 75, 9, now))
	require.NoError(t, service.SetDraftGrade(context.Background(), 1, 101, 80, 9, now))
	require.NoError(t, service.PublishGrades(context.Background(), 1, 9, now))

	err := service.PublishGrades(context.Background(), 1, 9, now.Add(time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrGradesAlreadyPublished)
}

func TestGradeService_PublishGrades_EmptyRoster(t *testing.T) {
	service, _, enrollments, _ := newGradeFixture()
	enrollments.enrollments = nil

	err := service.PublishGrades(context.Background(), 1, 9, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrGradesIncomplete)
}
