package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meridian/academics/internal/app/models"
	"github.com/meridian/academics/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCurriculumFixture() (*CurriculumService, *fakeCurricula) {
	curricula := &fakeCurricula{
		versions: map[int64]*models.CurriculumVersion{
			10: {ID: 10, CareerID: 1, Code: "CS-2024"},
			11: {ID: 11, CareerID: 1, Code: "CS-2026"},
		},
	}
	return NewCurriculumService(curricula, &fakeTxRunner{}), curricula
}

func TestCurriculumService_AssignStudent(t *testing.T) {
	service, curricula := newCurriculumFixture()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	assignment, err := service.AssignStudent(context.Background(), 100, 10, now)
	require.NoError(t, err)

	assert.True(t, assignment.Active)
	assert.Equal(t, int64(10), assignment.CurriculumVersionID)
	assert.Equal(t, now, assignment.AssignedAt)

	active, err := curricula.GetActiveAssignment(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, assignment.ID, active.ID)
}

func TestCurriculumService_AssignStudent_ReplacesPriorAssignment(t *testing.T) {
	service, curricula := newCurriculumFixture()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := service.AssignStudent(context.Background(), 100, 10, now)
	require.NoError(t, err)

	later, err := service.AssignStudent(context.Background(), 100, 11, now.AddDate(0, 6, 0))
	require.NoError(t, err)

	activeCount := 0
	for _, assignment := range curricula.assignments {
		if assignment.Active {
			activeCount++
			assert.Equal(t, later.ID, assignment.ID)
		}
	}
	assert.Equal(t, 1, activeCount)

	active, err := service.GetActiveAssignment(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(11), active.CurriculumVersionID)
}

func TestCurriculumService_AssignStudent_Validation(t *testing.T) {
	service, _ := newCurriculumFixture()
	now := time.Now()

	_, err := service.AssignStudent(context.Background(), 100, 999, now)
	assert.ErrorIs(t, err, apperrors.ErrCurriculumVersionNotFound)

	_, err = service.AssignStudent(context.Background(), 0, 10, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)

	_, err = service.AssignStudent(context.Background(), 100, -1, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
}

func TestCurriculumService_AssignStudent_TxFailure(t *testing.T) {
	curricula := &fakeCurricula{
		versions: map[int64]*models.CurriculumVersion{10: {ID: 10, Code: "CS-2024"}},
	}
	service := NewCurriculumService(curricula, &fakeTxRunner{beginErr: errors.New("begin failed")})

	_, err := service.AssignStudent(context.Background(), 100, 10, time.Now())
	require.Error(t, err)
	assert.Empty(t, curricula.assignments)
}

func TestCurriculumService_GetActiveAssignment_NotFound(t *testing.T) {
	service, _ := newCurriculumFixture()

	_, err := service.GetActiveAssignment(context.Background(), 100)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}
