package models

import (
	"math"
	"time"

	"github.com/meridian/academics/internal/pkg/apperrors"
)

// GradeEntry is the per (offering, student) grade record. A draft grade may
// be rewritten by the professor until publication; once published the entry
// is frozen for good — there is no un-publish operation.
type GradeEntry struct {
	ID             int64      `json:"id" db:"id"`
	OfferingID     int64      `json:"offeringId" db:"offering_id"`
	StudentID      int64      `json:"studentId" db:"student_id"`
	DraftGrade     *float64   `json:"draftGrade,omitempty" db:"draft_grade"`
	PublishedGrade *float64   `json:"publishedGrade,omitempty" db:"published_grade"`
	IsPublished    bool       `json:"isPublished" db:"is_published"`
	UpdatedBy      int64      `json:"updatedBy" db:"updated_by"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty" db:"published_at"`
}

// RoundGrade normalizes a grade to two decimal places.
func RoundGrade(grade float64) float64 {
	return math.Round(grade*100) / 100
}

// WithDraftGrade returns a copy of the entry with the draft grade set.
// Published entries can no longer be edited, and grades must fall within
// [0, maxGrade].
func (g GradeEntry) WithDraftGrade(grade float64, maxGrade float64, actor int64, now time.Time) (GradeEntry, error) {
	if g.IsPublished {
		return g, apperrors.ErrGradeEditLocked
	}
	if grade < 0 || grade > maxGrade {
		return g, apperrors.ErrGradeOutOfRange
	}

	rounded := RoundGrade(grade)
	g.DraftGrade = &rounded
	g.UpdatedBy = actor
	g.UpdatedAt = now
	return g, nil
}

// Published returns a copy of the entry with the draft promoted to the
// published grade. Fails when the entry is already published or holds no
// draft.
func (g GradeEntry) Published(actor int64, now time.Time) (GradeEntry, error) {
	if g.IsPublished {
		return g, apperrors.ErrGradesAlreadyPublished
	}
	if g.DraftGrade == nil {
		return g, apperrors.ErrGradesIncomplete
	}

	published := *g.DraftGrade
	g.PublishedGrade = &published
	g.IsPublished = true
	g.UpdatedBy = actor
	g.UpdatedAt = now
	g.PublishedAt = &now
	return g, nil
}
