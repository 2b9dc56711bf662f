package models

import "time"

// CourseEquivalence declares that one course may substitute another for
// curriculum purposes. The relation is symmetric; source/target carry no
// direction. At most one active equivalence may exist per unordered pair.
type CourseEquivalence struct {
	ID             int64           `json:"id" db:"id"`
	SourceCourseID int64           `json:"sourceCourseId" db:"source_course_id"`
	TargetCourseID int64           `json:"targetCourseId" db:"target_course_id"`
	Type           EquivalenceType `json:"type" db:"equivalence_type"`
	EffectiveFrom  time.Time       `json:"effectiveFrom" db:"effective_from"`
	EffectiveTo    *time.Time      `json:"effectiveTo,omitempty" db:"effective_to"`
	Active         bool            `json:"active" db:"active"`
}

// CanonicalPair returns the unordered pair in (low, high) order. Uniqueness
// of active equivalences is checked against this form.
func (e CourseEquivalence) CanonicalPair() (int64, int64) {
	if e.SourceCourseID <= e.TargetCourseID {
		return e.SourceCourseID, e.TargetCourseID
	}
	return e.TargetCourseID, e.SourceCourseID
}
