package models

import "time"

// CurriculumVersion is a dated, versioned list of required courses for a
// career. A career may have several versions; students are assigned to
// exactly one active version at a time.
type CurriculumVersion struct {
	ID            int64     `json:"id" db:"id"`
	CareerID      int64     `json:"careerId" db:"career_id"`
	Code          string    `json:"code" db:"code"`
	Name          string    `json:"name" db:"name"`
	EffectiveFrom time.Time `json:"effectiveFrom" db:"effective_from"`
	Active        bool      `json:"active" db:"active"`
}

// CurriculumCourse is one required course within a curriculum version.
type CurriculumCourse struct {
	CurriculumVersionID int64 `json:"curriculumVersionId" db:"curriculum_version_id"`
	CourseID            int64 `json:"courseId" db:"course_id"`
	SuggestedTerm       int   `json:"suggestedTerm" db:"suggested_term"`
	Mandatory           bool  `json:"mandatory" db:"mandatory"`

	// Relations (populated when needed)
	Course *Course `json:"course,omitempty"`
}

// StudentCurriculum assigns a student to a curriculum version. At most one
// active assignment per student, enforced by a partial unique index.
type StudentCurriculum struct {
	ID                  int64     `json:"id" db:"id"`
	StudentID           int64     `json:"studentId" db:"student_id"`
	CurriculumVersionID int64     `json:"curriculumVersionId" db:"curriculum_version_id"`
	Active              bool      `json:"active" db:"active"`
	AssignedAt          time.Time `json:"assignedAt" db:"assigned_at"`
}
