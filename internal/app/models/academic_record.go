package models

import "time"

// AcademicRecord is an immutable historical snapshot of a student's result
// in a course for a term. Rows for a (student, course, period) triple are a
// derived cache: closing an offering deletes and recreates them, so a
// repeated closure can never duplicate history.
type AcademicRecord struct {
	ID            int64        `json:"id" db:"id"`
	StudentID     int64        `json:"studentId" db:"student_id"`
	CourseID      int64        `json:"courseId" db:"course_id"`
	Period        string       `json:"period" db:"period"`
	Grade         float64      `json:"grade" db:"grade"`
	Credits       int          `json:"credits" db:"credits"`
	ResultStatus  ResultStatus `json:"resultStatus" db:"result_status"`
	ProfessorName string       `json:"professorName" db:"professor_name"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
}

// Approved reports whether the record meets the passing threshold.
func (r AcademicRecord) Approved(passingGrade float64) bool {
	return r.Grade >= passingGrade
}
