package models

import "time"

// Enrollment ties a student to a course offering. At most one per
// (student, offering); closed together with the offering.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	OfferingID int64            `json:"offeringId" db:"offering_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	EnrolledAt time.Time        `json:"enrolledAt" db:"enrolled_at"`
	ClosedAt   *time.Time       `json:"closedAt,omitempty" db:"closed_at"`
}
