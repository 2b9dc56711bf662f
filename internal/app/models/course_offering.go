package models

import "github.com/meridian/academics/internal/pkg/apperrors"

// CourseOffering is one scheduled section of a course for a term, with its
// own roster, seats and professor. Transitions are pure: each returns the
// next state or the specific condition that blocks it.
type CourseOffering struct {
	ID          int64          `json:"id" db:"id"`
	CourseID    int64          `json:"courseId" db:"course_id"`
	CareerID    int64          `json:"careerId" db:"career_id"`
	ProfessorID *int64         `json:"professorId,omitempty" db:"professor_id"`
	Section     string         `json:"section" db:"section"`
	Term        string         `json:"term" db:"term"`
	Status      OfferingStatus `json:"status" db:"status"`
	SeatsTotal  int            `json:"seatsTotal" db:"seats_total"`
	SeatsTaken  int            `json:"seatsTaken" db:"seats_taken"`

	// Relations (populated when needed)
	Course *Course `json:"course,omitempty"`
}

// Publish moves a draft offering to Published.
func (o CourseOffering) Publish() (CourseOffering, error) {
	if o.Status != OfferingDraft {
		return o, apperrors.ErrOfferingInvalidState
	}
	o.Status = OfferingPublished
	return o, nil
}

// Activate moves a published offering to Active.
func (o CourseOffering) Activate() (CourseOffering, error) {
	if o.Status != OfferingPublished {
		return o, apperrors.ErrOfferingInvalidState
	}
	o.Status = OfferingActive
	return o, nil
}

// Close moves the offering to its terminal Closed state. Closing is only
// legal once every grade on the roster is published; there is no reopen.
func (o CourseOffering) Close(gradesPublished bool) (CourseOffering, error) {
	if o.Status == OfferingClosed {
		return o, apperrors.ErrOfferingAlreadyClosed
	}
	if !gradesPublished {
		return o, apperrors.ErrOfferingCannotClose
	}
	o.Status = OfferingClosed
	return o, nil
}

// WithSeatTaken claims one seat. Seats are only handed out while the
// offering is Published and below capacity; the counter never decrements,
// so a closed section keeps its historical occupancy.
func (o CourseOffering) WithSeatTaken() (CourseOffering, error) {
	if o.Status != OfferingPublished {
		return o, apperrors.ErrOfferingNotOpen
	}
	if o.SeatsTaken >= o.SeatsTotal {
		return o, apperrors.ErrOfferingFull
	}
	o.SeatsTaken++
	return o, nil
}
