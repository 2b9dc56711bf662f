package apperrors

import "errors"

// Validation errors
var (
	ErrGradeOutOfRange = errors.New("grade must be between 0 and 100")
	ErrSelfEquivalence = errors.New("a course cannot be equivalent to itself")
	ErrInvalidID       = errors.New("invalid identifier")
	ErrValidation      = errors.New("validation failed")
)

// State conflict errors
var (
	ErrGradeEditLocked        = errors.New("grade entry is published and can no longer be edited")
	ErrGradesAlreadyPublished = errors.New("grades have already been published")
	ErrGradesIncomplete       = errors.New("not every enrolled student has a draft grade")
	ErrOfferingCannotClose    = errors.New("course offering cannot close until grades are published")
	ErrOfferingAlreadyClosed  = errors.New("course offering is already closed")
	ErrOfferingInvalidState   = errors.New("course offering state does not allow this transition")
	ErrOfferingFull           = errors.New("course offering has no seats left")
	ErrOfferingNotOpen        = errors.New("course offering is not open for enrollment")
	ErrEquivalenceExists      = errors.New("an active equivalence already exists for this course pair")
	ErrEnrollmentExists       = errors.New("student is already enrolled in this offering")
)

// Not-found errors
var (
	ErrCourseNotFound            = errors.New("course not found")
	ErrOfferingNotFound          = errors.New("course offering not found")
	ErrCurriculumVersionNotFound = errors.New("curriculum version not found")
	ErrAssignmentNotFound        = errors.New("student has no active curriculum assignment")
	ErrGradeEntryNotFound        = errors.New("grade entry not found")
	ErrEnrollmentNotFound        = errors.New("enrollment not found")
)

// Stable machine codes for the conditions above. The request layer maps
// these onto its own response format; the core never formats messages for
// end users.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeGradeOutOfRange        = "GRADE_OUT_OF_RANGE"
	CodeGradeEditLocked        = "GRADE_EDIT_LOCKED"
	CodeGradesAlreadyPublished = "GRADES_ALREADY_PUBLISHED"
	CodeGradesIncomplete       = "GRADES_INCOMPLETE"
	CodeOfferingCannotClose    = "COURSE_CANNOT_CLOSE_UNTIL_GRADES_PUBLISHED"
	CodeOfferingAlreadyClosed  = "COURSE_OFFERING_ALREADY_CLOSED"
	CodeOfferingInvalidState   = "COURSE_OFFERING_INVALID_TRANSITION"
	CodeOfferingFull           = "COURSE_OFFERING_FULL"
	CodeOfferingNotOpen        = "COURSE_OFFERING_NOT_OPEN"
	CodeEquivalenceExists      = "EQUIVALENCE_ALREADY_EXISTS"
	CodeEquivalenceSelf        = "EQUIVALENCE_SELF_REFERENCE"
	CodeEnrollmentExists       = "ENROLLMENT_ALREADY_EXISTS"
	CodeCourseNotFound         = "COURSE_NOT_FOUND"
	CodeOfferingNotFound       = "COURSE_OFFERING_NOT_FOUND"
	CodeCurriculumNotFound     = "CURRICULUM_VERSION_NOT_FOUND"
	CodeAssignmentNotFound     = "CURRICULUM_ASSIGNMENT_NOT_FOUND"
)

// codes maps sentinel errors to their machine codes.
var codes = map[error]string{
	ErrValidation:                CodeValidation,
	ErrGradeOutOfRange:           CodeGradeOutOfRange,
	ErrGradeEditLocked:           CodeGradeEditLocked,
	ErrGradesAlreadyPublished:    CodeGradesAlreadyPublished,
	ErrGradesIncomplete:          CodeGradesIncomplete,
	ErrOfferingCannotClose:       CodeOfferingCannotClose,
	ErrOfferingAlreadyClosed:     CodeOfferingAlreadyClosed,
	ErrOfferingInvalidState:      CodeOfferingInvalidState,
	ErrOfferingFull:              CodeOfferingFull,
	ErrOfferingNotOpen:           CodeOfferingNotOpen,
	ErrEquivalenceExists:         CodeEquivalenceExists,
	ErrSelfEquivalence:           CodeEquivalenceSelf,
	ErrEnrollmentExists:          CodeEnrollmentExists,
	ErrCourseNotFound:            CodeCourseNotFound,
	ErrOfferingNotFound:          CodeOfferingNotFound,
	ErrCurriculumVersionNotFound: CodeCurriculumNotFound,
	ErrAssignmentNotFound:        CodeAssignmentNotFound,
}

// CodeOf returns the stable code for err, unwrapping as needed. The second
// return is false when err is not one of the named domain conditions.
func CodeOf(err error) (string, bool) {
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return "", false
}

// DomainError attaches structured context to one of the sentinel conditions.
type DomainError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes the sentinel for errors.Is checks.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error.
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// NewDomainError wraps a sentinel condition with a message.
func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}
