package models

// OfferingStatus represents the lifecycle state of a course offering
type OfferingStatus string

// Offering lifecycle states; transitions are one-way, Closed is terminal
const (
	OfferingDraft     OfferingStatus = "DRAFT"
	OfferingPublished OfferingStatus = "PUBLISHED"
	OfferingActive    OfferingStatus = "ACTIVE"
	OfferingClosed    OfferingStatus = "CLOSED"
)

// EnrollmentStatus represents the state of a student's enrollment
type EnrollmentStatus string

const (
	EnrollmentActive EnrollmentStatus = "ACTIVE"
	EnrollmentClosed EnrollmentStatus = "CLOSED"
)

// ResultStatus is the pass/fail outcome recorded on an academic record
type ResultStatus string

const (
	ResultPassed ResultStatus = "PASSED"
	ResultFailed ResultStatus = "FAILED"
)

// EquivalenceType tags a course equivalence. Both types currently satisfy a
// required course in full during progress resolution; the tag is stored so a
// later product decision can differentiate without a schema change.
type EquivalenceType string

const (
	EquivalenceTotal   EquivalenceType = "TOTAL"
	EquivalencePartial EquivalenceType = "PARTIAL"
)
