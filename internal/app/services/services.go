package services

import (
	"github.com/meridian/academics/internal/app/repositories"
	"github.com/meridian/academics/internal/config"
	"github.com/meridian/academics/internal/db"
)

// Services defined in this package:
// - ProgressService: resolves curriculum progress over the equivalence graph
// - GradeService: draft grade entry and offering-wide publication
// - OfferingService: offering lifecycle, enrollment and closure
// - CertificateService: curriculum-closure certificate eligibility
// - EquivalenceService: director curation of course equivalences
// - CurriculumService: curriculum version assignment

// Container wires every service over the shared connection pool.
type Container struct {
	Progress     *ProgressService
	Grades       *GradeService
	Offerings    *OfferingService
	Certificates *CertificateService
	Equivalences *EquivalenceService
	Curricula    *CurriculumService
}

// NewContainer builds the repositories and services for the given pool and
// configuration. The passing-grade threshold is threaded explicitly into
// every service that applies it.
func NewContainer(database *db.PostgresDB, cfg *config.Config) *Container {
	pool := database.Pool
	courses := repositories.NewCourseRepository(pool)
	curricula := repositories.NewCurriculumRepository(pool)
	equivalences := repositories.NewEquivalenceRepository(pool)
	offerings := repositories.NewOfferingRepository(pool)
	enrollments := repositories.NewEnrollmentRepository(pool)
	grades := repositories.NewGradeRepository(pool)
	records := repositories.NewAcademicRecordRepository(pool)

	progress := NewProgressService(curricula, records, equivalences, cfg.Academic.PassingGrade)

	return &Container{
		Progress:     progress,
		Grades:       NewGradeService(offerings, enrollments, grades, database, cfg.Academic.MaxGrade),
		Offerings:    NewOfferingService(offerings, enrollments, grades, courses, records, database, cfg.Academic.PassingGrade),
		Certificates: NewCertificateService(progress, records, equivalences, courses, cfg.Academic.PassingGrade),
		Equivalences: NewEquivalenceService(equivalences),
		Curricula:    NewCurriculumService(curricula, database),
	}
}
