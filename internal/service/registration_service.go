package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/engine"
	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type studentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Save(ctx context.Context, student *models.Student) error
}

type courseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindAll(ctx context.Context) ([]models.Course, error)
	Save(ctx context.Context, course *models.Course) error
}

type enrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	FindByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	FindActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	Save(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) (bool, error)
}

// RegistrationService orchestrates the registration and drop workflows
// across the stores, the seat allocator, the waitlist and the prerequisite
// engine. Workflows read-then-write across several entities, so each one
// runs under a single mutex; the service is the only writer of seat counts,
// credits, waitlist membership and enrollment status.
//
// Domain failures (not found, conflicts, unmet requirements) travel in the
// returned result values; only store faults surface as errors.
type RegistrationService struct {
	mu          sync.Mutex
	students    studentStore
	courses     courseStore
	enrollments enrollmentStore
	prereqs     *engine.PrerequisiteEngine
	seats       *engine.SeatAllocator
	waitlist    *engine.WaitlistManager
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewRegistrationService constructs the registration orchestrator.
func NewRegistrationService(students studentStore, courses courseStore, enrollments enrollmentStore,
	prereqs *engine.PrerequisiteEngine, seats *engine.SeatAllocator, waitlist *engine.WaitlistManager,
	metrics *MetricsService, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		prereqs:     prereqs,
		seats:       seats,
		waitlist:    waitlist,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register runs the registration workflow for a (student, course) pair.
// Gated steps, each a terminal failure: student exists, course exists, no
// active enrollment for the pair, requirements validated, then seat
// allocation with waitlist overflow. When both the course and its waitlist
// are full no enrollment record is created.
func (s *RegistrationService) Register(ctx context.Context, studentID, courseID string) (models.RegistrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.RegistrationFailure(fmt.Sprintf("Student not found: %s", studentID)), nil
		}
		return models.RegistrationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.RegistrationFailure(fmt.Sprintf("Course not found: %s", courseID)), nil
		}
		return models.RegistrationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	active, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil && err != sql.ErrNoRows {
		return models.RegistrationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if active != nil {
		return models.RegistrationFailure("Student already enrolled in this course"), nil
	}

	currentEnrollments, err := s.enrollments.FindActiveByStudent(ctx, studentID)
	if err != nil {
		return models.RegistrationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current enrollments")
	}
	if result := s.prereqs.ValidateAllRequirements(student, course, currentEnrollments); !result.Valid {
		return models.RegistrationFailure(fmt.Sprintf("Prerequisites not met: %s", result.Message)), nil
	}

	allocation := s.seats.Allocate(course)
	enrollment := &models.Enrollment{StudentID: studentID, CourseID: courseID}

	if allocation.Allocated {
		if err := s.grantSeat(ctx, student, course, enrollment); err != nil {
			return models.RegistrationResult{}, err
		}
		s.metrics.RecordRegistration(models.EnrollmentStatusEnrolled)
		s.logger.Info("student enrolled",
			zap.String("student_id", studentID),
			zap.String("course_id", courseID),
			zap.String("enrollment_id", enrollment.ID))
		return models.RegistrationSuccess(enrollment.ID, models.EnrollmentStatusEnrolled), nil
	}

	if !s.waitlist.Add(studentID, course) {
		return models.RegistrationFailure("Course full and waitlist is at capacity"), nil
	}
	enrollment.Waitlist()
	if err := s.enrollments.Save(ctx, enrollment); err != nil {
		return models.RegistrationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save enrollment")
	}
	s.metrics.RecordRegistration(models.EnrollmentStatusWaitlisted)
	s.logger.Info("student waitlisted",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.Int("position", s.waitlist.Position(studentID, courseID)))
	return models.RegistrationSuccess(enrollment.ID, models.EnrollmentStatusWaitlisted), nil
}

// Drop runs the drop workflow: release the seat or leave the waitlist, then
// mark the enrollment dropped. Freeing a seat triggers a waitlist promotion
// attempt; a promotion that hits inconsistent downstream data is logged and
// abandoned rather than failing the drop, leaving the seat for a later
// registration. Returns false when there is no active enrollment to drop.
func (s *RegistrationService) Drop(ctx context.Context, studentID, courseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.IsDropped() {
		return false, nil
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if enrollment.IsEnrolled() {
		if err := s.refundSeat(ctx, student, course); err != nil {
			return false, err
		}
		if promotedID, ok := s.waitlist.Promote(course); ok {
			if err := s.promoteStudent(ctx, promotedID, courseID); err != nil {
				s.logger.Warn("waitlist promotion abandoned",
					zap.String("student_id", promotedID),
					zap.String("course_id", courseID),
					zap.Error(err))
			}
		}
	} else if enrollment.IsWaitlisted() {
		s.waitlist.Remove(studentID, courseID)
	}

	enrollment.Drop()
	if err := s.enrollments.Save(ctx, enrollment); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save enrollment")
	}
	s.metrics.RecordDrop()
	s.logger.Info("enrollment dropped",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID))
	return true, nil
}

// CheckEligibility is the read-only projection of the registration gates:
// existence, duplicate enrollment, then requirement validation. No seats are
// allocated.
func (s *RegistrationService) CheckEligibility(ctx context.Context, studentID, courseID string) (models.ValidationResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ValidationFailure("Student not found"), nil
		}
		return models.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ValidationFailure("Course not found"), nil
		}
		return models.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrolled, err := s.enrollments.IsStudentEnrolled(ctx, studentID, courseID)
	if err != nil {
		return models.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return models.ValidationFailure("Already enrolled"), nil
	}
	currentEnrollments, err := s.enrollments.FindActiveByStudent(ctx, studentID)
	if err != nil {
		return models.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current enrollments")
	}
	return s.prereqs.ValidateAllRequirements(student, course, currentEnrollments), nil
}

// WaitlistPosition returns the 1-based waitlist position for the pair, or
// engine.WaitlistNotFound when the student is not queued.
func (s *RegistrationService) WaitlistPosition(studentID, courseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitlist.Position(studentID, courseID)
}

// CourseWaitlist returns a snapshot of a course's waitlist in FIFO order.
func (s *RegistrationService) CourseWaitlist(courseID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitlist.ListAll(courseID)
}

// StudentEnrollments returns all enrollment records for a student.
func (s *RegistrationService) StudentEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// CourseEnrollments returns all enrollment records for a course.
func (s *RegistrationService) CourseEnrollments(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// HasAvailableSeats reports seat availability for a course, false for a
// missing course.
func (s *RegistrationService) HasAvailableSeats(ctx context.Context, courseID string) (bool, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return s.seats.HasAvailableSeats(course), nil
}

// PurgeStudent unwinds all of a student's registration state: seats held by
// ENROLLED records are released, every enrollment record is deleted, and the
// student is removed from every course's waitlist. The waitlist sweep is a
// full course scan; waitlists have no index by student. Callers own deleting
// the student record itself.
func (s *RegistrationService) PurgeStudent(ctx context.Context, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollments, err := s.enrollments.FindByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	for i := range enrollments {
		enrollment := &enrollments[i]
		if enrollment.IsEnrolled() {
			course, err := s.courses.FindByID(ctx, enrollment.CourseID)
			if err == nil {
				s.seats.Release(course)
				if err := s.courses.Save(ctx, course); err != nil {
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
				}
			} else if err != sql.ErrNoRows {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
			}
		}
		if _, err := s.enrollments.Delete(ctx, enrollment.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
		}
	}

	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	for i := range courses {
		s.waitlist.Remove(studentID, courses[i].ID)
	}
	return nil
}

// grantSeat commits an allocated seat: the enrollment, the course's seat
// count and the student's credit load are mutated and persisted together so
// a mutation can never outlive a forgotten save.
func (s *RegistrationService) grantSeat(ctx context.Context, student *models.Student, course *models.Course, enrollment *models.Enrollment) error {
	enrollment.Enroll()
	if err := s.enrollments.Save(ctx, enrollment); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save enrollment")
	}
	if err := s.courses.Save(ctx, course); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}
	student.AddCredits(course.Credits)
	if err := s.students.Save(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return nil
}

// refundSeat is the inverse pairing for a drop: release the seat, persist
// the course, deduct the credits, persist the student.
func (s *RegistrationService) refundSeat(ctx context.Context, student *models.Student, course *models.Course) error {
	s.seats.Release(course)
	if err := s.courses.Save(ctx, course); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}
	student.RemoveCredits(course.Credits)
	if err := s.students.Save(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return nil
}

// promoteStudent completes a waitlist promotion: the student's WAITLISTED
// enrollment is re-validated, a seat is allocated (re-checked, not assumed,
// even though one was just freed) and the enrollment flips to ENROLLED.
// Any mismatch leaves the freed seat unassigned.
func (s *RegistrationService) promoteStudent(ctx context.Context, studentID, courseID string) error {
	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("no enrollment for promoted student %s", studentID)
		}
		return err
	}
	if !enrollment.IsWaitlisted() {
		return fmt.Errorf("enrollment %s is %s, expected WAITLISTED", enrollment.ID, enrollment.Status)
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	if allocation := s.seats.Allocate(course); !allocation.Allocated {
		return fmt.Errorf("no seat available for promotion into %s", courseID)
	}
	if err := s.grantSeat(ctx, student, course, enrollment); err != nil {
		return err
	}
	s.metrics.RecordPromotion()
	s.logger.Info("student promoted from waitlist",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID))
	return nil
}
