package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// MemoryEnrollmentStore is an in-memory enrollment lookup table. IDs are a
// per-process monotonic sequence formatted as ENR000001, ENR000002, and so
// on; a dropped record keeps its ID forever and a re-registration gets a
// fresh one.
type MemoryEnrollmentStore struct {
	mu          sync.RWMutex
	enrollments map[string]models.Enrollment
	sequence    int
}

// NewMemoryEnrollmentStore constructs an empty store.
func NewMemoryEnrollmentStore() *MemoryEnrollmentStore {
	return &MemoryEnrollmentStore{enrollments: make(map[string]models.Enrollment), sequence: 1}
}

// Save upserts an enrollment, assigning the next sequence ID and stamping
// the enrollment date when the record is new.
func (s *MemoryEnrollmentStore) Save(ctx context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enrollment.ID == "" {
		enrollment.ID = fmt.Sprintf("ENR%06d", s.sequence)
		s.sequence++
	}
	if enrollment.EnrolledDate.IsZero() {
		enrollment.EnrolledDate = time.Now().UTC()
	}
	s.enrollments[enrollment.ID] = *enrollment
	return nil
}

// FindByID returns a copy of the enrollment or sql.ErrNoRows.
func (s *MemoryEnrollmentStore) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enrollment, ok := s.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &enrollment, nil
}

// FindAll returns all enrollments ordered by ID.
func (s *MemoryEnrollmentStore) FindAll(ctx context.Context) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Enrollment, 0, len(s.enrollments))
	for id := range s.enrollments {
		out = append(out, s.enrollments[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByStudent returns every enrollment record owned by the student.
func (s *MemoryEnrollmentStore) FindByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return s.filter(func(e *models.Enrollment) bool { return e.StudentID == studentID })
}

// FindByCourse returns every enrollment record for the course.
func (s *MemoryEnrollmentStore) FindByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	return s.filter(func(e *models.Enrollment) bool { return e.CourseID == courseID })
}

// FindActiveByStudent returns the student's ENROLLED records only.
func (s *MemoryEnrollmentStore) FindActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return s.filter(func(e *models.Enrollment) bool {
		return e.StudentID == studentID && e.IsEnrolled()
	})
}

// FindByStudentAndCourse returns the pair's non-dropped enrollment, or
// sql.ErrNoRows. At most one such record exists at a time.
func (s *MemoryEnrollmentStore) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	matches, err := s.filter(func(e *models.Enrollment) bool {
		return e.StudentID == studentID && e.CourseID == courseID && !e.IsDropped()
	})
	if err != nil || len(matches) == 0 {
		return nil, sql.ErrNoRows
	}
	return &matches[0], nil
}

// IsStudentEnrolled reports whether the pair holds an ENROLLED record;
// waitlisted pairs are not enrolled.
func (s *MemoryEnrollmentStore) IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	matches, err := s.filter(func(e *models.Enrollment) bool {
		return e.StudentID == studentID && e.CourseID == courseID && e.IsEnrolled()
	})
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// CountByCourseAndStatus tallies a course's enrollments in a given status.
func (s *MemoryEnrollmentStore) CountByCourseAndStatus(ctx context.Context, courseID string, status models.EnrollmentStatus) (int, error) {
	matches, err := s.filter(func(e *models.Enrollment) bool {
		return e.CourseID == courseID && e.Status == status
	})
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Delete removes the enrollment record.
func (s *MemoryEnrollmentStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[id]; !ok {
		return false, nil
	}
	delete(s.enrollments, id)
	return true, nil
}

// Count returns the number of stored enrollments.
func (s *MemoryEnrollmentStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.enrollments), nil
}

func (s *MemoryEnrollmentStore) filter(keep func(*models.Enrollment) bool) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Enrollment
	for id := range s.enrollments {
		enrollment := s.enrollments[id]
		if keep(&enrollment) {
			out = append(out, enrollment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
