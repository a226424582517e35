package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// MemoryStudentStore is an in-memory student lookup table. Reads return
// copies so callers mutate in-flight entities freely and commit them back
// through Save.
type MemoryStudentStore struct {
	mu       sync.RWMutex
	students map[string]models.Student
}

// NewMemoryStudentStore constructs an empty store.
func NewMemoryStudentStore() *MemoryStudentStore {
	return &MemoryStudentStore{students: make(map[string]models.Student)}
}

// Save upserts a student by ID.
func (s *MemoryStudentStore) Save(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[student.ID] = copyStudent(student)
	return nil
}

// FindByID returns a copy of the student or sql.ErrNoRows.
func (s *MemoryStudentStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := copyStudent(&student)
	return &out, nil
}

// FindAll returns all students ordered by ID.
func (s *MemoryStudentStore) FindAll(ctx context.Context) ([]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, 0, len(s.students))
	for id := range s.students {
		student := s.students[id]
		out = append(out, copyStudent(&student))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// List returns students matching the filter, paginated.
func (s *MemoryStudentStore) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var matched []models.Student
	for i := range all {
		if filter.Search != "" && !strings.Contains(strings.ToLower(all[i].Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Program != "" && all[i].Program != filter.Program {
			continue
		}
		matched = append(matched, all[i])
	}
	total := len(matched)
	return paginateStudents(matched, filter.Page, filter.PageSize), total, nil
}

// Exists reports whether a student with the given ID is stored.
func (s *MemoryStudentStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.students[id]
	return ok, nil
}

// Delete removes the student record. Cascading cleanup of enrollments and
// waitlists is owned by the registration layer, not the store.
func (s *MemoryStudentStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return false, nil
	}
	delete(s.students, id)
	return true, nil
}

// Count returns the number of stored students.
func (s *MemoryStudentStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students), nil
}

func copyStudent(student *models.Student) models.Student {
	out := *student
	out.CompletedCourses = make(map[string]struct{}, len(student.CompletedCourses))
	for id := range student.CompletedCourses {
		out.CompletedCourses[id] = struct{}{}
	}
	return out
}

func paginateStudents(students []models.Student, page, size int) []models.Student {
	if size <= 0 {
		return students
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(students) {
		return []models.Student{}
	}
	end := start + size
	if end > len(students) {
		end = len(students)
	}
	return students[start:end]
}
