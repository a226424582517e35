package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// MemoryCourseStore is an in-memory course lookup table.
type MemoryCourseStore struct {
	mu      sync.RWMutex
	courses map[string]models.Course
}

// NewMemoryCourseStore constructs an empty store.
func NewMemoryCourseStore() *MemoryCourseStore {
	return &MemoryCourseStore{courses: make(map[string]models.Course)}
}

// Save upserts a course by ID.
func (s *MemoryCourseStore) Save(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = copyCourse(course)
	return nil
}

// FindByID returns a copy of the course or sql.ErrNoRows.
func (s *MemoryCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := copyCourse(&course)
	return &out, nil
}

// FindAll returns all courses ordered by ID.
func (s *MemoryCourseStore) FindAll(ctx context.Context) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Course, 0, len(s.courses))
	for id := range s.courses {
		course := s.courses[id]
		out = append(out, copyCourse(&course))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// List returns courses matching the filter, paginated.
func (s *MemoryCourseStore) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var matched []models.Course
	for i := range all {
		if filter.Search != "" && !strings.Contains(strings.ToLower(all[i].Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Available != nil && all[i].HasAvailableSeats() != *filter.Available {
			continue
		}
		matched = append(matched, all[i])
	}
	total := len(matched)
	if filter.PageSize <= 0 {
		return matched, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.PageSize
	if start >= len(matched) {
		return []models.Course{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Exists reports whether a course with the given ID is stored.
func (s *MemoryCourseStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.courses[id]
	return ok, nil
}

// Delete removes the course record.
func (s *MemoryCourseStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		return false, nil
	}
	delete(s.courses, id)
	return true, nil
}

// Count returns the number of stored courses.
func (s *MemoryCourseStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses), nil
}

func copyCourse(course *models.Course) models.Course {
	out := *course
	out.Prerequisites = append([]string(nil), course.Prerequisites...)
	out.Corequisites = append([]string(nil), course.Corequisites...)
	return out
}
