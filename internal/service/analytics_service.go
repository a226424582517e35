package service

import (
	"context"
	"database/sql"
	"sort"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type analyticsCourseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindAll(ctx context.Context) ([]models.Course, error)
}

type analyticsEnrollmentStore interface {
	FindAll(ctx context.Context) ([]models.Enrollment, error)
}

const analyticsOverviewCacheKey = "analytics:overview"

// AnalyticsOverview aggregates system-wide enrollment statistics.
type AnalyticsOverview struct {
	TotalCapacity      int            `json:"total_capacity"`
	TotalEnrolled      int            `json:"total_enrolled"`
	SystemUtilization  float64        `json:"system_utilization"`
	ActiveEnrollments  int            `json:"active_enrollments"`
	WaitlistedStudents int            `json:"waitlisted_students"`
	AverageEnrollment  float64        `json:"average_enrollment"`
	EnrollmentByLevel  map[string]int `json:"enrollment_by_level"`
	EnrollmentByDept   map[string]int `json:"enrollment_by_department"`
	FullCourses        []string       `json:"full_courses"`
}

// AnalyticsService provides read-only aggregation over the stores. No
// mutation, so it runs outside the registration lock; numbers are a
// best-effort snapshot.
type AnalyticsService struct {
	courses     analyticsCourseStore
	enrollments analyticsEnrollmentStore
	cache       *CacheService
	logger      *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(courses analyticsCourseStore, enrollments analyticsEnrollmentStore, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{courses: courses, enrollments: enrollments, cache: cache, logger: logger}
}

// FillRate returns the fill percentage for a course, -1 when the course is
// unknown and 0 for zero capacity.
func (s *AnalyticsService) FillRate(ctx context.Context, courseID string) (float64, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return -1, nil
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return fillRate(course), nil
}

// MostPopularCourses returns the top N courses by enrolled count.
func (s *AnalyticsService) MostPopularCourses(ctx context.Context, topN int) ([]models.Course, error) {
	if topN <= 0 {
		return []models.Course{}, nil
	}
	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].Enrolled > courses[j].Enrolled
	})
	if len(courses) > topN {
		courses = courses[:topN]
	}
	return courses, nil
}

// CoursesAboveThreshold returns courses whose fill rate meets the threshold
// percentage. Out-of-range thresholds yield an empty list.
func (s *AnalyticsService) CoursesAboveThreshold(ctx context.Context, threshold float64) ([]models.Course, error) {
	if threshold < 0 || threshold > 100 {
		return []models.Course{}, nil
	}
	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	var matched []models.Course
	for i := range courses {
		if fillRate(&courses[i]) >= threshold {
			matched = append(matched, courses[i])
		}
	}
	return matched, nil
}

// AverageClassSize averages enrolled counts over courses at or above the
// minimum enrollment.
func (s *AnalyticsService) AverageClassSize(ctx context.Context, minEnrollment int) (float64, error) {
	if minEnrollment < 0 {
		return 0, nil
	}
	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	total, count := 0, 0
	for i := range courses {
		if courses[i].Enrolled >= minEnrollment {
			total += courses[i].Enrolled
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(total) / float64(count), nil
}

// Overview computes the system-wide aggregate snapshot, served from cache
// when fresh.
func (s *AnalyticsService) Overview(ctx context.Context) (*AnalyticsOverview, error) {
	var cached AnalyticsOverview
	if s.cache.Get(ctx, analyticsOverviewCacheKey, &cached) {
		return &cached, nil
	}

	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	enrollments, err := s.enrollments.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	overview := &AnalyticsOverview{
		EnrollmentByLevel: map[string]int{"empty": 0, "low": 0, "medium": 0, "high": 0, "full": 0},
		EnrollmentByDept:  make(map[string]int),
		FullCourses:       []string{},
	}
	for i := range courses {
		course := &courses[i]
		overview.TotalCapacity += course.Capacity
		overview.TotalEnrolled += course.Enrolled
		overview.EnrollmentByLevel[enrollmentLevel(fillRate(course))]++
		overview.EnrollmentByDept[extractDepartment(course.ID)] += course.Enrolled
		if course.IsFull() {
			overview.FullCourses = append(overview.FullCourses, course.ID)
		}
	}
	if overview.TotalCapacity > 0 {
		overview.SystemUtilization = float64(overview.TotalEnrolled) * 100 / float64(overview.TotalCapacity)
	}
	if len(courses) > 0 {
		overview.AverageEnrollment = float64(overview.TotalEnrolled) / float64(len(courses))
	}
	for i := range enrollments {
		switch {
		case enrollments[i].IsEnrolled():
			overview.ActiveEnrollments++
		case enrollments[i].IsWaitlisted():
			overview.WaitlistedStudents++
		}
	}

	s.cache.Set(ctx, analyticsOverviewCacheKey, overview)
	return overview, nil
}

func fillRate(course *models.Course) float64 {
	if course.Capacity == 0 {
		return 0
	}
	return float64(course.Enrolled) * 100 / float64(course.Capacity)
}

func enrollmentLevel(rate float64) string {
	switch {
	case rate == 0:
		return "empty"
	case rate < 25:
		return "low"
	case rate < 50:
		return "medium"
	case rate < 100:
		return "high"
	default:
		return "full"
	}
}

// extractDepartment takes the leading letters of a course ID as its
// department code: CS101 -> CS, MATH200 -> MATH.
func extractDepartment(courseID string) string {
	i := 0
	for i < len(courseID) && !unicode.IsDigit(rune(courseID[i])) {
		i++
	}
	if i == 0 {
		return "UNKNOWN"
	}
	return courseID[:i]
}
