package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/engine"
	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type courseAdminStore interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, course *models.Course) error
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	ID               string   `json:"id"`
	Name             string   `json:"name" validate:"required"`
	Credits          int      `json:"credits" validate:"gte=0"`
	Capacity         int      `json:"capacity" validate:"gte=0"`
	WaitlistCapacity int      `json:"waitlist_capacity" validate:"gte=0"`
	Prerequisites    []string `json:"prerequisites"`
	Corequisites     []string `json:"corequisites"`
}

// UpdateCourseRequest holds payload for updating courses. Capacity edits do
// not rebalance existing enrollments; the allocator clamps reads on an
// over-capacity course.
type UpdateCourseRequest struct {
	Name             string   `json:"name" validate:"required"`
	Credits          int      `json:"credits" validate:"gte=0"`
	Capacity         int      `json:"capacity" validate:"gte=0"`
	WaitlistCapacity int      `json:"waitlist_capacity" validate:"gte=0"`
	Prerequisites    []string `json:"prerequisites"`
	Corequisites     []string `json:"corequisites"`
}

// CourseAvailability summarises a course's seat state for callers.
type CourseAvailability struct {
	CourseID       string  `json:"course_id"`
	Capacity       int     `json:"capacity"`
	Enrolled       int     `json:"enrolled"`
	AvailableSeats int     `json:"available_seats"`
	AtCapacity     bool    `json:"at_capacity"`
	Utilization    float64 `json:"utilization"`
}

// CourseService handles course administration and availability queries.
type CourseService struct {
	repo      courseAdminStore
	seats     *engine.SeatAllocator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseAdminStore, seats *engine.SeatAllocator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, seats: seats, validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a new course offering.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already exists")
	}
	course := &models.Course{
		ID:               id,
		Name:             req.Name,
		Credits:          req.Credits,
		Capacity:         req.Capacity,
		WaitlistCapacity: req.WaitlistCapacity,
		Prerequisites:    req.Prerequisites,
		Corequisites:     req.Corequisites,
	}
	if err := s.repo.Save(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}
	return course, nil
}

// Update replaces a course's mutable attributes. The enrolled counter is
// owned by the registration workflows and is not editable here.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	course.Name = req.Name
	course.Credits = req.Credits
	course.Capacity = req.Capacity
	course.WaitlistCapacity = req.WaitlistCapacity
	course.Prerequisites = req.Prerequisites
	course.Corequisites = req.Corequisites
	if err := s.repo.Save(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}
	return course, nil
}

// Availability returns the seat snapshot for a course.
func (s *CourseService) Availability(ctx context.Context, id string) (*CourseAvailability, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return &CourseAvailability{
		CourseID:       course.ID,
		Capacity:       course.Capacity,
		Enrolled:       course.Enrolled,
		AvailableSeats: s.seats.AvailableSeats(course),
		AtCapacity:     s.seats.IsAtCapacity(course),
		Utilization:    s.seats.Utilization(course),
	}, nil
}
