package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type studentAdminStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type registrationPurger interface {
	PurgeStudent(ctx context.Context, studentID string) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Program  string `json:"program" validate:"required"`
	Semester int    `json:"semester" validate:"gte=1"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Program  string `json:"program" validate:"required"`
	Semester int    `json:"semester" validate:"gte=1"`
}

// StudentService handles student administration, including the removal
// cascade that unwinds a student's enrollments and waitlist memberships.
type StudentService struct {
	repo      studentAdminStore
	registrar registrationPurger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentAdminStore, registrar registrationPurger, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, registrar: registrar, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student record.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already exists")
	}
	student := &models.Student{
		ID:               id,
		Name:             req.Name,
		Program:          req.Program,
		Semester:         req.Semester,
		CompletedCourses: make(map[string]struct{}),
	}
	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// Update replaces a student's mutable attributes.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	student.Name = req.Name
	student.Program = req.Program
	student.Semester = req.Semester
	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// CompleteCourse records a finished course on the student's transcript.
func (s *StudentService) CompleteCourse(ctx context.Context, id, courseID string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	student.CompleteCourse(courseID)
	if err := s.repo.Save(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	return student, nil
}

// Delete removes a student and cascades: seats held by the student are
// released, enrollment records deleted, waitlist memberships removed, and
// only then the student record itself. Returns false, with no side effects,
// for an unknown student.
func (s *StudentService) Delete(ctx context.Context, id string) (bool, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if !exists {
		return false, nil
	}
	if err := s.registrar.PurgeStudent(ctx, id); err != nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return deleted, nil
}
