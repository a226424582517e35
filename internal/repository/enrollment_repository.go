package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// EnrollmentRepository is the Postgres-backed enrollment store. IDs come
// from the enrollment_id_seq sequence, formatted as ENR000001 and onward.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = "id, student_id, course_id, status, enrolled_date"

// Save upserts an enrollment, assigning a sequence ID and stamping the
// enrollment date when the record is new.
func (r *EnrollmentRepository) Save(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		var id string
		if err := r.db.GetContext(ctx, &id, "SELECT 'ENR' || lpad(nextval('enrollment_id_seq')::text, 6, '0')"); err != nil {
			return fmt.Errorf("next enrollment id: %w", err)
		}
		enrollment.ID = id
	}
	if enrollment.EnrolledDate.IsZero() {
		enrollment.EnrolledDate = time.Now().UTC()
	}
	query := `INSERT INTO enrollments (id, student_id, course_id, status, enrolled_date)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`
	_, err := r.db.ExecContext(ctx, query, enrollment.ID, enrollment.StudentID, enrollment.CourseID,
		enrollment.Status, enrollment.EnrolledDate)
	if err != nil {
		return fmt.Errorf("save enrollment %s: %w", enrollment.ID, err)
	}
	return nil
}

// FindByID returns the enrollment or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE id = $1", enrollmentColumns)
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindAll returns all enrollments ordered by ID.
func (r *EnrollmentRepository) FindAll(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	query := fmt.Sprintf("SELECT %s FROM enrollments ORDER BY id", enrollmentColumns)
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// FindByStudent returns every enrollment record owned by the student.
func (r *EnrollmentRepository) FindByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE student_id = $1 ORDER BY id", enrollmentColumns)
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// FindByCourse returns every enrollment record for the course.
func (r *EnrollmentRepository) FindByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE course_id = $1 ORDER BY id", enrollmentColumns)
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// FindActiveByStudent returns the student's ENROLLED records only.
func (r *EnrollmentRepository) FindActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE student_id = $1 AND status = $2 ORDER BY id", enrollmentColumns)
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// FindByStudentAndCourse returns the pair's non-dropped enrollment, or
// sql.ErrNoRows.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status <> $3 ORDER BY id LIMIT 1", enrollmentColumns)
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID, models.EnrollmentStatusDropped); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// IsStudentEnrolled reports whether the pair holds an ENROLLED record.
func (r *EnrollmentRepository) IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var enrolled bool
	query := "SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status = $3)"
	err := r.db.GetContext(ctx, &enrolled, query, studentID, courseID, models.EnrollmentStatusEnrolled)
	return enrolled, err
}

// CountByCourseAndStatus tallies a course's enrollments in a given status.
func (r *EnrollmentRepository) CountByCourseAndStatus(ctx context.Context, courseID string, status models.EnrollmentStatus) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2"
	err := r.db.GetContext(ctx, &count, query, courseID, status)
	return count, err
}

// Delete removes the enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete enrollment %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
