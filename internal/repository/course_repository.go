package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// CourseRepository is the Postgres-backed course store. Requirement lists
// are stored as text[] columns.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

type courseRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Credits          int            `db:"credits"`
	Capacity         int            `db:"capacity"`
	Enrolled         int            `db:"enrolled"`
	WaitlistCapacity int            `db:"waitlist_capacity"`
	Prerequisites    pq.StringArray `db:"prerequisites"`
	Corequisites     pq.StringArray `db:"corequisites"`
}

func (r courseRow) toModel() models.Course {
	return models.Course{
		ID:               r.ID,
		Name:             r.Name,
		Credits:          r.Credits,
		Capacity:         r.Capacity,
		Enrolled:         r.Enrolled,
		WaitlistCapacity: r.WaitlistCapacity,
		Prerequisites:    []string(r.Prerequisites),
		Corequisites:     []string(r.Corequisites),
	}
}

const courseColumns = "id, name, credits, capacity, enrolled, waitlist_capacity, prerequisites, corequisites"

// Save upserts a course by primary key, seat count included.
func (r *CourseRepository) Save(ctx context.Context, course *models.Course) error {
	query := `INSERT INTO courses (id, name, credits, capacity, enrolled, waitlist_capacity, prerequisites, corequisites)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, credits = EXCLUDED.credits,
        capacity = EXCLUDED.capacity, enrolled = EXCLUDED.enrolled,
        waitlist_capacity = EXCLUDED.waitlist_capacity,
        prerequisites = EXCLUDED.prerequisites, corequisites = EXCLUDED.corequisites`
	_, err := r.db.ExecContext(ctx, query, course.ID, course.Name, course.Credits, course.Capacity,
		course.Enrolled, course.WaitlistCapacity, pq.StringArray(course.Prerequisites), pq.StringArray(course.Corequisites))
	if err != nil {
		return fmt.Errorf("save course %s: %w", course.ID, err)
	}
	return nil
}

// FindByID returns the course or sql.ErrNoRows.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var row courseRow
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	course := row.toModel()
	return &course, nil
}

// FindAll returns all courses ordered by ID.
func (r *CourseRepository) FindAll(ctx context.Context) ([]models.Course, error) {
	var rows []courseRow
	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY id", courseColumns)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, nil
}

// List returns courses matching the filter along with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Available != nil {
		if *filter.Available {
			conditions = append(conditions, "enrolled < capacity")
		} else {
			conditions = append(conditions, "enrolled >= capacity")
		}
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s FROM courses%s ORDER BY id LIMIT %d OFFSET %d",
		courseColumns, clause, size, (page-1)*size)
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery := "SELECT COUNT(*) FROM courses" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, total, nil
}

// Exists reports whether the course ID is present.
func (r *CourseRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)", id)
	return exists, err
}

// Delete removes the course row.
func (r *CourseRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete course %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
