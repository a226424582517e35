package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// StudentRepository is the Postgres-backed student store. The completed
// course set is stored as a text[] column.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

type studentRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Program          string         `db:"program"`
	Semester         int            `db:"semester"`
	CurrentCredits   int            `db:"current_credits"`
	CompletedCourses pq.StringArray `db:"completed_courses"`
}

func (r studentRow) toModel() models.Student {
	student := models.Student{
		ID:               r.ID,
		Name:             r.Name,
		Program:          r.Program,
		Semester:         r.Semester,
		CurrentCredits:   r.CurrentCredits,
		CompletedCourses: make(map[string]struct{}, len(r.CompletedCourses)),
	}
	for _, courseID := range r.CompletedCourses {
		student.CompletedCourses[courseID] = struct{}{}
	}
	return student
}

func completedList(student *models.Student) pq.StringArray {
	out := make(pq.StringArray, 0, len(student.CompletedCourses))
	for courseID := range student.CompletedCourses {
		out = append(out, courseID)
	}
	return out
}

const studentColumns = "id, name, program, semester, current_credits, completed_courses"

// Save upserts a student by primary key.
func (r *StudentRepository) Save(ctx context.Context, student *models.Student) error {
	query := `INSERT INTO students (id, name, program, semester, current_credits, completed_courses)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, program = EXCLUDED.program,
        semester = EXCLUDED.semester, current_credits = EXCLUDED.current_credits,
        completed_courses = EXCLUDED.completed_courses`
	_, err := r.db.ExecContext(ctx, query, student.ID, student.Name, student.Program,
		student.Semester, student.CurrentCredits, completedList(student))
	if err != nil {
		return fmt.Errorf("save student %s: %w", student.ID, err)
	}
	return nil
}

// FindByID returns the student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var row studentRow
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	student := row.toModel()
	return &student, nil
}

// FindAll returns all students ordered by ID.
func (r *StudentRepository) FindAll(ctx context.Context) ([]models.Student, error) {
	var rows []studentRow
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY id", studentColumns)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students, nil
}

// List returns students matching the filter along with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Program != "" {
		conditions = append(conditions, fmt.Sprintf("program = $%d", len(args)+1))
		args = append(args, filter.Program)
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

	query := fmt.Sprintf("SELECT %s FROM students%s ORDER BY id LIMIT %d OFFSET %d",
		studentColumns, clause, size, (page-1)*size)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery := "SELECT COUNT(*) FROM students" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students, total, nil
}

// Exists reports whether the student ID is present.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", id)
	return exists, err
}

// Delete removes the student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete student %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
