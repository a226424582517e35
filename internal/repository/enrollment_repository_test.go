package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositorySaveAssignsSequenceID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 'ENR' || lpad(nextval('enrollment_id_seq')::text, 6, '0')")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ENR000001"))
	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs("ENR000001", "S1", "CS101", string(models.EnrollmentStatusEnrolled), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "S1", CourseID: "CS101", Status: models.EnrollmentStatusEnrolled}
	require.NoError(t, repo.Save(context.Background(), enrollment))
	assert.Equal(t, "ENR000001", enrollment.ID)
	assert.False(t, enrollment.EnrolledDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	enrolledAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs("ENR000007", "S1", "CS101", string(models.EnrollmentStatusDropped), enrolledAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		ID:           "ENR000007",
		StudentID:    "S1",
		CourseID:     "CS101",
		Status:       models.EnrollmentStatusDropped,
		EnrolledDate: enrolledAt,
	}
	require.NoError(t, repo.Save(context.Background(), enrollment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByStudentAndCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "enrolled_date"}).
		AddRow("ENR000001", "S1", "CS101", string(models.EnrollmentStatusWaitlisted), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, course_id, status, enrolled_date FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status <> $3 ORDER BY id LIMIT 1")).
		WithArgs("S1", "CS101", string(models.EnrollmentStatusDropped)).
		WillReturnRows(rows)

	found, err := repo.FindByStudentAndCourse(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusWaitlisted, found.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByStudentAndCourseNotFound(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM enrollments WHERE student_id").
		WithArgs("S1", "CS101", string(models.EnrollmentStatusDropped)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentAndCourse(context.Background(), "S1", "CS101")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentRepositoryIsStudentEnrolled(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status = $3)")).
		WithArgs("S1", "CS101", string(models.EnrollmentStatusEnrolled)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	enrolled, err := repo.IsStudentEnrolled(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.False(t, enrolled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindActiveByStudent(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "enrolled_date"}).
		AddRow("ENR000001", "S1", "CS101", string(models.EnrollmentStatusEnrolled), time.Now()).
		AddRow("ENR000004", "S1", "MATH101", string(models.EnrollmentStatusEnrolled), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, course_id, status, enrolled_date FROM enrollments WHERE student_id = $1 AND status = $2 ORDER BY id")).
		WithArgs("S1", string(models.EnrollmentStatusEnrolled)).
		WillReturnRows(rows)

	active, err := repo.FindActiveByStudent(context.Background(), "S1")
	require.NoError(t, err)
	assert.Len(t, active, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountByCourseAndStatus(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2")).
		WithArgs("CS101", string(models.EnrollmentStatusWaitlisted)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByCourseAndStatus(context.Background(), "CS101", models.EnrollmentStatusWaitlisted)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs("ENR000001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), "ENR000001")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
