package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositorySave(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs("CS201", "Data Structures", 4, 30, 0, 10, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &models.Course{
		ID:               "CS201",
		Name:             "Data Structures",
		Credits:          4,
		Capacity:         30,
		WaitlistCapacity: 10,
		Prerequisites:    []string{"CS101"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "credits", "capacity", "enrolled", "waitlist_capacity", "prerequisites", "corequisites"}).
		AddRow("CS201", "Data Structures", 4, 30, 12, 10, "{CS101}", "{}")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, credits, capacity, enrolled, waitlist_capacity, prerequisites, corequisites FROM courses WHERE id = $1")).
		WithArgs("CS201").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "CS201")
	require.NoError(t, err)
	assert.Equal(t, 12, course.Enrolled)
	assert.Equal(t, []string{"CS101"}, course.Prerequisites)
	assert.Empty(t, course.Corequisites)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM courses WHERE id").
		WithArgs("CS999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "CS999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseRepositoryListAvailable(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "credits", "capacity", "enrolled", "waitlist_capacity", "prerequisites", "corequisites"}).
		AddRow("CS201", "Data Structures", 4, 30, 12, 10, "{}", "{}")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, credits, capacity, enrolled, waitlist_capacity, prerequisites, corequisites FROM courses WHERE enrolled < capacity ORDER BY id LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE enrolled < capacity")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	available := true
	list, total, err := repo.List(context.Background(), models.CourseFilter{Available: &available})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindAll(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "credits", "capacity", "enrolled", "waitlist_capacity", "prerequisites", "corequisites"}).
		AddRow("CS101", "Intro to CS", 3, 30, 30, 5, "{}", "{}").
		AddRow("CS201", "Data Structures", 4, 30, 12, 10, "{CS101}", "{}")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, credits, capacity, enrolled, waitlist_capacity, prerequisites, corequisites FROM courses ORDER BY id")).
		WillReturnRows(rows)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "CS101", all[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("DELETE FROM courses").
		WithArgs("CS101").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "CS101")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
