package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

func seedCourse(t *testing.T, store *MemoryCourseStore, id, name string, capacity, enrolled int) {
	t.Helper()
	err := store.Save(context.Background(), &models.Course{
		ID:       id,
		Name:     name,
		Credits:  3,
		Capacity: capacity,
		Enrolled: enrolled,
	})
	require.NoError(t, err)
}

func TestMemoryCourseStoreSaveAndFind(t *testing.T) {
	store := NewMemoryCourseStore()
	ctx := context.Background()
	seedCourse(t, store, "CS101", "Intro to CS", 30, 0)

	found, err := store.FindByID(ctx, "CS101")
	require.NoError(t, err)
	assert.Equal(t, "Intro to CS", found.Name)

	_, err = store.FindByID(ctx, "CS999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryCourseStoreReadsReturnCopies(t *testing.T) {
	store := NewMemoryCourseStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &models.Course{
		ID:            "CS201",
		Name:          "Data Structures",
		Capacity:      30,
		Prerequisites: []string{"CS101"},
	}))

	found, err := store.FindByID(ctx, "CS201")
	require.NoError(t, err)
	found.Enrolled = 10
	found.Prerequisites[0] = "CS100"

	again, err := store.FindByID(ctx, "CS201")
	require.NoError(t, err)
	assert.Zero(t, again.Enrolled)
	assert.Equal(t, []string{"CS101"}, again.Prerequisites)
}

func TestMemoryCourseStoreListAvailableFilter(t *testing.T) {
	store := NewMemoryCourseStore()
	ctx := context.Background()
	seedCourse(t, store, "CS101", "Intro to CS", 2, 2)
	seedCourse(t, store, "CS201", "Data Structures", 30, 5)
	seedCourse(t, store, "MATH101", "Calculus", 30, 30)

	available := true
	list, total, err := store.List(ctx, models.CourseFilter{Available: &available})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "CS201", list[0].ID)

	available = false
	list, total, err = store.List(ctx, models.CourseFilter{Available: &available})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)
}

func TestMemoryCourseStoreListSearchAndPagination(t *testing.T) {
	store := NewMemoryCourseStore()
	ctx := context.Background()
	seedCourse(t, store, "CS101", "Intro to CS", 30, 0)
	seedCourse(t, store, "CS201", "Data Structures", 30, 0)
	seedCourse(t, store, "MATH101", "Calculus", 30, 0)

	list, total, err := store.List(ctx, models.CourseFilter{Search: "calc"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "MATH101", list[0].ID)

	list, total, err = store.List(ctx, models.CourseFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "MATH101", list[0].ID)
}

func TestMemoryCourseStoreDelete(t *testing.T) {
	store := NewMemoryCourseStore()
	ctx := context.Background()
	seedCourse(t, store, "CS101", "Intro to CS", 30, 0)

	deleted, err := store.Delete(ctx, "CS101")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "CS101")
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err := store.Exists(ctx, "CS101")
	require.NoError(t, err)
	assert.False(t, ok)
}
