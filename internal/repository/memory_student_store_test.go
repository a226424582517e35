package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

func seedStudent(t *testing.T, store *MemoryStudentStore, id, name, program string) {
	t.Helper()
	err := store.Save(context.Background(), &models.Student{
		ID:               id,
		Name:             name,
		Program:          program,
		Semester:         3,
		CompletedCourses: map[string]struct{}{},
	})
	require.NoError(t, err)
}

func TestMemoryStudentStoreSaveAndFind(t *testing.T) {
	store := NewMemoryStudentStore()
	ctx := context.Background()
	seedStudent(t, store, "S1", "Ada", "CS")

	found, err := store.FindByID(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Name)

	_, err = store.FindByID(ctx, "S9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryStudentStoreReadsReturnCopies(t *testing.T) {
	store := NewMemoryStudentStore()
	ctx := context.Background()
	seedStudent(t, store, "S1", "Ada", "CS")

	found, err := store.FindByID(ctx, "S1")
	require.NoError(t, err)
	found.Name = "Changed"
	found.CompletedCourses["CS100"] = struct{}{}

	again, err := store.FindByID(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
	assert.Empty(t, again.CompletedCourses)
}

func TestMemoryStudentStoreFindAllSorted(t *testing.T) {
	store := NewMemoryStudentStore()
	ctx := context.Background()
	seedStudent(t, store, "S3", "Cleo", "CS")
	seedStudent(t, store, "S1", "Ada", "CS")
	seedStudent(t, store, "S2", "Ben", "MATH")

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "S1", all[0].ID)
	assert.Equal(t, "S2", all[1].ID)
	assert.Equal(t, "S3", all[2].ID)
}

func TestMemoryStudentStoreListFiltersAndPaginates(t *testing.T) {
	store := NewMemoryStudentStore()
	ctx := context.Background()
	seedStudent(t, store, "S1", "Ada Lovelace", "CS")
	seedStudent(t, store, "S2", "Ben", "MATH")
	seedStudent(t, store, "S3", "Adam", "CS")

	list, total, err := store.List(ctx, models.StudentFilter{Search: "ada"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = store.List(ctx, models.StudentFilter{Program: "CS", Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "S3", list[0].ID)

	list, total, err = store.List(ctx, models.StudentFilter{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, list)
}

func TestMemoryStudentStoreExistsAndDelete(t *testing.T) {
	store := NewMemoryStudentStore()
	ctx := context.Background()
	seedStudent(t, store, "S1", "Ada", "CS")

	ok, err := store.Exists(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := store.Delete(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "S1")
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err = store.Exists(ctx, "S1")
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
