package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

func TestSeatAllocatorAllocate(t *testing.T) {
	allocator := NewSeatAllocator()
	course := &models.Course{ID: "CS101", Capacity: 2}

	result := allocator.Allocate(course)
	require.True(t, result.Allocated)
	assert.False(t, result.Waitlisted)
	assert.Equal(t, 1, course.Enrolled)

	result = allocator.Allocate(course)
	require.True(t, result.Allocated)
	assert.Equal(t, 2, course.Enrolled)

	result = allocator.Allocate(course)
	assert.False(t, result.Allocated)
	assert.True(t, result.Waitlisted)
	assert.Equal(t, 2, course.Enrolled)
}

func TestSeatAllocatorAllocateZeroCapacity(t *testing.T) {
	allocator := NewSeatAllocator()
	course := &models.Course{ID: "CS101", Capacity: 0}

	result := allocator.Allocate(course)
	assert.False(t, result.Allocated)
	assert.True(t, result.Waitlisted)
	assert.Equal(t, 0, course.Enrolled)
}

func TestSeatAllocatorRelease(t *testing.T) {
	allocator := NewSeatAllocator()
	course := &models.Course{ID: "CS101", Capacity: 2, Enrolled: 1}

	assert.True(t, allocator.Release(course))
	assert.Equal(t, 0, course.Enrolled)

	assert.False(t, allocator.Release(course))
	assert.Equal(t, 0, course.Enrolled)
}

func TestSeatAllocatorLastSeatBoundary(t *testing.T) {
	allocator := NewSeatAllocator()
	course := &models.Course{ID: "CS101", Capacity: 3, Enrolled: 2}

	assert.True(t, allocator.HasOneSeatRemaining(course))
	assert.True(t, allocator.HasAvailableSeats(course))
	assert.False(t, allocator.IsAtCapacity(course))

	result := allocator.Allocate(course)
	require.True(t, result.Allocated)
	assert.False(t, allocator.HasOneSeatRemaining(course))
	assert.False(t, allocator.HasAvailableSeats(course))
	assert.True(t, allocator.IsAtCapacity(course))
}

func TestSeatAllocatorAvailableSeats(t *testing.T) {
	allocator := NewSeatAllocator()

	assert.Equal(t, 3, allocator.AvailableSeats(&models.Course{Capacity: 5, Enrolled: 2}))
	assert.Equal(t, 0, allocator.AvailableSeats(&models.Course{Capacity: 5, Enrolled: 5}))
	// over-capacity state clamps to zero instead of going negative
	assert.Equal(t, 0, allocator.AvailableSeats(&models.Course{Capacity: 5, Enrolled: 7}))
}

func TestSeatAllocatorUtilization(t *testing.T) {
	allocator := NewSeatAllocator()

	assert.InDelta(t, 40.0, allocator.Utilization(&models.Course{Capacity: 5, Enrolled: 2}), 0.001)
	assert.InDelta(t, 100.0, allocator.Utilization(&models.Course{Capacity: 5, Enrolled: 5}), 0.001)
	assert.Zero(t, allocator.Utilization(&models.Course{Capacity: 0, Enrolled: 0}))
}

func TestSeatAllocatorIsValidAllocation(t *testing.T) {
	allocator := NewSeatAllocator()

	assert.True(t, allocator.IsValidAllocation(&models.Course{Capacity: 5, Enrolled: 0}))
	assert.True(t, allocator.IsValidAllocation(&models.Course{Capacity: 5, Enrolled: 5}))
	assert.False(t, allocator.IsValidAllocation(&models.Course{Capacity: 5, Enrolled: 6}))
	assert.False(t, allocator.IsValidAllocation(&models.Course{Capacity: 5, Enrolled: -1}))
}

func TestSeatAllocatorCanAccommodate(t *testing.T) {
	allocator := NewSeatAllocator()
	course := &models.Course{Capacity: 5, Enrolled: 3}

	assert.True(t, allocator.CanAccommodate(course, 2))
	assert.False(t, allocator.CanAccommodate(course, 3))
	// raw arithmetic: an over-capacity course cannot accommodate anyone
	assert.False(t, allocator.CanAccommodate(&models.Course{Capacity: 5, Enrolled: 7}, 0))
}
