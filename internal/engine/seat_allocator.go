package engine

import "github.com/noah-isme/course-registration-api/internal/models"

// SeatAllocator owns seat-count transitions on a course. It mutates only the
// Course instance it is handed; persisting the updated count is the caller's
// responsibility.
type SeatAllocator struct{}

// NewSeatAllocator constructs a SeatAllocator.
func NewSeatAllocator() *SeatAllocator {
	return &SeatAllocator{}
}

// Allocate grants a seat when one is free, otherwise reports a waitlisted
// outcome. A capacity of zero always waitlists.
func (a *SeatAllocator) Allocate(course *models.Course) models.AllocationResult {
	if course.Enrolled < course.Capacity {
		course.Enrolled++
		return models.AllocationSuccess()
	}
	return models.AllocationWaitlisted()
}

// Release frees a seat. It never decrements below zero; releasing an empty
// course is a no-op reported as false.
func (a *SeatAllocator) Release(course *models.Course) bool {
	if course.Enrolled > 0 {
		course.Enrolled--
		return true
	}
	return false
}

// HasAvailableSeats reports whether a seat remains.
func (a *SeatAllocator) HasAvailableSeats(course *models.Course) bool {
	return course.Enrolled < course.Capacity
}

// IsAtCapacity reports whether the course is at or over capacity.
func (a *SeatAllocator) IsAtCapacity(course *models.Course) bool {
	return course.Enrolled >= course.Capacity
}

// AvailableSeats returns the remaining seat count, clamped at zero when an
// externally corrupted over-capacity state would make it negative.
func (a *SeatAllocator) AvailableSeats(course *models.Course) int {
	available := course.Capacity - course.Enrolled
	if available < 0 {
		return 0
	}
	return available
}

// HasOneSeatRemaining reports whether exactly one seat is left.
func (a *SeatAllocator) HasOneSeatRemaining(course *models.Course) bool {
	return course.Capacity-course.Enrolled == 1
}

// Utilization returns the fill percentage, zero for zero-capacity courses.
func (a *SeatAllocator) Utilization(course *models.Course) float64 {
	if course.Capacity == 0 {
		return 0
	}
	return float64(course.Enrolled) / float64(course.Capacity) * 100
}

// IsValidAllocation reports whether the enrolled count is within bounds.
func (a *SeatAllocator) IsValidAllocation(course *models.Course) bool {
	return course.Enrolled >= 0 && course.Enrolled <= course.Capacity
}

// CanAccommodate reports whether n students fit in the remaining seats.
// Uses the raw seat arithmetic, so an over-capacity course yields a
// negative count rather than the clamped AvailableSeats value.
func (a *SeatAllocator) CanAccommodate(course *models.Course, n int) bool {
	return course.Capacity-course.Enrolled >= n
}
