package engine

import "github.com/noah-isme/course-registration-api/internal/models"

// WaitlistNotFound is the sentinel position for a student absent from a
// course's waitlist.
const WaitlistNotFound = -1

// WaitlistManager keeps a FIFO queue of waiting student IDs per course.
// Queues are created lazily on the first admission attempt; every accessor
// treats an absent queue as empty. Promotion only removes the head of the
// queue; seat allocation and enrollment updates belong to the caller.
type WaitlistManager struct {
	waitlists map[string][]string
	allocator *SeatAllocator
}

// NewWaitlistManager constructs a WaitlistManager.
func NewWaitlistManager(allocator *SeatAllocator) *WaitlistManager {
	return &WaitlistManager{
		waitlists: make(map[string][]string),
		allocator: allocator,
	}
}

// Add enqueues a student at the tail of the course's waitlist. It rejects
// when the waitlist is at capacity or the student is already queued.
func (m *WaitlistManager) Add(studentID string, course *models.Course) bool {
	queue := m.waitlists[course.ID]
	if len(queue) >= course.WaitlistCapacity {
		return false
	}
	for _, id := range queue {
		if id == studentID {
			return false
		}
	}
	m.waitlists[course.ID] = append(queue, studentID)
	return true
}

// Remove dequeues the named student, preserving the order of the remaining
// entries. Returns false if the student was not queued.
func (m *WaitlistManager) Remove(studentID, courseID string) bool {
	queue, ok := m.waitlists[courseID]
	if !ok {
		return false
	}
	for i, id := range queue {
		if id == studentID {
			m.waitlists[courseID] = append(queue[:i:i], queue[i+1:]...)
			return true
		}
	}
	return false
}

// Promote dequeues the head of the course's waitlist when a seat is
// available. The empty string signals no promotion: missing queue, empty
// queue, or no free seat.
func (m *WaitlistManager) Promote(course *models.Course) (string, bool) {
	queue, ok := m.waitlists[course.ID]
	if !ok || len(queue) == 0 {
		return "", false
	}
	if !m.allocator.HasAvailableSeats(course) {
		return "", false
	}
	studentID := queue[0]
	m.waitlists[course.ID] = queue[1:]
	return studentID, true
}

// Position returns the 1-based FIFO position of a student, or
// WaitlistNotFound if absent.
func (m *WaitlistManager) Position(studentID, courseID string) int {
	queue, ok := m.waitlists[courseID]
	if !ok {
		return WaitlistNotFound
	}
	for i, id := range queue {
		if id == studentID {
			return i + 1
		}
	}
	return WaitlistNotFound
}

// Size returns the waitlist length for a course.
func (m *WaitlistManager) Size(courseID string) int {
	return len(m.waitlists[courseID])
}

// IsFull reports whether the course's waitlist is at capacity.
func (m *WaitlistManager) IsFull(course *models.Course) bool {
	return m.Size(course.ID) >= course.WaitlistCapacity
}

// HasSpace reports whether the course's waitlist can admit another student.
func (m *WaitlistManager) HasSpace(course *models.Course) bool {
	return m.Size(course.ID) < course.WaitlistCapacity
}

// Contains reports whether the student is queued for the course.
func (m *WaitlistManager) Contains(studentID, courseID string) bool {
	for _, id := range m.waitlists[courseID] {
		if id == studentID {
			return true
		}
	}
	return false
}

// ListAll returns a snapshot of the course's waitlist in FIFO order.
func (m *WaitlistManager) ListAll(courseID string) []string {
	queue := m.waitlists[courseID]
	snapshot := make([]string, len(queue))
	copy(snapshot, queue)
	return snapshot
}

// Clear empties the course's waitlist.
func (m *WaitlistManager) Clear(courseID string) {
	delete(m.waitlists, courseID)
}
