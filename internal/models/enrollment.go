package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusWaitlisted EnrollmentStatus = "WAITLISTED"
	EnrollmentStatusDropped    EnrollmentStatus = "DROPPED"
)

// Enrollment links a student to a course. At most one non-dropped record
// may exist per (student, course) pair; a fresh registration after a drop
// creates a new record with a new ID.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	CourseID     string           `db:"course_id" json:"course_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	EnrolledDate time.Time        `db:"enrolled_date" json:"enrolled_date"`
}

// IsEnrolled reports whether the enrollment holds a seat.
func (e *Enrollment) IsEnrolled() bool {
	return e.Status == EnrollmentStatusEnrolled
}

// IsWaitlisted reports whether the enrollment is queued for a seat.
func (e *Enrollment) IsWaitlisted() bool {
	return e.Status == EnrollmentStatusWaitlisted
}

// IsDropped reports whether the enrollment has been dropped.
func (e *Enrollment) IsDropped() bool {
	return e.Status == EnrollmentStatusDropped
}

// Enroll transitions the enrollment to ENROLLED.
func (e *Enrollment) Enroll() {
	e.Status = EnrollmentStatusEnrolled
}

// Waitlist transitions the enrollment to WAITLISTED.
func (e *Enrollment) Waitlist() {
	e.Status = EnrollmentStatusWaitlisted
}

// Drop transitions the enrollment to DROPPED.
func (e *Enrollment) Drop() {
	e.Status = EnrollmentStatusDropped
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
}
