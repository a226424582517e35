package models

// Student represents a learner registered in the institution.
type Student struct {
	ID               string              `db:"id" json:"id"`
	Name             string              `db:"name" json:"name"`
	Program          string              `db:"program" json:"program"`
	Semester         int                 `db:"semester" json:"semester"`
	CompletedCourses map[string]struct{} `json:"completed_courses"`
	CurrentCredits   int                 `db:"current_credits" json:"current_credits"`
}

// HasCompleted reports whether the student has completed the given course.
func (s *Student) HasCompleted(courseID string) bool {
	_, ok := s.CompletedCourses[courseID]
	return ok
}

// CompleteCourse records a course as completed.
func (s *Student) CompleteCourse(courseID string) {
	if s.CompletedCourses == nil {
		s.CompletedCourses = make(map[string]struct{})
	}
	s.CompletedCourses[courseID] = struct{}{}
}

// AddCredits increases the student's current credit load.
func (s *Student) AddCredits(credits int) {
	s.CurrentCredits += credits
}

// RemoveCredits decreases the credit load, clamping at zero.
func (s *Student) RemoveCredits(credits int) {
	s.CurrentCredits -= credits
	if s.CurrentCredits < 0 {
		s.CurrentCredits = 0
	}
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Program  string
	Page     int
	PageSize int
}
