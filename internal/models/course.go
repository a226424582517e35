package models

// Course represents a course offering with bounded seating.
type Course struct {
	ID               string   `db:"id" json:"id"`
	Name             string   `db:"name" json:"name"`
	Credits          int      `db:"credits" json:"credits"`
	Capacity         int      `db:"capacity" json:"capacity"`
	Enrolled         int      `db:"enrolled" json:"enrolled"`
	WaitlistCapacity int      `db:"waitlist_capacity" json:"waitlist_capacity"`
	Prerequisites    []string `json:"prerequisites"`
	Corequisites     []string `json:"corequisites"`
}

// HasAvailableSeats reports whether at least one seat remains.
func (c *Course) HasAvailableSeats() bool {
	return c.Enrolled < c.Capacity
}

// IsFull reports whether the course is at or over capacity.
func (c *Course) IsFull() bool {
	return c.Enrolled >= c.Capacity
}

// HasPrerequisites reports whether the course lists any prerequisites.
func (c *Course) HasPrerequisites() bool {
	return len(c.Prerequisites) > 0
}

// HasCorequisites reports whether the course lists any corequisites.
func (c *Course) HasCorequisites() bool {
	return len(c.Corequisites) > 0
}

// AddPrerequisite appends a prerequisite if not already listed.
func (c *Course) AddPrerequisite(courseID string) {
	for _, id := range c.Prerequisites {
		if id == courseID {
			return
		}
	}
	c.Prerequisites = append(c.Prerequisites, courseID)
}

// AddCorequisite appends a corequisite if not already listed.
func (c *Course) AddCorequisite(courseID string) {
	for _, id := range c.Corequisites {
		if id == courseID {
			return
		}
	}
	c.Corequisites = append(c.Corequisites, courseID)
}

// CourseFilter encapsulates allowed search parameters for listing courses.
type CourseFilter struct {
	Search    string
	Available *bool
	Page      int
	PageSize  int
}
