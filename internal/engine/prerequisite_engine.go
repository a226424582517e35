package engine

import (
	"fmt"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// PrerequisiteEngine validates a student's academic history and current-term
// enrollments against a course's requirement lists. Pure checks, no mutation.
type PrerequisiteEngine struct{}

// NewPrerequisiteEngine constructs a PrerequisiteEngine.
func NewPrerequisiteEngine() *PrerequisiteEngine {
	return &PrerequisiteEngine{}
}

// CheckPrerequisites verifies every listed prerequisite appears in the
// student's completed set. Short-circuits on the first missing one in list
// order.
func (e *PrerequisiteEngine) CheckPrerequisites(student *models.Student, course *models.Course) models.ValidationResult {
	if !course.HasPrerequisites() {
		return models.ValidationSuccess("No prerequisites required")
	}
	for _, prereqID := range course.Prerequisites {
		if !student.HasCompleted(prereqID) {
			return models.ValidationFailure(fmt.Sprintf("Missing prerequisite: %s", prereqID))
		}
	}
	return models.ValidationSuccess("All prerequisites satisfied")
}

// CheckCorequisites verifies each corequisite is either completed or held as
// a current ENROLLED enrollment. Waitlisted and dropped enrollments do not
// satisfy a corequisite. Short-circuits on the first unsatisfied one.
func (e *PrerequisiteEngine) CheckCorequisites(student *models.Student, course *models.Course, currentEnrollments []models.Enrollment) models.ValidationResult {
	if !course.HasCorequisites() {
		return models.ValidationSuccess("No corequisites required")
	}
	for _, coreqID := range course.Corequisites {
		if student.HasCompleted(coreqID) {
			continue
		}
		enrolledInCoreq := false
		for i := range currentEnrollments {
			if currentEnrollments[i].CourseID == coreqID && currentEnrollments[i].IsEnrolled() {
				enrolledInCoreq = true
				break
			}
		}
		if !enrolledInCoreq {
			return models.ValidationFailure(fmt.Sprintf("Missing corequisite: %s", coreqID))
		}
	}
	return models.ValidationSuccess("All corequisites satisfied")
}

// ValidateAllRequirements checks prerequisites then corequisites; the first
// failure is returned without evaluating the rest.
func (e *PrerequisiteEngine) ValidateAllRequirements(student *models.Student, course *models.Course, currentEnrollments []models.Enrollment) models.ValidationResult {
	if result := e.CheckPrerequisites(student, course); !result.Valid {
		return result
	}
	if result := e.CheckCorequisites(student, course, currentEnrollments); !result.Valid {
		return result
	}
	return models.ValidationSuccess("All requirements satisfied")
}

// CheckSemesterRequirement reports whether the student has reached the
// minimum semester, boundary inclusive.
func (e *PrerequisiteEngine) CheckSemesterRequirement(student *models.Student, minSemester int) bool {
	return student.Semester >= minSemester
}

// CheckCreditLimit validates that adding credits keeps the student at or
// under the maximum.
func (e *PrerequisiteEngine) CheckCreditLimit(student *models.Student, additionalCredits, maxCredits int) models.ValidationResult {
	totalCredits := student.CurrentCredits + additionalCredits
	if totalCredits <= maxCredits {
		return models.ValidationSuccess("Credit limit satisfied")
	}
	return models.ValidationFailure(fmt.Sprintf("Credit limit exceeded: %d > %d", totalCredits, maxCredits))
}

// CheckAdvancedEligibility gates advanced courses: the student must reach
// minSemester, and then either be well past it or hold the prerequisites.
//
// minGPA is accepted but not consulted; the upstream rule never used it and
// product has not clarified whether a GPA gate was intended.
func (e *PrerequisiteEngine) CheckAdvancedEligibility(student *models.Student, course *models.Course, minGPA float64, minSemester int) bool {
	if student.Semester < minSemester {
		return false
	}
	hasHighSemester := student.Semester > minSemester+2
	hasAllPrereqs := e.CheckPrerequisites(student, course).Valid
	return hasHighSemester || hasAllPrereqs
}
