package models

// AllocationResult reports the outcome of a seat allocation attempt. A full
// course is a waitlisted outcome, never an error.
type AllocationResult struct {
	Allocated  bool   `json:"allocated"`
	Waitlisted bool   `json:"waitlisted"`
	Message    string `json:"message"`
}

// AllocationSuccess returns an allocated outcome.
func AllocationSuccess() AllocationResult {
	return AllocationResult{Allocated: true, Message: "Seat allocated successfully"}
}

// AllocationWaitlisted returns a waitlisted outcome.
func AllocationWaitlisted() AllocationResult {
	return AllocationResult{Waitlisted: true, Message: "No seats available - added to waitlist"}
}

// ValidationResult reports the outcome of a requirement check. Failures
// carry the first offending requirement only.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ValidationSuccess returns a passing validation result.
func ValidationSuccess(message string) ValidationResult {
	return ValidationResult{Valid: true, Message: message}
}

// ValidationFailure returns a failing validation result.
func ValidationFailure(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

// RegistrationResult is the outcome of a registration workflow. Status and
// EnrollmentID are only set on success.
type RegistrationResult struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	Status       EnrollmentStatus `json:"status,omitempty"`
	EnrollmentID string           `json:"enrollment_id,omitempty"`
}

// RegistrationSuccess returns a successful registration outcome.
func RegistrationSuccess(enrollmentID string, status EnrollmentStatus) RegistrationResult {
	return RegistrationResult{Success: true, Message: "Registration successful", Status: status, EnrollmentID: enrollmentID}
}

// RegistrationFailure returns a failed registration outcome.
func RegistrationFailure(message string) RegistrationResult {
	return RegistrationResult{Success: false, Message: message}
}
