package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/engine"
	"github.com/noah-isme/course-registration-api/internal/models"
)

type mockStudentStore struct {
	students map[string]models.Student
	saveErr  error
}

func (m *mockStudentStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentStore) Save(ctx context.Context, student *models.Student) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	m.students[student.ID] = *student
	return nil
}

type mockCourseStore struct {
	courses map[string]models.Course
	saveErr error
}

func (m *mockCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseStore) FindAll(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseStore) Save(ctx context.Context, course *models.Course) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	m.courses[course.ID] = *course
	return nil
}

type mockEnrollmentStore struct {
	enrollments map[string]models.Enrollment
	sequence    int
	saveErr     error
}

func (m *mockEnrollmentStore) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentStore) FindByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) FindByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) FindActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID && !e.IsDropped() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && !e.IsDropped() {
			found := e
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentStore) IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.IsEnrolled() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentStore) Save(ctx context.Context, enrollment *models.Enrollment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		m.sequence++
		enrollment.ID = fmt.Sprintf("ENR%06d", m.sequence)
	}
	m.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (m *mockEnrollmentStore) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.enrollments[id]; !ok {
		return false, nil
	}
	delete(m.enrollments, id)
	return true, nil
}

type registrationFixture struct {
	students    *mockStudentStore
	courses     *mockCourseStore
	enrollments *mockEnrollmentStore
	waitlist    *engine.WaitlistManager
	svc         *RegistrationService
}

func newRegistrationFixture() *registrationFixture {
	students := &mockStudentStore{students: make(map[string]models.Student)}
	courses := &mockCourseStore{courses: make(map[string]models.Course)}
	enrollments := &mockEnrollmentStore{enrollments: make(map[string]models.Enrollment)}
	seats := engine.NewSeatAllocator()
	waitlist := engine.NewWaitlistManager(seats)
	svc := NewRegistrationService(students, courses, enrollments,
		engine.NewPrerequisiteEngine(), seats, waitlist, nil, nil)
	return &registrationFixture{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		waitlist:    waitlist,
		svc:         svc,
	}
}

func (f *registrationFixture) addStudent(id string, completed ...string) {
	s := models.Student{ID: id, Name: "Student " + id, Program: "CS", Semester: 1}
	for _, c := range completed {
		s.CompleteCourse(c)
	}
	f.students.students[id] = s
}

func (f *registrationFixture) addCourse(id string, credits, capacity, waitlistCapacity int) {
	f.courses.courses[id] = models.Course{
		ID:               id,
		Name:             "Course " + id,
		Credits:          credits,
		Capacity:         capacity,
		WaitlistCapacity: waitlistCapacity,
	}
}

func TestRegisterAllocatesSeat(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)

	result, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, models.EnrollmentStatusEnrolled, result.Status)
	assert.Equal(t, "ENR000001", result.EnrollmentID)

	assert.Equal(t, 1, f.courses.courses["CS101"].Enrolled)
	assert.Equal(t, 3, f.students.students["S1"].CurrentCredits)
	assert.Equal(t, models.EnrollmentStatusEnrolled, f.enrollments.enrollments["ENR000001"].Status)
}

func TestRegisterStudentNotFound(t *testing.T) {
	f := newRegistrationFixture()
	f.addCourse("CS101", 3, 5, 2)

	result, err := f.svc.Register(context.Background(), "ghost", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Student not found: ghost", result.Message)
}

func TestRegisterCourseNotFound(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")

	result, err := f.svc.Register(context.Background(), "S1", "ghost")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Course not found: ghost", result.Message)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)

	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)

	result, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Student already enrolled in this course", result.Message)
	assert.Equal(t, 1, f.courses.courses["CS101"].Enrolled)
}

func TestRegisterWaitlistedCountsAsDuplicate(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addCourse("CS101", 3, 1, 2)

	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	result, err := f.svc.Register(context.Background(), "S2", "CS101")
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusWaitlisted, result.Status)

	result, err = f.svc.Register(context.Background(), "S2", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Student already enrolled in this course", result.Message)
}

func TestRegisterAllowsReRegistrationAfterDrop(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)

	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	dropped, err := f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, dropped)

	result, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "ENR000002", result.EnrollmentID)
}

func TestRegisterPrerequisitesNotMet(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.courses.courses["CS301"] = models.Course{
		ID: "CS301", Credits: 3, Capacity: 5, WaitlistCapacity: 2,
		Prerequisites: []string{"CS101"},
	}

	result, err := f.svc.Register(context.Background(), "S1", "CS301")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Prerequisites not met: Missing prerequisite: CS101", result.Message)
	assert.Empty(t, f.enrollments.enrollments)
}

func TestRegisterCorequisiteSatisfiedByConcurrentEnrollment(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("MATH101", 4, 5, 2)
	f.courses.courses["PHYS101"] = models.Course{
		ID: "PHYS101", Credits: 3, Capacity: 5, WaitlistCapacity: 2,
		Corequisites: []string{"MATH101"},
	}

	result, err := f.svc.Register(context.Background(), "S1", "PHYS101")
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, "Prerequisites not met: Missing corequisite: MATH101", result.Message)

	_, err = f.svc.Register(context.Background(), "S1", "MATH101")
	require.NoError(t, err)

	result, err = f.svc.Register(context.Background(), "S1", "PHYS101")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestRegisterFullCourseWaitlists(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addCourse("CS101", 3, 1, 2)

	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)

	result, err := f.svc.Register(context.Background(), "S2", "CS101")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, models.EnrollmentStatusWaitlisted, result.Status)

	assert.Equal(t, 1, f.courses.courses["CS101"].Enrolled)
	assert.Zero(t, f.students.students["S2"].CurrentCredits)
	assert.Equal(t, 1, f.svc.WaitlistPosition("S2", "CS101"))
}

func TestRegisterZeroCapacityGoesStraightToWaitlist(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("SEM500", 2, 0, 3)

	result, err := f.svc.Register(context.Background(), "S1", "SEM500")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, models.EnrollmentStatusWaitlisted, result.Status)
}

func TestRegisterFullCourseAndFullWaitlist(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 0, 0)

	result, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Course full and waitlist is at capacity", result.Message)
	assert.Empty(t, f.enrollments.enrollments)
}

func TestDropReleasesSeatAndCredits(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)
	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)

	dropped, err := f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, dropped)

	assert.Equal(t, 0, f.courses.courses["CS101"].Enrolled)
	assert.Zero(t, f.students.students["S1"].CurrentCredits)
	assert.Equal(t, models.EnrollmentStatusDropped, f.enrollments.enrollments["ENR000001"].Status)
}

func TestDropWithoutEnrollmentReturnsFalse(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)

	dropped, err := f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.False(t, dropped)
}

func TestDropTwiceReturnsFalse(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)
	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)

	dropped, err := f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, dropped)

	dropped, err = f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.False(t, dropped)
}

func TestDropWaitlistedLeavesQueue(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addCourse("CS101", 3, 1, 2)
	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "S2", "CS101")
	require.NoError(t, err)

	dropped, err := f.svc.Drop(context.Background(), "S2", "CS101")
	require.NoError(t, err)
	require.True(t, dropped)

	assert.Equal(t, engine.WaitlistNotFound, f.svc.WaitlistPosition("S2", "CS101"))
	assert.Equal(t, 1, f.courses.courses["CS101"].Enrolled)
}

func TestDropPromotesHeadOfWaitlist(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addStudent("S3")
	f.addCourse("CS101", 3, 1, 5)
	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "S2", "CS101")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "S3", "CS101")
	require.NoError(t, err)

	dropped, err := f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, dropped)

	// S2 was first in line and takes the freed seat
	promoted, err := f.enrollments.FindByStudentAndCourse(context.Background(), "S2", "CS101")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, promoted.Status)
	assert.Equal(t, 3, f.students.students["S2"].CurrentCredits)
	assert.Equal(t, 1, f.courses.courses["CS101"].Enrolled)

	// S3 moves up to the head of the queue
	assert.Equal(t, 1, f.svc.WaitlistPosition("S3", "CS101"))
}

func TestDropPromotionAbandonedOnMissingEnrollment(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addCourse("CS101", 3, 1, 5)
	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "S2", "CS101")
	require.NoError(t, err)

	// simulate corrupted state: the waitlisted record vanishes
	for id, e := range f.enrollments.enrollments {
		if e.StudentID == "S2" {
			delete(f.enrollments.enrollments, id)
		}
	}

	dropped, err := f.svc.Drop(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, dropped)

	// the drop stands and the freed seat stays open
	assert.Equal(t, 0, f.courses.courses["CS101"].Enrolled)
}

func TestCheckEligibility(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addCourse("CS101", 3, 5, 2)

	result, err := f.svc.CheckEligibility(context.Background(), "ghost", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Student not found", result.Message)

	result, err = f.svc.CheckEligibility(context.Background(), "S1", "ghost")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Course not found", result.Message)

	result, err = f.svc.CheckEligibility(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	result, err = f.svc.CheckEligibility(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Already enrolled", result.Message)
}

func TestCourseWaitlistSnapshot(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addStudent("S3")
	f.addCourse("CS101", 3, 1, 5)
	for _, id := range []string{"S1", "S2", "S3"} {
		_, err := f.svc.Register(context.Background(), id, "CS101")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"S2", "S3"}, f.svc.CourseWaitlist("CS101"))
}

func TestHasAvailableSeats(t *testing.T) {
	f := newRegistrationFixture()
	f.addCourse("CS101", 3, 1, 2)

	available, err := f.svc.HasAvailableSeats(context.Background(), "CS101")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = f.svc.HasAvailableSeats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestPurgeStudentUnwindsEverything(t *testing.T) {
	f := newRegistrationFixture()
	f.addStudent("S1")
	f.addStudent("S2")
	f.addCourse("CS101", 3, 5, 2)
	f.addCourse("CS201", 4, 1, 2)

	_, err := f.svc.Register(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "S2", "CS201")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "S1", "CS201")
	require.NoError(t, err)
	require.Equal(t, 1, f.svc.WaitlistPosition("S1", "CS201"))

	require.NoError(t, f.svc.PurgeStudent(context.Background(), "S1"))

	assert.Equal(t, 0, f.courses.courses["CS101"].Enrolled)
	assert.Equal(t, 1, f.courses.courses["CS201"].Enrolled)
	assert.Equal(t, engine.WaitlistNotFound, f.svc.WaitlistPosition("S1", "CS201"))

	remaining, err := f.enrollments.FindByStudent(context.Background(), "S1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := f.enrollments.FindByStudent(context.Background(), "S2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
