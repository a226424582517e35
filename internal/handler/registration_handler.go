package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registration-api/internal/engine"
	"github.com/noah-isme/course-registration-api/internal/service"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/response"
)

// RegisterRequest holds the payload for registrations and drops.
type RegisterRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	CourseID  string `json:"course_id" binding:"required"`
}

// RegistrationHandler exposes the registration workflow endpoints.
type RegistrationHandler struct {
	registrar *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrar *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar}
}

// Register godoc
// @Summary Register a student for a course
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.registrar.Register(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		response.JSON(c, http.StatusConflict, result, nil)
		return
	}
	response.Created(c, result)
}

// Drop godoc
// @Summary Drop a student's enrollment in a course
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Drop payload"
// @Success 204
// @Router /registrations [delete]
func (h *RegistrationHandler) Drop(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	dropped, err := h.registrar.Drop(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !dropped {
		response.Error(c, appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound, "no active enrollment to drop"))
		return
	}
	response.NoContent(c)
}

// CheckEligibility godoc
// @Summary Check whether a student may register for a course
// @Tags Registrations
// @Produce json
// @Param studentId query string true "Student ID"
// @Param courseId query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/eligibility [get]
func (h *RegistrationHandler) CheckEligibility(c *gin.Context) {
	studentID := c.Query("studentId")
	courseID := c.Query("courseId")
	if studentID == "" || courseID == "" {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "studentId and courseId are required"))
		return
	}
	result, err := h.registrar.CheckEligibility(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// WaitlistPosition godoc
// @Summary Get a student's position on a course waitlist
// @Tags Registrations
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/waitlist/{studentId} [get]
func (h *RegistrationHandler) WaitlistPosition(c *gin.Context) {
	position := h.registrar.WaitlistPosition(c.Param("studentId"), c.Param("id"))
	if position == engine.WaitlistNotFound {
		response.Error(c, appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound, "student is not on the waitlist"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"position": position}, nil)
}

// CourseWaitlist godoc
// @Summary List a course's waitlist in queue order
// @Tags Registrations
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/waitlist [get]
func (h *RegistrationHandler) CourseWaitlist(c *gin.Context) {
	waitlist := h.registrar.CourseWaitlist(c.Param("id"))
	response.JSON(c, http.StatusOK, waitlist, nil)
}

// StudentEnrollments godoc
// @Summary List a student's enrollment records
// @Tags Registrations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *RegistrationHandler) StudentEnrollments(c *gin.Context) {
	enrollments, err := h.registrar.StudentEnrollments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// CourseEnrollments godoc
// @Summary List a course's enrollment records
// @Tags Registrations
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *RegistrationHandler) CourseEnrollments(c *gin.Context) {
	enrollments, err := h.registrar.CourseEnrollments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}
