package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registration-api/internal/service"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/response"
)

// AnalyticsHandler exposes enrollment analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview godoc
// @Summary System-wide enrollment overview
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// FillRate godoc
// @Summary Seat fill rate for a course
// @Tags Analytics
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/courses/{courseId}/fill-rate [get]
func (h *AnalyticsHandler) FillRate(c *gin.Context) {
	courseID := c.Param("courseId")
	rate, err := h.analytics.FillRate(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rate < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "course not found"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"course_id": courseID, "fill_rate": rate}, nil)
}

// PopularCourses godoc
// @Summary Most popular courses by enrollment
// @Tags Analytics
// @Produce json
// @Param top query int false "Number of courses"
// @Success 200 {object} response.Envelope
// @Router /analytics/popular-courses [get]
func (h *AnalyticsHandler) PopularCourses(c *gin.Context) {
	top := 5
	if v, err := strconv.Atoi(c.DefaultQuery("top", "5")); err == nil && v > 0 {
		top = v
	}
	courses, err := h.analytics.MostPopularCourses(c.Request.Context(), top)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// CoursesAboveThreshold godoc
// @Summary Courses with fill rate at or above a threshold
// @Tags Analytics
// @Produce json
// @Param threshold query number true "Fill rate threshold between 0 and 1"
// @Success 200 {object} response.Envelope
// @Router /analytics/courses-above-threshold [get]
func (h *AnalyticsHandler) CoursesAboveThreshold(c *gin.Context) {
	threshold, err := strconv.ParseFloat(c.Query("threshold"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "threshold must be a number"))
		return
	}
	courses, err := h.analytics.CoursesAboveThreshold(c.Request.Context(), threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// AverageClassSize godoc
// @Summary Average enrollment across courses
// @Tags Analytics
// @Produce json
// @Param minEnrollment query int false "Only courses with at least this many enrolled"
// @Success 200 {object} response.Envelope
// @Router /analytics/average-class-size [get]
func (h *AnalyticsHandler) AverageClassSize(c *gin.Context) {
	minEnrollment := 0
	if v, err := strconv.Atoi(c.DefaultQuery("minEnrollment", "0")); err == nil && v >= 0 {
		minEnrollment = v
	}
	average, err := h.analytics.AverageClassSize(c.Request.Context(), minEnrollment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"average_class_size": average}, nil)
}
