package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registration-api/internal/service"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/response"
)

// ExportHandler serves downloadable course rosters.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CourseRoster godoc
// @Summary Download a course roster
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Router /courses/{id}/roster [get]
func (h *ExportHandler) CourseRoster(c *gin.Context) {
	format := service.RosterFormat(c.DefaultQuery("format", "csv"))
	if format != service.RosterFormatCSV && format != service.RosterFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	roster, err := h.exports.CourseRoster(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+roster.Filename)
	c.Data(http.StatusOK, roster.ContentType, roster.Data)
}
