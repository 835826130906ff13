package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
	"github.com/yigit/agencyportal/internal/pkg/report"
)

// ReportController serves CSV, JSON and HTML exports
type ReportController struct {
	reportService services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// Export downloads a report
// @Summary Export report
// @Description Entities: applications, payments, offline-payments; agencies and colleges for admins only
// @Tags reports
// @Produce text/csv
// @Produce json
// @Produce text/html
// @Security SessionCookie
// @Param entity path string true "Entity"
// @Param format query string false "csv (default), json or html"
// @Param status query string false "Exact status, case-insensitive"
// @Param date query string false "Created date contains, e.g. 2025-06"
// @Param from query string false "Created on or after (YYYY-MM-DD)"
// @Param to query string false "Created on or before (YYYY-MM-DD)"
// @Success 200 {file} file "Report"
// @Failure 400 {object} dto.ErrorResponse "Unsupported format"
// @Failure 403 {object} dto.ErrorResponse "Entity restricted to admins"
// @Failure 404 {object} dto.ErrorResponse "Unknown entity"
// @Router /admin/reports/{entity} [get]
// @Router /agency/reports/{entity} [get]
func (c *ReportController) Export(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	format, err := report.ParseFormat(ctx.Query("format"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Unsupported report format")
		errorDetail = errorDetail.WithField("format").WithDetails("format must be one of csv, json, html")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	from, to, ok := dateRange(ctx)
	if !ok {
		return
	}

	file, err := c.reportService.Export(ctx.Request.Context(), actor, services.ReportQuery{
		Entity: ctx.Param("entity"),
		Format: format,
		Status: ctx.Query("status"),
		Date:   ctx.Query("date"),
		From:   from,
		To:     to,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendAttachment(ctx, file.Name, file.ContentType, file.Body)
}
