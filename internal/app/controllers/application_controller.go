package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
)

// ApplicationController handles student applications for both portals
type ApplicationController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// ListApplications lists applications. Agencies only see their own.
// @Summary List applications
// @Tags applications
// @Produce json
// @Security SessionCookie
// @Param status query string false "pending, processing, approved or rejected"
// @Param agencyId query string false "Agency ID (admin only)"
// @Param collegeId query string false "College ID"
// @Param courseId query string false "Course ID"
// @Param search query string false "Student name, email or phone contains"
// @Param from query string false "Created on or after (YYYY-MM-DD)"
// @Param to query string false "Created on or before (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Router /admin/applications [get]
// @Router /agency/applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	from, to, ok := dateRange(ctx)
	if !ok {
		return
	}
	agencyID, ok := middleware.OptionalUUIDQuery(ctx, "agencyId")
	if !ok {
		return
	}
	collegeID, ok := middleware.OptionalUUIDQuery(ctx, "collegeId")
	if !ok {
		return
	}
	courseID, ok := middleware.OptionalUUIDQuery(ctx, "courseId")
	if !ok {
		return
	}
	opts, page, size := listOptions(ctx)

	apps, total, err := c.applicationService.ListApplications(ctx.Request.Context(), actor, repositories.ApplicationFilter{
		ListOptions: opts,
		AgencyID:    agencyID,
		CollegeID:   collegeID,
		CourseID:    courseID,
		Status:      models.ApplicationStatus(ctx.Query("status")),
		Search:      ctx.Query("search"),
		From:        from,
		To:          to,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, apps, total, page, size)
}

// GetApplication retrieves an application
// @Summary Get application
// @Tags applications
// @Produce json
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id} [get]
// @Router /agency/applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	app, err := c.applicationService.GetApplication(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app, ""))
}

// CreateApplication files a new application for the caller's agency
// @Summary Create application
// @Description The fee is taken from the course and a payment record is created with the agency's commission
// @Tags applications
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.ApplicationRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.Application} "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid data or course not offered by the college"
// @Failure 403 {object} dto.ErrorResponse "User is not linked to an agency"
// @Router /agency/applications [post]
func (c *ApplicationController) CreateApplication(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.ApplicationRequest](ctx)
	if !ok {
		return
	}

	app, err := c.applicationService.CreateApplication(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("applicationId", app.ID).Str("agencyId", app.AgencyID).Msg("Application created")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(app, "Application submitted successfully"))
}

// UpdateApplication edits an application
// @Summary Update application
// @Description Agencies may only edit applications that are still pending
// @Tags applications
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Param request body dto.ApplicationRequest true "Application"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application updated"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application is no longer pending"
// @Router /admin/applications/{id} [put]
// @Router /agency/applications/{id} [put]
func (c *ApplicationController) UpdateApplication(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.ApplicationRequest](ctx)
	if !ok {
		return
	}

	app, err := c.applicationService.UpdateApplication(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app, "Application updated successfully"))
}

// DeleteApplication deletes an application with its payment and documents
// @Summary Delete application
// @Tags applications
// @Produce json
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Application deleted"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application is no longer pending"
// @Router /admin/applications/{id} [delete]
// @Router /agency/applications/{id} [delete]
func (c *ApplicationController) DeleteApplication(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.applicationService.DeleteApplication(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Application deleted successfully"))
}

// UpdateApplicationStatus records an admin decision
// @Summary Update application status
// @Description Approving or rejecting also approves or rejects every document of the application
// @Tags applications
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Param request body dto.UpdateApplicationStatusRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id}/status [patch]
func (c *ApplicationController) UpdateApplicationStatus(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateApplicationStatusRequest](ctx)
	if !ok {
		return
	}

	app, err := c.applicationService.UpdateApplicationStatus(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("applicationId", id).Str("status", string(app.Status)).Msg("Application status changed")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app, "Application status updated"))
}

// SummaryPDF downloads the application summary
// @Summary Application summary PDF
// @Tags applications
// @Produce application/pdf
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {file} file "PDF"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id}/pdf [get]
// @Router /agency/applications/{id}/pdf [get]
func (c *ApplicationController) SummaryPDF(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	body, name, err := c.applicationService.SummaryPDF(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendAttachment(ctx, name, "application/pdf", body)
}
