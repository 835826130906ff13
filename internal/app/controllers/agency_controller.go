package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
)

// AgencyController handles agency administration and the agency's own profile
type AgencyController struct {
	agencyService services.AgencyService
}

// NewAgencyController creates a new AgencyController
func NewAgencyController(agencyService services.AgencyService) *AgencyController {
	return &AgencyController{agencyService: agencyService}
}

// ListAgencies lists agencies
// @Summary List agencies
// @Tags agencies
// @Produce json
// @Security SessionCookie
// @Param status query string false "active, inactive or pending"
// @Param search query string false "Name or email contains"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Agency} "Agencies"
// @Router /admin/agencies [get]
func (c *AgencyController) ListAgencies(ctx *gin.Context) {
	opts, page, size := listOptions(ctx)
	agencies, total, err := c.agencyService.ListAgencies(ctx.Request.Context(), repositories.AgencyFilter{
		ListOptions: opts,
		Status:      models.AccountStatus(ctx.Query("status")),
		Search:      ctx.Query("search"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, agencies, total, page, size)
}

// GetAgency retrieves an agency
// @Summary Get agency
// @Tags agencies
// @Produce json
// @Security SessionCookie
// @Param id path string true "Agency ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Agency} "Agency"
// @Failure 404 {object} dto.ErrorResponse "Agency not found"
// @Router /admin/agencies/{id} [get]
func (c *AgencyController) GetAgency(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	agency, err := c.agencyService.GetAgency(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(agency, ""))
}

// CreateAgency creates an agency
// @Summary Create agency
// @Tags agencies
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.CreateAgencyRequest true "Agency"
// @Success 201 {object} dto.APIResponse{data=models.Agency} "Agency created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /admin/agencies [post]
func (c *AgencyController) CreateAgency(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.CreateAgencyRequest](ctx)
	if !ok {
		return
	}
	agency, err := c.agencyService.CreateAgency(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(agency, "Agency created successfully"))
}

// UpdateAgency updates an agency
// @Summary Update agency
// @Description A new commission rate is applied to the agency's unpaid payments
// @Tags agencies
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Agency ID" Format(uuid)
// @Param request body dto.UpdateAgencyRequest true "Agency"
// @Success 200 {object} dto.APIResponse{data=models.Agency} "Agency updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Agency not found"
// @Router /admin/agencies/{id} [put]
func (c *AgencyController) UpdateAgency(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateAgencyRequest](ctx)
	if !ok {
		return
	}
	agency, err := c.agencyService.UpdateAgency(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(agency, "Agency updated successfully"))
}

// UpdateAgencyStatus changes an agency's status
// @Summary Update agency status
// @Tags agencies
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Agency ID" Format(uuid)
// @Param request body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Agency} "Status updated"
// @Failure 404 {object} dto.ErrorResponse "Agency not found"
// @Router /admin/agencies/{id}/status [patch]
func (c *AgencyController) UpdateAgencyStatus(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateStatusRequest](ctx)
	if !ok {
		return
	}
	agency, err := c.agencyService.UpdateAgencyStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(agency, "Agency status updated"))
}

// DeleteAgency deletes an agency and unlinks its users
// @Summary Delete agency
// @Tags agencies
// @Produce json
// @Security SessionCookie
// @Param id path string true "Agency ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Agency deleted"
// @Failure 404 {object} dto.ErrorResponse "Agency not found"
// @Router /admin/agencies/{id} [delete]
func (c *AgencyController) DeleteAgency(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.agencyService.DeleteAgency(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Agency deleted successfully"))
}

// GetProfile returns the caller's agency
// @Summary Agency profile
// @Tags agency
// @Produce json
// @Security SessionCookie
// @Success 200 {object} dto.APIResponse{data=models.Agency} "Profile"
// @Failure 403 {object} dto.ErrorResponse "User is not linked to an agency"
// @Router /agency/profile [get]
func (c *AgencyController) GetProfile(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	agency, err := c.agencyService.GetProfile(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(agency, ""))
}

// UpdateProfile updates the caller's agency contact details
// @Summary Update agency profile
// @Description Commission rate and status can only be changed by an administrator
// @Tags agency
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.UpdateAgencyProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=models.Agency} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /agency/profile [put]
func (c *AgencyController) UpdateProfile(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateAgencyProfileRequest](ctx)
	if !ok {
		return
	}
	agency, err := c.agencyService.UpdateProfile(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(agency, "Profile updated successfully"))
}
