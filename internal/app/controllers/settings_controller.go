package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
)

// SettingsController handles the portal-wide settings
type SettingsController struct {
	settingsService services.SettingsService
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService services.SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

// GetSettings returns the full settings including gateway credentials
// @Summary Get settings
// @Tags settings
// @Produce json
// @Security SessionCookie
// @Success 200 {object} dto.APIResponse{data=models.Settings} "Settings"
// @Router /admin/settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	settings, err := c.settingsService.GetSettings(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(settings, ""))
}

// UpdateSettings replaces the settings
// @Summary Update settings
// @Tags settings
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.UpdateSettingsRequest true "Settings"
// @Success 200 {object} dto.APIResponse{data=models.Settings} "Settings saved"
// @Failure 400 {object} dto.ErrorResponse "Incomplete gateway or escalation entry"
// @Router /admin/settings [put]
func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.UpdateSettingsRequest](ctx)
	if !ok {
		return
	}
	settings, err := c.settingsService.UpdateSettings(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(settings, "Settings saved"))
}

// GetAgencySettings returns bank details and the escalation matrix
// @Summary Agency settings view
// @Tags settings
// @Produce json
// @Security SessionCookie
// @Success 200 {object} dto.APIResponse{data=dto.AgencySettingsResponse} "Settings"
// @Router /agency/settings [get]
func (c *SettingsController) GetAgencySettings(ctx *gin.Context) {
	settings, err := c.settingsService.GetAgencySettings(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(settings, ""))
}
