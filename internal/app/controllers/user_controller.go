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

// UserController handles user-related operations
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers lists portal users
// @Summary List users
// @Tags users
// @Produce json
// @Security SessionCookie
// @Param role query string false "admin or agency"
// @Param status query string false "active, inactive or pending"
// @Param agencyId query string false "Agency ID"
// @Param search query string false "Name or email contains"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.User} "Users"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	agencyID, ok := middleware.OptionalUUIDQuery(ctx, "agencyId")
	if !ok {
		return
	}
	opts, page, size := listOptions(ctx)
	filter := repositories.UserFilter{
		ListOptions: opts,
		Role:        models.Role(ctx.Query("role")),
		Status:      models.AccountStatus(ctx.Query("status")),
		AgencyID:    agencyID,
		Search:      ctx.Query("search"),
	}

	users, total, err := c.userService.ListUsers(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, users, total, page, size)
}

// GetUser retrieves a user by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.User} "User"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user, ""))
}

// CreateUser creates a user, optionally with a new agency
// @Summary Create user
// @Description For role agency without agencyId, an inline agency is created alongside the user
// @Tags users
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.APIResponse{data=models.User} "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /admin/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.CreateUserRequest](ctx)
	if !ok {
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(user, "User created successfully"))
}

// UpdateUser updates a user
// @Summary Update user
// @Description An empty password keeps the current one
// @Tags users
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID" Format(uuid)
// @Param request body dto.UpdateUserRequest true "User"
// @Success 200 {object} dto.APIResponse{data=models.User} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateUserRequest](ctx)
	if !ok {
		return
	}

	user, err := c.userService.UpdateUser(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user, "User updated successfully"))
}

// UpdateUserStatus activates, deactivates or suspends a user
// @Summary Update user status
// @Tags users
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID" Format(uuid)
// @Param request body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.User} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/status [patch]
func (c *UserController) UpdateUserStatus(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateStatusRequest](ctx)
	if !ok {
		return
	}

	user, err := c.userService.UpdateUserStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user, "User status updated"))
}

// DeleteUser deletes a user and their agency
// @Summary Delete user
// @Tags users
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "User deleted"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "User deleted successfully"))
}
