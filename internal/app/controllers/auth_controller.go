package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
)

// CookieConfig controls how the session cookie is written
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	cookie      CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, cookie CookieConfig, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (c *AuthController) setCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, value, maxAge, "/", "", c.cookie.Secure, true)
}

// Login handles user login
// @Summary User login
// @Description Verifies credentials and sets the HttpOnly session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account not active"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.LoginRequest](ctx)
	if !ok {
		return
	}

	token, session, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.setCookie(ctx, token, maxAge)

	c.logger.Info().Str("email", req.Email).Str("role", string(session.User.Role)).Msg("User logged in successfully")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(session, "Login successful"))
}

// Logout clears the session cookie
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	c.setCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Logged out"))
}

// Session returns the identity behind the current cookie
// @Summary Current session
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Current session"
// @Failure 401 {object} dto.ErrorResponse "No valid session"
// @Router /auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	claims, ok := middleware.GetClaims(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(c.authService.Session(claims), ""))
}

// Register handles agency self-signup
// @Summary Register an agency
// @Description Creates a pending agency and its user. An administrator activates the account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterAgencyRequest true "Agency registration"
// @Success 201 {object} dto.APIResponse{data=models.User} "Registration received"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.RegisterAgencyRequest](ctx)
	if !ok {
		return
	}

	user, err := c.authService.RegisterAgency(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Agency registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("email", user.Email).Str("agencyId", user.AgencyIDValue()).Msg("Agency registered, awaiting activation")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(user, "Registration received. An administrator will activate your account."))
}
