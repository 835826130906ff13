// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

// Controllers groups every HTTP controller
type Controllers struct {
	Auth            *AuthController
	Users           *UserController
	Agencies        *AgencyController
	Catalog         *CatalogController
	Applications    *ApplicationController
	Documents       *DocumentController
	Payments        *PaymentController
	OfflinePayments *OfflinePaymentController
	Settings        *SettingsController
	Reports         *ReportController
	Events          *EventController
	Health          *HealthController

	// UploadLimit caps request bodies on the upload routes
	UploadLimit int64
}

// Options carries the transport settings the controllers need besides services
type Options struct {
	Cookie       CookieConfig
	Hub          *realtime.Hub
	Upgrader     *websocket.Upgrader
	Heartbeat    time.Duration
	HealthChecks map[string]HealthCheck

	// MaxUploadBytes is the largest accepted file; 0 leaves bodies uncapped
	MaxUploadBytes int64
}

// NewControllers builds every controller over one service container
func NewControllers(svc *services.Services, opts Options, logger zerolog.Logger) *Controllers {
	return &Controllers{
		Auth:            NewAuthController(svc.Auth, opts.Cookie, logger),
		Users:           NewUserController(svc.Users),
		Agencies:        NewAgencyController(svc.Agencies),
		Catalog:         NewCatalogController(svc.Colleges, svc.Courses),
		Applications:    NewApplicationController(svc.Applications, logger),
		Documents:       NewDocumentController(svc.Documents),
		Payments:        NewPaymentController(svc.Payments, logger),
		OfflinePayments: NewOfflinePaymentController(svc.OfflinePayments),
		Settings:        NewSettingsController(svc.Settings),
		Reports:         NewReportController(svc.Reports),
		Events:          NewEventController(opts.Hub, opts.Upgrader, opts.Heartbeat, logger),
		Health:          NewHealthController(opts.HealthChecks),
		UploadLimit:     middleware.UploadBodyLimit(opts.MaxUploadBytes),
	}
}

// requireActor returns the session actor or answers 401
func requireActor(ctx *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return services.Actor{}, false
	}
	return actor, true
}

// listOptions reads page and size. Without a page parameter every row is returned.
func listOptions(ctx *gin.Context) (repositories.ListOptions, int, int) {
	if ctx.Query("page") == "" && ctx.Query("size") == "" {
		return repositories.ListOptions{}, 0, 0
	}
	page, size := helpers.ParsePaginationParams(ctx)
	return repositories.ListOptions{Page: page, Size: size}, page, size
}

// respondList writes a plain list, or a page with pagination info when paging was requested
func respondList(ctx *gin.Context, items interface{}, total int64, page, size int) {
	if size == 0 {
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(items, ""))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(helpers.NewPaginatedResponse(items, total, page, size), ""))
}

// sendAttachment writes a downloadable file
func sendAttachment(ctx *gin.Context, name, contentType string, body []byte) {
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Header("Content-Length", strconv.Itoa(len(body)))
	ctx.Data(http.StatusOK, contentType, body)
}

// dateRange parses the optional from/to query parameters as inclusive day bounds
func dateRange(ctx *gin.Context) (from, to *time.Time, ok bool) {
	from, err := helpers.ParseDateParam(ctx.Query("from"), false)
	if err != nil {
		badQuery(ctx, "from", err)
		return nil, nil, false
	}
	to, err = helpers.ParseDateParam(ctx.Query("to"), true)
	if err != nil {
		badQuery(ctx, "to", err)
		return nil, nil, false
	}
	return from, to, true
}

func badQuery(ctx *gin.Context, field string, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter")
	errorDetail = errorDetail.WithField(field).WithDetails(err.Error())
	ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
