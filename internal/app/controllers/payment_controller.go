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

// PaymentController handles commission payments derived from applications
type PaymentController struct {
	paymentService services.PaymentService
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService services.PaymentService, logger zerolog.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         logger,
	}
}

// SyncPayments creates the missing payment for every application
// @Summary Reconcile payments
// @Description Idempotent; safe to run while the background sync is active
// @Tags payments
// @Produce json
// @Security SessionCookie
// @Success 200 {object} dto.APIResponse{data=services.SyncResult} "Sync result"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/payments/sync [post]
func (c *PaymentController) SyncPayments(ctx *gin.Context) {
	result, err := c.paymentService.SyncPayments(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().
		Int("scanned", result.Scanned).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("Manual payment sync finished")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Payments synchronised"))
}

// ListPayments lists payments. Agencies only see their own.
// @Summary List payments
// @Tags payments
// @Produce json
// @Security SessionCookie
// @Param paymentStatus query string false "pending, partial, paid or cancelled"
// @Param leadStatus query string false "Lead status"
// @Param agencyId query string false "Agency ID (admin only)"
// @Param search query string false "Student name contains"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Payment} "Payments"
// @Router /admin/payments [get]
// @Router /agency/payments [get]
func (c *PaymentController) ListPayments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	agencyID, ok := middleware.OptionalUUIDQuery(ctx, "agencyId")
	if !ok {
		return
	}
	opts, page, size := listOptions(ctx)
	payments, total, err := c.paymentService.ListPayments(ctx.Request.Context(), actor, repositories.PaymentFilter{
		ListOptions:   opts,
		AgencyID:      agencyID,
		PaymentStatus: models.PaymentStatus(ctx.Query("paymentStatus")),
		LeadStatus:    models.LeadStatus(ctx.Query("leadStatus")),
		Search:        ctx.Query("search"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, payments, total, page, size)
}

// Summary returns dashboard totals
// @Summary Payment summary
// @Tags payments
// @Produce json
// @Security SessionCookie
// @Success 200 {object} dto.APIResponse{data=services.PaymentSummary} "Summary"
// @Router /admin/payments/summary [get]
// @Router /agency/payments/summary [get]
func (c *PaymentController) Summary(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	summary, err := c.paymentService.Summary(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary, ""))
}

// GetPayment retrieves a payment
// @Summary Get payment
// @Tags payments
// @Produce json
// @Security SessionCookie
// @Param id path string true "Payment ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Payment} "Payment"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /admin/payments/{id} [get]
// @Router /agency/payments/{id} [get]
func (c *PaymentController) GetPayment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	payment, err := c.paymentService.GetPayment(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(payment, ""))
}

// UpdatePayment records an amount, notes or status
// @Summary Update payment
// @Description An amount at or above the fee settles the payment
// @Tags payments
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Payment ID" Format(uuid)
// @Param request body dto.UpdatePaymentRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=models.Payment} "Payment updated"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /admin/payments/{id} [put]
func (c *PaymentController) UpdatePayment(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdatePaymentRequest](ctx)
	if !ok {
		return
	}
	payment, err := c.paymentService.UpdatePayment(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(payment, "Payment updated successfully"))
}

// UpdatePaymentStatus sets the payment status
// @Summary Update payment status
// @Tags payments
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Payment ID" Format(uuid)
// @Param request body dto.UpdatePaymentStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Payment} "Status updated"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /admin/payments/{id}/status [patch]
func (c *PaymentController) UpdatePaymentStatus(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdatePaymentStatusRequest](ctx)
	if !ok {
		return
	}
	payment, err := c.paymentService.UpdatePaymentStatus(ctx.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(payment, "Payment status updated"))
}

// UpdateLeadStatus moves the lead through the agency pipeline
// @Summary Update lead status
// @Tags payments
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Payment ID" Format(uuid)
// @Param request body dto.UpdateLeadStatusRequest true "Lead status"
// @Success 200 {object} dto.APIResponse{data=models.Payment} "Lead status updated"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /admin/payments/{id}/lead-status [patch]
// @Router /agency/payments/{id}/lead-status [patch]
func (c *PaymentController) UpdateLeadStatus(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateLeadStatusRequest](ctx)
	if !ok {
		return
	}
	payment, err := c.paymentService.UpdateLeadStatus(ctx.Request.Context(), actor, id, req.LeadStatus)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(payment, "Lead status updated"))
}

// RequestDocument asks the agency for a document type
// @Summary Request document
// @Tags payments
// @Produce json
// @Security SessionCookie
// @Param id path string true "Payment ID" Format(uuid)
// @Param type path string true "Document type, e.g. passport"
// @Success 200 {object} dto.APIResponse{data=models.Payment} "Document requested"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /admin/payments/{id}/documents/{type}/request [post]
func (c *PaymentController) RequestDocument(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	payment, err := c.paymentService.RequestDocument(ctx.Request.Context(), id, ctx.Param("type"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(payment, "Document requested"))
}

// Receipt downloads the commission receipt
// @Summary Payment receipt PDF
// @Tags payments
// @Produce application/pdf
// @Security SessionCookie
// @Param id path string true "Payment ID" Format(uuid)
// @Success 200 {file} file "PDF"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Router /admin/payments/{id}/receipt [get]
// @Router /agency/payments/{id}/receipt [get]
func (c *PaymentController) Receipt(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	body, name, err := c.paymentService.Receipt(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendAttachment(ctx, name, "application/pdf", body)
}
