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

// ProofFormField is the multipart field carrying the transfer proof
const ProofFormField = "proof"

// OfflinePaymentController handles bank transfer submissions
type OfflinePaymentController struct {
	offlinePaymentService services.OfflinePaymentService
}

// NewOfflinePaymentController creates a new OfflinePaymentController
func NewOfflinePaymentController(offlinePaymentService services.OfflinePaymentService) *OfflinePaymentController {
	return &OfflinePaymentController{offlinePaymentService: offlinePaymentService}
}

// SubmitOfflinePayment records a bank transfer with its proof
// @Summary Submit offline payment
// @Tags offline-payments
// @Accept multipart/form-data
// @Produce json
// @Security SessionCookie
// @Param amount formData number true "Amount"
// @Param currency formData string false "ISO currency, defaults to the portal currency"
// @Param reference formData string true "Transfer reference / UTR"
// @Param bankName formData string false "Bank"
// @Param paymentDate formData string true "Transfer date (YYYY-MM-DD)"
// @Param remarks formData string false "Remarks"
// @Param proof formData file true "Transfer proof"
// @Success 201 {object} dto.APIResponse{data=models.OfflinePayment} "Submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or missing proof"
// @Failure 413 {object} dto.ErrorResponse "Proof too large"
// @Router /agency/offline-payments [post]
func (c *OfflinePaymentController) SubmitOfflinePayment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	form, ok := middleware.BindForm[dto.CreateOfflinePaymentForm](ctx)
	if !ok {
		return
	}
	// a missing file is reported by the service
	proof, _ := ctx.FormFile(ProofFormField)

	op, err := c.offlinePaymentService.SubmitOfflinePayment(ctx.Request.Context(), actor, form, proof)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(op, "Offline payment submitted"))
}

// ListOfflinePayments lists submissions. Agencies only see their own.
// @Summary List offline payments
// @Tags offline-payments
// @Produce json
// @Security SessionCookie
// @Param status query string false "pending, verified or rejected"
// @Param agencyId query string false "Agency ID (admin only)"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.OfflinePayment} "Offline payments"
// @Router /admin/offline-payments [get]
// @Router /agency/offline-payments [get]
func (c *OfflinePaymentController) ListOfflinePayments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	agencyID, ok := middleware.OptionalUUIDQuery(ctx, "agencyId")
	if !ok {
		return
	}
	opts, page, size := listOptions(ctx)
	items, total, err := c.offlinePaymentService.ListOfflinePayments(ctx.Request.Context(), actor, repositories.OfflinePaymentFilter{
		ListOptions: opts,
		AgencyID:    agencyID,
		Status:      models.OfflinePaymentStatus(ctx.Query("status")),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, items, total, page, size)
}

// GetOfflinePayment retrieves a submission
// @Summary Get offline payment
// @Tags offline-payments
// @Produce json
// @Security SessionCookie
// @Param id path string true "Offline payment ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.OfflinePayment} "Offline payment"
// @Failure 404 {object} dto.ErrorResponse "Offline payment not found"
// @Router /admin/offline-payments/{id} [get]
// @Router /agency/offline-payments/{id} [get]
func (c *OfflinePaymentController) GetOfflinePayment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	op, err := c.offlinePaymentService.GetOfflinePayment(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(op, ""))
}

// ReviewOfflinePayment verifies or rejects a submission
// @Summary Review offline payment
// @Tags offline-payments
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Offline payment ID" Format(uuid)
// @Param request body dto.ReviewOfflinePaymentRequest true "Review"
// @Success 200 {object} dto.APIResponse{data=models.OfflinePayment} "Reviewed"
// @Failure 404 {object} dto.ErrorResponse "Offline payment not found"
// @Failure 409 {object} dto.ErrorResponse "Already reviewed"
// @Router /admin/offline-payments/{id}/status [patch]
func (c *OfflinePaymentController) ReviewOfflinePayment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.ReviewOfflinePaymentRequest](ctx)
	if !ok {
		return
	}
	op, err := c.offlinePaymentService.ReviewOfflinePayment(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(op, "Offline payment reviewed"))
}

// DownloadProof serves the uploaded transfer proof
// @Summary Download proof
// @Tags offline-payments
// @Produce octet-stream
// @Security SessionCookie
// @Param id path string true "Offline payment ID" Format(uuid)
// @Success 200 {file} file "Proof"
// @Failure 404 {object} dto.ErrorResponse "Offline payment not found"
// @Router /admin/offline-payments/{id}/proof [get]
// @Router /agency/offline-payments/{id}/proof [get]
func (c *OfflinePaymentController) DownloadProof(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	path, name, err := c.offlinePaymentService.ProofFile(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.FileAttachment(path, name)
}

// Receipt downloads the acknowledgement PDF
// @Summary Offline payment receipt PDF
// @Tags offline-payments
// @Produce application/pdf
// @Security SessionCookie
// @Param id path string true "Offline payment ID" Format(uuid)
// @Success 200 {file} file "PDF"
// @Failure 404 {object} dto.ErrorResponse "Offline payment not found"
// @Router /admin/offline-payments/{id}/receipt [get]
// @Router /agency/offline-payments/{id}/receipt [get]
func (c *OfflinePaymentController) Receipt(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	body, name, err := c.offlinePaymentService.Receipt(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendAttachment(ctx, name, "application/pdf", body)
}
