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

// DocumentController handles application documents
type DocumentController struct {
	documentService services.DocumentService
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService services.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

// UploadDocument attaches a base64 encoded file to an application
// @Summary Upload document
// @Description data is base64, optionally as a data: URL. Marks the document type as uploaded on the payment.
// @Tags documents
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Param request body dto.UploadDocumentRequest true "Document"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Document uploaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid base64 data"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Router /agency/applications/{id}/documents [post]
func (c *DocumentController) UploadDocument(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	appID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UploadDocumentRequest](ctx)
	if !ok {
		return
	}

	doc, err := c.documentService.UploadDocument(ctx.Request.Context(), actor, appID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(doc, "Document uploaded successfully"))
}

// ListApplicationDocuments lists the documents of one application
// @Summary List application documents
// @Tags documents
// @Produce json
// @Security SessionCookie
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id}/documents [get]
// @Router /agency/applications/{id}/documents [get]
func (c *DocumentController) ListApplicationDocuments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	appID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	docs, err := c.documentService.ListDocuments(ctx.Request.Context(), actor, repositories.DocumentFilter{ApplicationID: appID})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(docs, ""))
}

// ListDocuments lists documents across applications
// @Summary List documents
// @Tags documents
// @Produce json
// @Security SessionCookie
// @Param applicationId query string false "Application ID"
// @Param agencyId query string false "Agency ID (admin only)"
// @Param status query string false "pending, approved or rejected"
// @Param type query string false "Document type"
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Router /admin/documents [get]
// @Router /agency/documents [get]
func (c *DocumentController) ListDocuments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	appID, ok := middleware.OptionalUUIDQuery(ctx, "applicationId")
	if !ok {
		return
	}
	agencyID, ok := middleware.OptionalUUIDQuery(ctx, "agencyId")
	if !ok {
		return
	}
	docs, err := c.documentService.ListDocuments(ctx.Request.Context(), actor, repositories.DocumentFilter{
		ApplicationID: appID,
		AgencyID:      agencyID,
		Status:        models.DocumentStatus(ctx.Query("status")),
		Type:          ctx.Query("type"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(docs, ""))
}

// GetDocument returns document metadata
// @Summary Get document
// @Tags documents
// @Produce json
// @Security SessionCookie
// @Param id path string true "Document ID"
// @Success 200 {object} dto.APIResponse{data=models.Document} "Document"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /admin/documents/{id} [get]
// @Router /agency/documents/{id} [get]
func (c *DocumentController) GetDocument(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ObjectIDParam(ctx, "id")
	if !ok {
		return
	}
	doc, err := c.documentService.GetDocument(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(doc, ""))
}

// DownloadDocument streams the decoded file
// @Summary Download document
// @Tags documents
// @Produce octet-stream
// @Security SessionCookie
// @Param id path string true "Document ID"
// @Success 200 {file} file "Document content"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /admin/documents/{id}/download [get]
// @Router /agency/documents/{id}/download [get]
func (c *DocumentController) DownloadDocument(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ObjectIDParam(ctx, "id")
	if !ok {
		return
	}
	doc, content, err := c.documentService.GetDocumentFile(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sendAttachment(ctx, doc.FileName, contentType, content)
}

// UpdateDocumentStatus reviews a document
// @Summary Review document
// @Tags documents
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Document ID"
// @Param request body dto.UpdateDocumentStatusRequest true "Review"
// @Success 200 {object} dto.APIResponse{data=models.Document} "Document reviewed"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /admin/documents/{id}/status [patch]
func (c *DocumentController) UpdateDocumentStatus(ctx *gin.Context) {
	id, ok := middleware.ObjectIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.UpdateDocumentStatusRequest](ctx)
	if !ok {
		return
	}
	doc, err := c.documentService.UpdateDocumentStatus(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(doc, "Document status updated"))
}

// DeleteDocument removes a document
// @Summary Delete document
// @Description Agencies cannot delete approved documents
// @Tags documents
// @Produce json
// @Security SessionCookie
// @Param id path string true "Document ID"
// @Success 200 {object} dto.APIResponse "Document deleted"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Failure 409 {object} dto.ErrorResponse "Document already approved"
// @Router /admin/documents/{id} [delete]
// @Router /agency/documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ObjectIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.documentService.DeleteDocument(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Document deleted successfully"))
}
