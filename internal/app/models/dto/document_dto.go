package dto

import "github.com/yigit/agencyportal/internal/app/models"

// UploadDocumentRequest carries a file as base64, optionally as a data: URL
type UploadDocumentRequest struct {
	Name     string `json:"name" binding:"required,max=200" example:"10th Marksheet"`
	Type     string `json:"type" binding:"omitempty,max=100" example:"10th marksheet"`
	FileName string `json:"fileName" binding:"required,max=255" example:"marksheet.pdf"`
	MimeType string `json:"mimeType" binding:"omitempty,max=100" example:"application/pdf"`
	Data     string `json:"data" binding:"required"`
}

// UpdateDocumentStatusRequest is an admin review of a document
type UpdateDocumentStatusRequest struct {
	Status  models.DocumentStatus `json:"status" binding:"required,docstatus" example:"approved"`
	Remarks string                `json:"remarks" binding:"omitempty,max=2000"`
}
