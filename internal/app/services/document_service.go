package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

// DocumentService handles document uploads and review
type DocumentService interface {
	// UploadDocument stores the decoded file and flags the type as uploaded
	// on the application's payment
	UploadDocument(ctx context.Context, actor Actor, applicationID string, req *dto.UploadDocumentRequest) (*models.Document, error)
	ListDocuments(ctx context.Context, actor Actor, filter repositories.DocumentFilter) ([]*models.Document, error)
	GetDocument(ctx context.Context, actor Actor, id string) (*models.Document, error)
	// GetDocumentFile returns the document with its decoded content
	GetDocumentFile(ctx context.Context, actor Actor, id string) (*models.Document, []byte, error)
	UpdateDocumentStatus(ctx context.Context, id string, req *dto.UpdateDocumentStatusRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, actor Actor, id string) error
}

type documentServiceImpl struct {
	documentRepo    repositories.IDocumentRepository
	applicationRepo repositories.IApplicationRepository
	paymentRepo     repositories.IPaymentRepository
	events          realtime.Publisher
	maxBytes        int64
	logger          zerolog.Logger
}

// NewDocumentService creates a new document service instance
func NewDocumentService(repos *repositories.Repositories, events realtime.Publisher, options Options, logger zerolog.Logger) DocumentService {
	return &documentServiceImpl{
		documentRepo:    repos.Documents,
		applicationRepo: repos.Applications,
		paymentRepo:     repos.Payments,
		events:          events,
		maxBytes:        options.MaxUploadBytes,
		logger:          logger,
	}
}

// DecodeBase64Payload accepts plain base64 or a data: URL and returns the
// bytes plus the MIME type the URL declared, if any
func DecodeBase64Payload(data string) ([]byte, string, error) {
	data = strings.TrimSpace(data)
	var mimeType string

	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("%w: malformed data URL", apperrors.ErrValidationFailed)
		}
		header := data[len("data:"):comma]
		if !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("%w: data URL must be base64 encoded", apperrors.ErrValidationFailed)
		}
		// data:application/pdf;name=a.pdf;base64 keeps only the media type
		mimeType, _, _ = strings.Cut(header, ";")
		data = data[comma+1:]
	}
	if data == "" {
		return nil, "", fmt.Errorf("%w: file data is empty", apperrors.ErrValidationFailed)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "=")); err != nil {
			return nil, "", fmt.Errorf("%w: file data is not valid base64", apperrors.ErrValidationFailed)
		}
	}
	return raw, mimeType, nil
}

func (s *documentServiceImpl) UploadDocument(ctx context.Context, actor Actor, applicationID string, req *dto.UploadDocumentRequest) (*models.Document, error) {
	app, err := loadApplication(ctx, s.applicationRepo, actor, applicationID)
	if err != nil {
		return nil, err
	}

	raw, urlMime, err := DecodeBase64Payload(req.Data)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, apperrors.NewCustomError(apperrors.ErrPayloadTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = urlMime
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}

	typeText := req.Type
	if strings.TrimSpace(typeText) == "" {
		typeText = req.Name
	}

	doc := &models.Document{
		ApplicationID: app.ID,
		AgencyID:      app.AgencyID,
		Name:          strings.TrimSpace(req.Name),
		Type:          models.NormalizeDocumentType(typeText),
		FileName:      req.FileName,
		MimeType:      mimeType,
		Size:          int64(len(raw)),
		Data:          base64.StdEncoding.EncodeToString(raw),
		Status:        models.DocumentPending,
		UploadedBy:    actor.UserID,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("error storing document: %w", err)
	}

	s.flagUploaded(ctx, app.ID, doc.Type)

	doc.Data = ""
	s.events.Publish(realtime.NewEvent(realtime.EventDocumentUploaded, doc.AgencyID, doc))
	s.logger.Info().Str("documentId", doc.ID.Hex()).Str("applicationId", app.ID).Str("type", doc.Type).Msg("Document uploaded")
	return doc, nil
}

// flagUploaded marks the type on the payment; failures are only logged
func (s *documentServiceImpl) flagUploaded(ctx context.Context, applicationID, docType string) {
	p, err := s.paymentRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Str("applicationId", applicationID).Msg("No payment to flag document upload on")
		} else {
			s.logger.Error().Err(err).Str("applicationId", applicationID).Msg("Failed to load payment for document flag")
		}
		return
	}

	p.MarkDocumentUploaded(docType, time.Now().UTC())
	if err := s.paymentRepo.UpdateDocuments(ctx, p.ID, p.Documents); err != nil {
		s.logger.Error().Err(err).Str("paymentId", p.ID).Msg("Failed to flag document upload on payment")
	}
}

func (s *documentServiceImpl) ListDocuments(ctx context.Context, actor Actor, filter repositories.DocumentFilter) ([]*models.Document, error) {
	if filter.ApplicationID != "" {
		if _, err := loadApplication(ctx, s.applicationRepo, actor, filter.ApplicationID); err != nil {
			return nil, err
		}
	}
	filter.AgencyID = actor.scopeAgency(filter.AgencyID)
	if filter.Type != "" {
		filter.Type = models.NormalizeDocumentType(filter.Type)
	}
	return s.documentRepo.List(ctx, filter)
}

func (s *documentServiceImpl) GetDocument(ctx context.Context, actor Actor, id string) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(doc.AgencyID) {
		return nil, apperrors.NewResourceNotFoundError("document not found")
	}
	return doc, nil
}

func (s *documentServiceImpl) GetDocumentFile(ctx context.Context, actor Actor, id string) (*models.Document, []byte, error) {
	doc, err := s.GetDocument(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("stored document %s is corrupt: %w", id, err)
	}
	doc.Data = ""
	return doc, raw, nil
}

func (s *documentServiceImpl) UpdateDocumentStatus(ctx context.Context, id string, req *dto.UpdateDocumentStatusRequest) (*models.Document, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown document status %q", apperrors.ErrValidationFailed, req.Status)
	}
	if err := s.documentRepo.UpdateStatus(ctx, id, req.Status, req.Remarks); err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Data = ""
	return doc, nil
}

func (s *documentServiceImpl) DeleteDocument(ctx context.Context, actor Actor, id string) error {
	doc, err := s.GetDocument(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && doc.Status == models.DocumentApproved {
		return apperrors.NewConflictError("approved documents cannot be deleted")
	}
	return s.documentRepo.Delete(ctx, id)
}
