package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/email"
	"github.com/yigit/agencyportal/internal/pkg/filestorage"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
	"github.com/yigit/agencyportal/internal/pkg/pdf"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

const offlineProofDir = "offline-payments"

// OfflinePaymentService handles bank transfer proofs submitted by agencies
type OfflinePaymentService interface {
	SubmitOfflinePayment(ctx context.Context, actor Actor, form *dto.CreateOfflinePaymentForm, proof *multipart.FileHeader) (*models.OfflinePayment, error)
	ListOfflinePayments(ctx context.Context, actor Actor, filter repositories.OfflinePaymentFilter) ([]*models.OfflinePayment, int64, error)
	GetOfflinePayment(ctx context.Context, actor Actor, id string) (*models.OfflinePayment, error)
	// ReviewOfflinePayment verifies or rejects a pending submission
	ReviewOfflinePayment(ctx context.Context, actor Actor, id string, req *dto.ReviewOfflinePaymentRequest) (*models.OfflinePayment, error)
	// ProofFile resolves the stored proof to a path on disk and its original name
	ProofFile(ctx context.Context, actor Actor, id string) (string, string, error)
	Receipt(ctx context.Context, actor Actor, id string) ([]byte, string, error)
}

type offlinePaymentServiceImpl struct {
	offlineRepo repositories.IOfflinePaymentRepository
	agencyRepo  repositories.IAgencyRepository
	storage     filestorage.FileStorage
	events      realtime.Publisher
	mailer      email.EmailService
	options     Options
	logger      zerolog.Logger
}

// NewOfflinePaymentService creates a new offline payment service instance
func NewOfflinePaymentService(
	offlineRepo repositories.IOfflinePaymentRepository,
	agencyRepo repositories.IAgencyRepository,
	storage filestorage.FileStorage,
	events realtime.Publisher,
	mailer email.EmailService,
	options Options,
	logger zerolog.Logger,
) OfflinePaymentService {
	return &offlinePaymentServiceImpl{
		offlineRepo: offlineRepo,
		agencyRepo:  agencyRepo,
		storage:     storage,
		events:      events,
		mailer:      mailer,
		options:     options,
		logger:      logger,
	}
}

func (s *offlinePaymentServiceImpl) SubmitOfflinePayment(ctx context.Context, actor Actor, form *dto.CreateOfflinePaymentForm, proof *multipart.FileHeader) (*models.OfflinePayment, error) {
	if err := actor.requireAgency(); err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, fmt.Errorf("%w: proof file is required", apperrors.ErrValidationFailed)
	}
	if proof.Size > s.options.MaxUploadBytes {
		return nil, apperrors.NewCustomError(apperrors.ErrPayloadTooLarge,
			fmt.Sprintf("proof exceeds the %d byte limit", s.options.MaxUploadBytes))
	}
	if form.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidationFailed)
	}

	paymentDate, err := time.Parse(helpers.DateLayout, form.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: paymentDate must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}

	currency := strings.ToUpper(strings.TrimSpace(form.Currency))
	if currency == "" {
		currency = s.options.Currency
	}

	stored, err := s.storage.SaveFileWithPath(proof, offlineProofDir+"/"+actor.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("error saving proof file: %w", err)
	}

	op := &models.OfflinePayment{
		AgencyID:    actor.AgencyID,
		Amount:      helpers.RoundMoney(form.Amount),
		Currency:    currency,
		Reference:   strings.TrimSpace(form.Reference),
		BankName:    strings.TrimSpace(form.BankName),
		PaymentDate: paymentDate,
		ProofPath:   stored,
		ProofName:   proof.Filename,
		Status:      models.OfflinePaymentPending,
		Remarks:     form.Remarks,
	}
	if err := s.offlineRepo.Create(ctx, op); err != nil {
		if delErr := s.storage.DeleteFile(stored); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", stored).Msg("Failed to remove proof after insert failed")
		}
		return nil, fmt.Errorf("error creating offline payment: %w", err)
	}

	s.events.Publish(realtime.NewEvent(realtime.EventOfflinePaymentCreated, op.AgencyID, op))
	s.logger.Info().Str("offlinePaymentId", op.ID).Str("agencyId", op.AgencyID).Msg("Offline payment submitted")
	return op, nil
}

func (s *offlinePaymentServiceImpl) ListOfflinePayments(ctx context.Context, actor Actor, filter repositories.OfflinePaymentFilter) ([]*models.OfflinePayment, int64, error) {
	filter.AgencyID = actor.scopeAgency(filter.AgencyID)
	return s.offlineRepo.List(ctx, filter)
}

func (s *offlinePaymentServiceImpl) GetOfflinePayment(ctx context.Context, actor Actor, id string) (*models.OfflinePayment, error) {
	op, err := s.offlineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(op.AgencyID) {
		return nil, apperrors.NewResourceNotFoundError("offline payment not found")
	}
	return op, nil
}

func (s *offlinePaymentServiceImpl) ReviewOfflinePayment(ctx context.Context, actor Actor, id string, req *dto.ReviewOfflinePaymentRequest) (*models.OfflinePayment, error) {
	if req.Status != models.OfflinePaymentVerified && req.Status != models.OfflinePaymentRejected {
		return nil, fmt.Errorf("%w: status must be verified or rejected", apperrors.ErrValidationFailed)
	}

	op, err := s.offlineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op.Status != models.OfflinePaymentPending {
		return nil, apperrors.NewConflictError(fmt.Sprintf("offline payment already %s", op.Status))
	}

	now := time.Now().UTC()
	reviewer := actor.UserID
	op.Status = req.Status
	op.Remarks = req.Remarks
	op.ReviewedBy = &reviewer
	op.ReviewedAt = &now

	if err := s.offlineRepo.UpdateReview(ctx, op); err != nil {
		return nil, err
	}

	s.events.Publish(realtime.NewEvent(realtime.EventOfflinePaymentStatus, op.AgencyID, op))
	if agency, err := s.agencyRepo.GetByID(ctx, op.AgencyID); err == nil {
		if err := s.mailer.SendOfflinePaymentReviewedEmail(agency.Email, agency.Name, op.Reference, string(op.Status), op.Remarks); err != nil {
			s.logger.Error().Err(err).Str("offlinePaymentId", op.ID).Msg("Failed to send offline payment review email")
		}
	}
	return op, nil
}

func (s *offlinePaymentServiceImpl) ProofFile(ctx context.Context, actor Actor, id string) (string, string, error) {
	op, err := s.GetOfflinePayment(ctx, actor, id)
	if err != nil {
		return "", "", err
	}
	if op.ProofPath == "" {
		return "", "", apperrors.NewResourceNotFoundError("proof file not found")
	}
	path, err := s.storage.GetFullPath(op.ProofPath)
	if err != nil {
		return "", "", err
	}
	return path, op.ProofName, nil
}

func (s *offlinePaymentServiceImpl) Receipt(ctx context.Context, actor Actor, id string) ([]byte, string, error) {
	op, err := s.GetOfflinePayment(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	return pdf.OfflinePaymentReceipt(op, time.Now())
}
