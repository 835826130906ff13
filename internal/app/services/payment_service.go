package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
	"github.com/yigit/agencyportal/internal/pkg/pdf"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

// SyncResult reports one payment sync run
type SyncResult struct {
	Scanned int `json:"scanned" example:"120"`
	Created int `json:"created" example:"3"`
	Skipped int `json:"skipped" example:"117"`
	Failed  int `json:"failed" example:"0"`
}

// PaymentSummary is the dashboard view over a set of payments
type PaymentSummary struct {
	Total             int                          `json:"total"`
	ByPaymentStatus   map[models.PaymentStatus]int `json:"byPaymentStatus"`
	ByLeadStatus      map[models.LeadStatus]int    `json:"byLeadStatus"`
	TotalFee          float64                      `json:"totalFee"`
	TotalCommission   float64                      `json:"totalCommission"`
	PaidCommission    float64                      `json:"paidCommission"`
	PendingCommission float64                      `json:"pendingCommission"`
}

// PaymentService defines payment reconciliation and settlement
type PaymentService interface {
	// SyncPayments creates the missing payment for every application. Safe to
	// run concurrently and repeatedly.
	SyncPayments(ctx context.Context) (*SyncResult, error)
	// RunSyncLoop runs SyncPayments every interval until ctx is done
	RunSyncLoop(ctx context.Context, interval time.Duration)
	// RecalculateCommission applies a new rate to the agency's unpaid payments
	RecalculateCommission(ctx context.Context, agencyID string, rate float64) (int, error)
	ListPayments(ctx context.Context, actor Actor, filter repositories.PaymentFilter) ([]*models.Payment, int64, error)
	GetPayment(ctx context.Context, actor Actor, id string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, id string, req *dto.UpdatePaymentRequest) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Payment, error)
	UpdateLeadStatus(ctx context.Context, actor Actor, id string, status models.LeadStatus) (*models.Payment, error)
	// RequestDocument marks a document type as requested from the agency
	RequestDocument(ctx context.Context, id, docType string) (*models.Payment, error)
	Summary(ctx context.Context, actor Actor) (*PaymentSummary, error)
	Receipt(ctx context.Context, actor Actor, id string) ([]byte, string, error)
}

type paymentServiceImpl struct {
	paymentRepo     repositories.IPaymentRepository
	applicationRepo repositories.IApplicationRepository
	agencyRepo      repositories.IAgencyRepository
	events          realtime.Publisher
	options         Options
	logger          zerolog.Logger
}

// NewPaymentService creates a new payment service instance
func NewPaymentService(repos *repositories.Repositories, events realtime.Publisher, options Options, logger zerolog.Logger) PaymentService {
	return &paymentServiceImpl{
		paymentRepo:     repos.Payments,
		applicationRepo: repos.Applications,
		agencyRepo:      repos.Agencies,
		events:          events,
		options:         options,
		logger:          logger,
	}
}

// commissionRate returns the agency's rate, or the configured default when
// the agency record is gone
func (s *paymentServiceImpl) commissionRate(ctx context.Context, agencyID string) (float64, error) {
	agency, err := s.agencyRepo.GetByID(ctx, agencyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return s.options.DefaultCommissionRate, nil
		}
		return 0, err
	}
	return agency.CommissionRate, nil
}

func (s *paymentServiceImpl) SyncPayments(ctx context.Context) (*SyncResult, error) {
	apps, _, err := s.applicationRepo.List(ctx, repositories.ApplicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	existing, err := s.paymentRepo.ApplicationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing payment applications: %w", err)
	}

	result := &SyncResult{Scanned: len(apps)}
	rates := map[string]float64{}

	for _, app := range apps {
		if _, ok := existing[app.ID]; ok {
			result.Skipped++
			continue
		}

		rate, ok := rates[app.AgencyID]
		if !ok {
			if rate, err = s.commissionRate(ctx, app.AgencyID); err != nil {
				s.logger.Error().Err(err).Str("agencyId", app.AgencyID).Msg("Failed to load agency commission rate")
				result.Failed++
				continue
			}
			rates[app.AgencyID] = rate
		}

		created, err := s.paymentRepo.CreateIfAbsent(ctx, models.NewPaymentForApplication(app, rate))
		switch {
		case err != nil:
			s.logger.Error().Err(err).Str("applicationId", app.ID).Msg("Failed to create payment during sync")
			result.Failed++
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	s.logger.Info().
		Int("scanned", result.Scanned).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Payment sync finished")
	return result, nil
}

func (s *paymentServiceImpl) RunSyncLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SyncPayments(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("Scheduled payment sync failed")
			}
		}
	}
}

func (s *paymentServiceImpl) RecalculateCommission(ctx context.Context, agencyID string, rate float64) (int, error) {
	payments, _, err := s.paymentRepo.List(ctx, repositories.PaymentFilter{AgencyID: agencyID})
	if err != nil {
		return 0, fmt.Errorf("error listing agency payments: %w", err)
	}

	updated := 0
	for _, p := range payments {
		if p.PaymentStatus == models.PaymentPaid {
			continue
		}
		p.CommissionRate = rate
		p.CommissionAmount = models.CalculateCommission(p.Fee, rate)
		if err := s.paymentRepo.Update(ctx, p); err != nil {
			return updated, fmt.Errorf("error updating payment %s: %w", p.ID, err)
		}
		updated++
	}
	return updated, nil
}

func (s *paymentServiceImpl) ListPayments(ctx context.Context, actor Actor, filter repositories.PaymentFilter) ([]*models.Payment, int64, error) {
	filter.AgencyID = actor.scopeAgency(filter.AgencyID)
	return s.paymentRepo.List(ctx, filter)
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, actor Actor, id string) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(p.AgencyID) {
		return nil, apperrors.NewResourceNotFoundError("payment not found")
	}
	return p, nil
}

// setPaymentStatus keeps paid_at in step with the status
func setPaymentStatus(p *models.Payment, status models.PaymentStatus, now time.Time) {
	p.PaymentStatus = status
	if status == models.PaymentPaid {
		if p.PaidAt == nil {
			p.PaidAt = &now
		}
		return
	}
	p.PaidAt = nil
}

func (s *paymentServiceImpl) UpdatePayment(ctx context.Context, id string, req *dto.UpdatePaymentRequest) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.AmountPaid != nil {
		if *req.AmountPaid < 0 {
			return nil, fmt.Errorf("%w: amountPaid cannot be negative", apperrors.ErrValidationFailed)
		}
		p.ApplyAmountPaid(helpers.RoundMoney(*req.AmountPaid), now)
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if req.PaymentStatus != nil {
		setPaymentStatus(p, *req.PaymentStatus, now)
	}

	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

func (s *paymentServiceImpl) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Payment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", apperrors.ErrValidationFailed, status)
	}
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setPaymentStatus(p, status, time.Now().UTC())
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

func (s *paymentServiceImpl) UpdateLeadStatus(ctx context.Context, actor Actor, id string, status models.LeadStatus) (*models.Payment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown lead status %q", apperrors.ErrValidationFailed, status)
	}
	p, err := s.GetPayment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	p.LeadStatus = status
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

func (s *paymentServiceImpl) RequestDocument(ctx context.Context, id, docType string) (*models.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.MarkDocumentRequested(models.NormalizeDocumentType(docType), time.Now().UTC())
	if err := s.paymentRepo.UpdateDocuments(ctx, p.ID, p.Documents); err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

func (s *paymentServiceImpl) Summary(ctx context.Context, actor Actor) (*PaymentSummary, error) {
	payments, _, err := s.ListPayments(ctx, actor, repositories.PaymentFilter{})
	if err != nil {
		return nil, err
	}

	sum := &PaymentSummary{
		Total:           len(payments),
		ByPaymentStatus: map[models.PaymentStatus]int{},
		ByLeadStatus:    map[models.LeadStatus]int{},
	}
	for _, p := range payments {
		sum.ByPaymentStatus[p.PaymentStatus]++
		sum.ByLeadStatus[p.LeadStatus]++
		if p.PaymentStatus == models.PaymentCancelled {
			continue
		}
		sum.TotalFee += p.Fee
		sum.TotalCommission += p.CommissionAmount
		if p.PaymentStatus == models.PaymentPaid {
			sum.PaidCommission += p.CommissionAmount
		}
	}
	sum.TotalFee = helpers.RoundMoney(sum.TotalFee)
	sum.TotalCommission = helpers.RoundMoney(sum.TotalCommission)
	sum.PaidCommission = helpers.RoundMoney(sum.PaidCommission)
	sum.PendingCommission = helpers.RoundMoney(sum.TotalCommission - sum.PaidCommission)
	return sum, nil
}

func (s *paymentServiceImpl) Receipt(ctx context.Context, actor Actor, id string) ([]byte, string, error) {
	p, err := s.GetPayment(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	return pdf.PaymentReceipt(p, s.options.Currency, time.Now())
}

func (s *paymentServiceImpl) publish(p *models.Payment) {
	s.events.Publish(realtime.NewEvent(realtime.EventPaymentUpdated, p.AgencyID, p))
}
