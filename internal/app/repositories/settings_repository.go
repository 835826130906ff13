package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/pkg/dberrors"
	"github.com/yigit/agencyportal/internal/pkg/logger"
)

const settingsRowID = 1

// SettingsRepository reads and writes the singleton settings row
type SettingsRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db DBTX) *SettingsRepository {
	return &SettingsRepository{db: db, sb: newBuilder()}
}

// Get returns the stored settings, or empty settings when none were saved yet
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	sql, args, err := r.sb.Select("bank_details", "escalation_matrix", "payment_gateway", "updated_at").
		From("settings").
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get settings query: %w", err)
	}

	s := &models.Settings{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.BankDetails, &s.EscalationMatrix, &s.PaymentGateway, &s.UpdatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return &models.Settings{EscalationMatrix: []models.EscalationContact{}}, nil
		}
		logger.Error().Err(err).Msg("Error reading settings")
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	if s.EscalationMatrix == nil {
		s.EscalationMatrix = []models.EscalationContact{}
	}
	return s, nil
}

// Save upserts the settings row
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	if settings.EscalationMatrix == nil {
		settings.EscalationMatrix = []models.EscalationContact{}
	}

	sql, args, err := r.sb.Insert("settings").
		Columns("id", "bank_details", "escalation_matrix", "payment_gateway", "updated_at").
		Values(settingsRowID, settings.BankDetails, settings.EscalationMatrix, settings.PaymentGateway, settings.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET bank_details = EXCLUDED.bank_details, " +
			"escalation_matrix = EXCLUDED.escalation_matrix, payment_gateway = EXCLUDED.payment_gateway, " +
			"updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save settings query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Msg("Error saving settings")
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}
