package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

type userRepository struct {
	db *DB
}

var _ repositories.IUserRepository = (*userRepository)(nil)

func (r *userRepository) emailTaken(email, exceptID string) bool {
	for id, row := range r.db.users.rows {
		if id != exceptID && row.value.Email == email {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	t := r.db.users
	t.Lock()
	defer t.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if r.emailTaken(user.Email, "") {
		return apperrors.ErrEmailAlreadyExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	t.put(user.ID, *user)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	t := r.db.users
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		u := row.value
		return &u, nil
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	t := r.db.users
	t.RLock()
	defer t.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, row := range t.rows {
		if row.value.Email == email {
			u := row.value
			return &u, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func (r *userRepository) List(_ context.Context, filter repositories.UserFilter) ([]*models.User, int64, error) {
	t := r.db.users
	t.RLock()
	defer t.RUnlock()

	matched := []*models.User{}
	for _, u := range t.newestFirst() {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.AgencyID != "" && u.AgencyIDValue() != filter.AgencyID {
			continue
		}
		if filter.Search != "" && !contains(u.Name, filter.Search) && !contains(u.Email, filter.Search) {
			continue
		}
		u := u
		matched = append(matched, &u)
	}
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *userRepository) Update(_ context.Context, user *models.User) error {
	t := r.db.users
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[user.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if r.emailTaken(user.Email, user.ID) {
		return apperrors.ErrEmailAlreadyExists
	}
	user.CreatedAt = row.value.CreatedAt
	user.LastLoginAt = row.value.LastLoginAt
	user.UpdatedAt = time.Now().UTC()
	row.value = *user
	return nil
}

func (r *userRepository) UpdateStatus(_ context.Context, id string, status models.AccountStatus) error {
	t := r.db.users
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	row.value.Status = status
	row.value.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	t := r.db.users
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	row.value.LastLoginAt = &at
	return nil
}

func (r *userRepository) ClearAgency(_ context.Context, agencyID string) (int64, error) {
	t := r.db.users
	t.Lock()
	defer t.Unlock()

	var n int64
	for _, row := range t.rows {
		if row.value.AgencyIDValue() == agencyID {
			row.value.AgencyID = nil
			row.value.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	t := r.db.users
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	delete(t.rows, id)
	return nil
}

type agencyRepository struct {
	db *DB
}

var _ repositories.IAgencyRepository = (*agencyRepository)(nil)

func (r *agencyRepository) Create(_ context.Context, agency *models.Agency) error {
	t := r.db.agencies
	t.Lock()
	defer t.Unlock()

	if agency.ID == "" {
		agency.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	agency.CreatedAt, agency.UpdatedAt = now, now
	t.put(agency.ID, *agency)
	return nil
}

func (r *agencyRepository) GetByID(_ context.Context, id string) (*models.Agency, error) {
	t := r.db.agencies
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		a := row.value
		return &a, nil
	}
	return nil, apperrors.NewResourceNotFoundError("agency not found")
}

func (r *agencyRepository) List(_ context.Context, filter repositories.AgencyFilter) ([]*models.Agency, int64, error) {
	t := r.db.agencies
	t.RLock()
	defer t.RUnlock()

	matched := []*models.Agency{}
	for _, a := range t.newestFirst() {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !contains(a.Name, filter.Search) &&
			!contains(a.Email, filter.Search) && !contains(a.City, filter.Search) {
			continue
		}
		a := a
		matched = append(matched, &a)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *agencyRepository) Update(_ context.Context, agency *models.Agency) error {
	t := r.db.agencies
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[agency.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("agency not found")
	}
	agency.CreatedAt = row.value.CreatedAt
	agency.UpdatedAt = time.Now().UTC()
	row.value = *agency
	return nil
}

func (r *agencyRepository) UpdateStatus(_ context.Context, id string, status models.AccountStatus) error {
	t := r.db.agencies
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("agency not found")
	}
	row.value.Status = status
	row.value.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *agencyRepository) Delete(_ context.Context, id string) error {
	t := r.db.agencies
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("agency not found")
	}
	delete(t.rows, id)
	return nil
}

type settingsRepository struct {
	db *DB
}

var _ repositories.ISettingsRepository = (*settingsRepository)(nil)

func (r *settingsRepository) Get(_ context.Context) (*models.Settings, error) {
	r.db.settingsMu.RLock()
	defer r.db.settingsMu.RUnlock()

	if r.db.settings == nil {
		return &models.Settings{EscalationMatrix: []models.EscalationContact{}}, nil
	}
	s := *r.db.settings
	s.EscalationMatrix = append([]models.EscalationContact{}, r.db.settings.EscalationMatrix...)
	return &s, nil
}

func (r *settingsRepository) Save(_ context.Context, settings *models.Settings) error {
	r.db.settingsMu.Lock()
	defer r.db.settingsMu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	s := *settings
	s.EscalationMatrix = append([]models.EscalationContact{}, settings.EscalationMatrix...)
	r.db.settings = &s
	return nil
}
