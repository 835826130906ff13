package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

func (db *DB) agencyName(id string) string {
	db.agencies.RLock()
	defer db.agencies.RUnlock()
	if row, ok := db.agencies.rows[id]; ok {
		return row.value.Name
	}
	return ""
}

type applicationRepository struct {
	db *DB
}

var _ repositories.IApplicationRepository = (*applicationRepository)(nil)

// withNames fills the display names the SQL repository gets from joins
func (r *applicationRepository) withNames(a models.Application) *models.Application {
	a.AgencyName = r.db.agencyName(a.AgencyID)

	r.db.colleges.RLock()
	if row, ok := r.db.colleges.rows[a.CollegeID]; ok {
		a.CollegeName = row.value.Name
	}
	r.db.colleges.RUnlock()

	r.db.courses.RLock()
	if row, ok := r.db.courses.rows[a.CourseID]; ok {
		a.CourseName = row.value.Name
	}
	r.db.courses.RUnlock()
	return &a
}

func (r *applicationRepository) Create(_ context.Context, app *models.Application) error {
	t := r.db.applications
	t.Lock()
	defer t.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now
	t.put(app.ID, *app)
	return nil
}

func (r *applicationRepository) GetByID(_ context.Context, id string) (*models.Application, error) {
	t := r.db.applications
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return r.withNames(row.value), nil
	}
	return nil, apperrors.NewResourceNotFoundError("application not found")
}

func (r *applicationRepository) List(_ context.Context, filter repositories.ApplicationFilter) ([]*models.Application, int64, error) {
	t := r.db.applications
	t.RLock()
	defer t.RUnlock()

	matched := []*models.Application{}
	for _, a := range t.newestFirst() {
		switch {
		case filter.AgencyID != "" && a.AgencyID != filter.AgencyID,
			filter.CollegeID != "" && a.CollegeID != filter.CollegeID,
			filter.CourseID != "" && a.CourseID != filter.CourseID,
			filter.Status != "" && a.Status != filter.Status,
			filter.From != nil && a.CreatedAt.Before(*filter.From),
			filter.To != nil && a.CreatedAt.After(*filter.To):
			continue
		}
		if filter.Search != "" && !contains(a.StudentName, filter.Search) && !contains(a.StudentEmail, filter.Search) {
			continue
		}
		matched = append(matched, r.withNames(a))
	}
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *applicationRepository) Update(_ context.Context, app *models.Application) error {
	t := r.db.applications
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[app.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	next := *app
	next.AgencyID = row.value.AgencyID
	next.Status = row.value.Status
	next.CreatedBy = row.value.CreatedBy
	next.CreatedAt = row.value.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	row.value = next
	app.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *applicationRepository) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus, remarks string) error {
	t := r.db.applications
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	row.value.Status = status
	row.value.Remarks = remarks
	row.value.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *applicationRepository) Delete(_ context.Context, id string) error {
	t := r.db.applications
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	delete(t.rows, id)
	return nil
}

type paymentRepository struct {
	db *DB
}

var _ repositories.IPaymentRepository = (*paymentRepository)(nil)

func copyPayment(p models.Payment) models.Payment {
	docs := make(models.DocumentFlags, len(p.Documents))
	for k, v := range p.Documents {
		docs[k] = v
	}
	p.Documents = docs
	return p
}

func (r *paymentRepository) view(p models.Payment) *models.Payment {
	out := copyPayment(p)
	out.AgencyName = r.db.agencyName(p.AgencyID)
	return &out
}

func (r *paymentRepository) CreateIfAbsent(_ context.Context, payment *models.Payment) (bool, error) {
	t := r.db.payments
	t.Lock()
	defer t.Unlock()

	for _, row := range t.rows {
		if row.value.ApplicationID == payment.ApplicationID {
			return false, nil
		}
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt, payment.UpdatedAt = now, now
	t.put(payment.ID, copyPayment(*payment))
	return true, nil
}

func (r *paymentRepository) GetByID(_ context.Context, id string) (*models.Payment, error) {
	t := r.db.payments
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return r.view(row.value), nil
	}
	return nil, apperrors.NewResourceNotFoundError("payment not found")
}

func (r *paymentRepository) GetByApplicationID(_ context.Context, applicationID string) (*models.Payment, error) {
	t := r.db.payments
	t.RLock()
	defer t.RUnlock()

	for _, row := range t.rows {
		if row.value.ApplicationID == applicationID {
			return r.view(row.value), nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("payment not found")
}

func (r *paymentRepository) List(_ context.Context, filter repositories.PaymentFilter) ([]*models.Payment, int64, error) {
	t := r.db.payments
	t.RLock()
	defer t.RUnlock()

	matched := []*models.Payment{}
	for _, p := range t.newestFirst() {
		switch {
		case filter.AgencyID != "" && p.AgencyID != filter.AgencyID,
			filter.PaymentStatus != "" && p.PaymentStatus != filter.PaymentStatus,
			filter.LeadStatus != "" && p.LeadStatus != filter.LeadStatus,
			filter.Search != "" && !contains(p.StudentName, filter.Search):
			continue
		}
		matched = append(matched, r.view(p))
	}
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *paymentRepository) ApplicationIDs(_ context.Context) (map[string]struct{}, error) {
	t := r.db.payments
	t.RLock()
	defer t.RUnlock()

	ids := make(map[string]struct{}, len(t.rows))
	for _, row := range t.rows {
		ids[row.value.ApplicationID] = struct{}{}
	}
	return ids, nil
}

func (r *paymentRepository) Update(_ context.Context, payment *models.Payment) error {
	t := r.db.payments
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[payment.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("payment not found")
	}
	payment.UpdatedAt = time.Now().UTC()
	next := copyPayment(*payment)
	next.ApplicationID = row.value.ApplicationID
	next.CreatedAt = row.value.CreatedAt
	next.AgencyName = ""
	row.value = next
	return nil
}

func (r *paymentRepository) UpdateDocuments(_ context.Context, id string, docs models.DocumentFlags) error {
	t := r.db.payments
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("payment not found")
	}
	row.value.Documents = copyPayment(models.Payment{Documents: docs}).Documents
	row.value.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *paymentRepository) DeleteByApplicationID(_ context.Context, applicationID string) error {
	t := r.db.payments
	t.Lock()
	defer t.Unlock()

	for id, row := range t.rows {
		if row.value.ApplicationID == applicationID {
			delete(t.rows, id)
		}
	}
	return nil
}

type offlinePaymentRepository struct {
	db *DB
}

var _ repositories.IOfflinePaymentRepository = (*offlinePaymentRepository)(nil)

func (r *offlinePaymentRepository) Create(_ context.Context, payment *models.OfflinePayment) error {
	t := r.db.offlinePayments
	t.Lock()
	defer t.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt, payment.UpdatedAt = now, now
	t.put(payment.ID, *payment)
	return nil
}

func (r *offlinePaymentRepository) GetByID(_ context.Context, id string) (*models.OfflinePayment, error) {
	t := r.db.offlinePayments
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		o := row.value
		o.AgencyName = r.db.agencyName(o.AgencyID)
		return &o, nil
	}
	return nil, apperrors.NewResourceNotFoundError("offline payment not found")
}

func (r *offlinePaymentRepository) List(_ context.Context, filter repositories.OfflinePaymentFilter) ([]*models.OfflinePayment, int64, error) {
	t := r.db.offlinePayments
	t.RLock()
	defer t.RUnlock()

	matched := []*models.OfflinePayment{}
	for _, o := range t.newestFirst() {
		if filter.AgencyID != "" && o.AgencyID != filter.AgencyID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		o := o
		o.AgencyName = r.db.agencyName(o.AgencyID)
		matched = append(matched, &o)
	}
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *offlinePaymentRepository) UpdateReview(_ context.Context, payment *models.OfflinePayment) error {
	t := r.db.offlinePayments
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[payment.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("offline payment not found")
	}
	payment.UpdatedAt = time.Now().UTC()
	row.value.Status = payment.Status
	row.value.Remarks = payment.Remarks
	row.value.ReviewedBy = payment.ReviewedBy
	row.value.ReviewedAt = payment.ReviewedAt
	row.value.UpdatedAt = payment.UpdatedAt
	return nil
}

type documentRepository struct {
	db *DB
}

var _ repositories.IDocumentRepository = (*documentRepository)(nil)

func (r *documentRepository) Create(_ context.Context, doc *models.Document) error {
	t := r.db.documents
	t.Lock()
	defer t.Unlock()

	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now
	t.put(doc.ID.Hex(), *doc)
	return nil
}

func (r *documentRepository) GetByID(_ context.Context, id string) (*models.Document, error) {
	t := r.db.documents
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		d := row.value
		return &d, nil
	}
	return nil, apperrors.NewResourceNotFoundError("document not found")
}

func (r *documentRepository) List(_ context.Context, filter repositories.DocumentFilter) ([]*models.Document, error) {
	t := r.db.documents
	t.RLock()
	defer t.RUnlock()

	docs := []*models.Document{}
	for _, d := range t.newestFirst() {
		switch {
		case filter.ApplicationID != "" && d.ApplicationID != filter.ApplicationID,
			filter.AgencyID != "" && d.AgencyID != filter.AgencyID,
			filter.Status != "" && d.Status != filter.Status,
			filter.Type != "" && d.Type != filter.Type:
			continue
		}
		d := d
		d.Data = ""
		docs = append(docs, &d)
	}
	return docs, nil
}

func (r *documentRepository) UpdateStatus(_ context.Context, id string, status models.DocumentStatus, remarks string) error {
	t := r.db.documents
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	row.value.Status = status
	row.value.Remarks = remarks
	row.value.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *documentRepository) UpdateStatusByApplication(_ context.Context, applicationID string, status models.DocumentStatus) (int64, error) {
	t := r.db.documents
	t.Lock()
	defer t.Unlock()

	var n int64
	for _, row := range t.rows {
		if row.value.ApplicationID == applicationID && row.value.Status != status {
			row.value.Status = status
			row.value.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (r *documentRepository) Delete(_ context.Context, id string) error {
	t := r.db.documents
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	delete(t.rows, id)
	return nil
}

func (r *documentRepository) DeleteByApplication(_ context.Context, applicationID string) (int64, error) {
	t := r.db.documents
	t.Lock()
	defer t.Unlock()

	var n int64
	for id, row := range t.rows {
		if row.value.ApplicationID == applicationID {
			delete(t.rows, id)
			n++
		}
	}
	return n, nil
}
