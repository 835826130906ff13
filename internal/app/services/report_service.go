package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
	"github.com/yigit/agencyportal/internal/pkg/report"
)

// Report entities
const (
	ReportApplications    = "applications"
	ReportPayments        = "payments"
	ReportAgencies        = "agencies"
	ReportColleges        = "colleges"
	ReportOfflinePayments = "offline-payments"
)

// ReportQuery selects and filters one export. Status matches exactly,
// ignoring case. Date is a substring of the created date (YYYY-MM-DD);
// From and To bound it inclusively.
type ReportQuery struct {
	Entity string
	Format report.Format
	Status string
	Date   string
	From   *time.Time
	To     *time.Time
}

// ReportFile is a rendered export ready to be sent as an attachment
type ReportFile struct {
	Name        string
	ContentType string
	Body        []byte
	Rows        int
}

// ReportService builds exports over whole collections
type ReportService interface {
	Export(ctx context.Context, actor Actor, q ReportQuery) (*ReportFile, error)
}

type reportServiceImpl struct {
	repos *repositories.Repositories
	now   func() time.Time
}

// NewReportService creates a new report service instance
func NewReportService(repos *repositories.Repositories) ReportService {
	return &reportServiceImpl{repos: repos, now: time.Now}
}

// record is one candidate row with the fields filters look at
type record struct {
	status  string
	created string
	cells   []string
}

func (q ReportQuery) matches(r record) bool {
	if q.Status != "" && !strings.EqualFold(q.Status, r.status) {
		return false
	}
	if q.Date != "" && !strings.Contains(r.created, q.Date) {
		return false
	}
	if q.From != nil && r.created < day(*q.From) {
		return false
	}
	if q.To != nil && r.created > day(*q.To) {
		return false
	}
	return true
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(helpers.DateLayout)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (s *reportServiceImpl) Export(ctx context.Context, actor Actor, q ReportQuery) (*ReportFile, error) {
	if q.Format == "" {
		q.Format = report.FormatCSV
	}

	var (
		table   *report.Table
		records []record
		err     error
	)
	switch q.Entity {
	case ReportApplications:
		table, records, err = s.applications(ctx, actor)
	case ReportPayments:
		table, records, err = s.payments(ctx, actor)
	case ReportOfflinePayments:
		table, records, err = s.offlinePayments(ctx, actor)
	case ReportAgencies, ReportColleges:
		if !actor.IsAdmin() {
			return nil, apperrors.NewForbiddenError(fmt.Sprintf("%s report is only available to admins", q.Entity))
		}
		if q.Entity == ReportAgencies {
			table, records, err = s.agencies(ctx)
		} else {
			table, records, err = s.colleges(ctx)
		}
	default:
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("unknown report %q", q.Entity))
	}
	if err != nil {
		return nil, fmt.Errorf("error loading %s report: %w", q.Entity, err)
	}

	for _, r := range records {
		if q.matches(r) {
			table.AddRow(r.cells...)
		}
	}

	body, err := report.Render(q.Format, table)
	if err != nil {
		return nil, err
	}
	return &ReportFile{
		Name:        report.FileName(q.Entity, q.Format, s.now()),
		ContentType: q.Format.ContentType(),
		Body:        body,
		Rows:        len(table.Rows),
	}, nil
}

func (s *reportServiceImpl) applications(ctx context.Context, actor Actor) (*report.Table, []record, error) {
	apps, _, err := s.repos.Applications.List(ctx, repositories.ApplicationFilter{AgencyID: actor.scopeAgency("")})
	if err != nil {
		return nil, nil, err
	}
	t := &report.Table{
		Title:   "Applications",
		Columns: []string{"ID", "Student", "Email", "Phone", "Agency", "College", "Course", "Session", "Fee", "Status", "Created"},
	}
	records := make([]record, 0, len(apps))
	for _, a := range apps {
		created := day(a.CreatedAt)
		records = append(records, record{
			status:  string(a.Status),
			created: created,
			cells: []string{a.ID, a.StudentName, a.StudentEmail, a.StudentPhone, a.AgencyName,
				a.CollegeName, a.CourseName, a.Session, money(a.Fee), string(a.Status), created},
		})
	}
	return t, records, nil
}

func (s *reportServiceImpl) payments(ctx context.Context, actor Actor) (*report.Table, []record, error) {
	payments, _, err := s.repos.Payments.List(ctx, repositories.PaymentFilter{AgencyID: actor.scopeAgency("")})
	if err != nil {
		return nil, nil, err
	}
	t := &report.Table{
		Title: "Payments",
		Columns: []string{"ID", "Application", "Student", "Agency", "Fee", "Commission Rate",
			"Commission", "Amount Paid", "Payment Status", "Lead Status", "Paid On", "Created"},
	}
	records := make([]record, 0, len(payments))
	for _, p := range payments {
		created := day(p.CreatedAt)
		var paidOn string
		if p.PaidAt != nil {
			paidOn = day(*p.PaidAt)
		}
		records = append(records, record{
			status:  string(p.PaymentStatus),
			created: created,
			cells: []string{p.ID, p.ApplicationID, p.StudentName, p.AgencyName, money(p.Fee),
				money(p.CommissionRate), money(p.CommissionAmount), money(p.AmountPaid),
				string(p.PaymentStatus), string(p.LeadStatus), paidOn, created},
		})
	}
	return t, records, nil
}

func (s *reportServiceImpl) offlinePayments(ctx context.Context, actor Actor) (*report.Table, []record, error) {
	ops, _, err := s.repos.OfflinePayments.List(ctx, repositories.OfflinePaymentFilter{AgencyID: actor.scopeAgency("")})
	if err != nil {
		return nil, nil, err
	}
	t := &report.Table{
		Title:   "Offline Payments",
		Columns: []string{"ID", "Agency", "Amount", "Currency", "Reference", "Bank", "Payment Date", "Status", "Remarks", "Created"},
	}
	records := make([]record, 0, len(ops))
	for _, o := range ops {
		created := day(o.CreatedAt)
		records = append(records, record{
			status:  string(o.Status),
			created: created,
			cells: []string{o.ID, o.AgencyName, money(o.Amount), o.Currency, o.Reference, o.BankName,
				day(o.PaymentDate), string(o.Status), o.Remarks, created},
		})
	}
	return t, records, nil
}

func (s *reportServiceImpl) agencies(ctx context.Context) (*report.Table, []record, error) {
	agencies, _, err := s.repos.Agencies.List(ctx, repositories.AgencyFilter{})
	if err != nil {
		return nil, nil, err
	}
	t := &report.Table{
		Title:   "Agencies",
		Columns: []string{"ID", "Name", "Email", "Phone", "City", "Country", "Contact Person", "Commission Rate", "Status", "Created"},
	}
	records := make([]record, 0, len(agencies))
	for _, a := range agencies {
		created := day(a.CreatedAt)
		records = append(records, record{
			status:  string(a.Status),
			created: created,
			cells: []string{a.ID, a.Name, a.Email, a.Phone, a.City, a.Country, a.ContactPerson,
				money(a.CommissionRate), string(a.Status), created},
		})
	}
	return t, records, nil
}

func (s *reportServiceImpl) colleges(ctx context.Context) (*report.Table, []record, error) {
	colleges, _, err := s.repos.Colleges.List(ctx, repositories.CollegeFilter{})
	if err != nil {
		return nil, nil, err
	}
	t := &report.Table{
		Title:   "Colleges",
		Columns: []string{"ID", "Name", "Code", "Location", "Ranking", "Established", "Status", "Created"},
	}
	records := make([]record, 0, len(colleges))
	for _, c := range colleges {
		created := day(c.CreatedAt)
		var ranking, established string
		if c.Ranking != nil {
			ranking = strconv.Itoa(*c.Ranking)
		}
		if c.EstablishedYear != nil {
			established = strconv.Itoa(*c.EstablishedYear)
		}
		records = append(records, record{
			status:  string(c.Status),
			created: created,
			cells:   []string{c.ID, c.Name, c.Code, c.Location, ranking, established, string(c.Status), created},
		})
	}
	return t, records, nil
}
