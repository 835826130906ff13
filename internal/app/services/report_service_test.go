package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/report"
)

func csvLines(body []byte) []string {
	return strings.Split(strings.TrimSpace(string(body)), "\n")
}

func TestApplicationsReportCSV(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	_, other := f.agency(t, "rival", 10)
	college, course := f.catalog(t, 1000)
	approved := f.application(t, actor, college, course, "Approved Student")
	f.application(t, actor, college, course, "Pending Student")
	f.application(t, other, college, course, "Rival Student")

	_, err := f.svc.Applications.UpdateApplicationStatus(f.ctx, approved.ID, &dto.UpdateApplicationStatusRequest{Status: models.ApplicationApproved})
	require.NoError(t, err)

	file, err := f.svc.Reports.Export(f.ctx, actor, ReportQuery{Entity: ReportApplications, Format: report.FormatCSV})
	require.NoError(t, err)
	lines := csvLines(file.Body)
	assert.Equal(t, "ID,Student,Email,Phone,Agency,College,Course,Session,Fee,Status,Created", lines[0])
	assert.Len(t, lines, 3)
	assert.Equal(t, 2, file.Rows)
	assert.NotContains(t, string(file.Body), "Rival Student")
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Name, "applications-"))
	assert.True(t, strings.HasSuffix(file.Name, ".csv"))

	file, err = f.svc.Reports.Export(f.ctx, actor, ReportQuery{Entity: ReportApplications, Status: "APPROVED"})
	require.NoError(t, err)
	lines = csvLines(file.Body)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Approved Student")

	all, err := f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: ReportApplications})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Rows)
}

func TestReportDateFilters(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	f.application(t, actor, college, course, "Rahul")
	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	y1999 := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	y1999End := time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)

	file, err := f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: ReportPayments, Date: today[:7]})
	require.NoError(t, err)
	assert.Equal(t, 1, file.Rows)

	file, err = f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: ReportPayments, From: &y1999, To: &y1999End})
	require.NoError(t, err)
	assert.Equal(t, 0, file.Rows)
	assert.Len(t, csvLines(file.Body), 1)

	file, err = f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: ReportPayments, From: &now, To: &now})
	require.NoError(t, err)
	assert.Equal(t, 1, file.Rows)
}

func TestAdminOnlyReports(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)

	_, err := f.svc.Reports.Export(f.ctx, actor, ReportQuery{Entity: ReportAgencies})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	file, err := f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: ReportAgencies, Format: report.FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, 1, file.Rows)
	assert.Contains(t, string(file.Body), `"Name":"globaledu"`)

	_, err = f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: "students"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCollegesReportHTML(t *testing.T) {
	f := newFixture(t)
	f.catalog(t, 1000)

	file, err := f.svc.Reports.Export(f.ctx, f.admin, ReportQuery{Entity: ReportColleges, Format: report.FormatHTML})
	require.NoError(t, err)
	assert.Contains(t, string(file.Body), "<h1>Colleges</h1>")
	assert.Contains(t, string(file.Body), "Symbiosis")
}
