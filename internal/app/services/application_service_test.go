package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

func TestCreateApplicationDerivesPayment(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 12.5)
	college, course := f.catalog(t, 250000)

	app := f.application(t, actor, college, course, "Rahul Verma")
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, 250000.0, app.Fee)
	assert.Equal(t, actor.AgencyID, app.AgencyID)
	assert.Equal(t, "B.Tech CSE", app.CourseName)

	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, p.CommissionRate)
	assert.Equal(t, 31250.0, p.CommissionAmount)
	assert.Equal(t, models.PaymentPending, p.PaymentStatus)
	assert.Equal(t, models.LeadApplied, p.LeadStatus)

	assert.Contains(t, f.events.types(), realtime.EventApplicationCreated)
}

func TestCreateApplicationRejectsForeignCourse(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, _ := f.catalog(t, 1000)
	_, otherCourse := f.catalog(t, 2000)

	_, err := f.svc.Applications.CreateApplication(f.ctx, actor, applicationRequest(college, otherCourse, "Rahul"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.ErrorIs(t, err, apperrors.ErrCourseCollegeMismatch)
}

func TestApplicationHiddenFromOtherAgency(t *testing.T) {
	f := newFixture(t)
	_, owner := f.agency(t, "globaledu", 10)
	_, other := f.agency(t, "rival", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, owner, college, course, "Rahul")

	_, err := f.svc.Applications.GetApplication(f.ctx, other, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	err = f.svc.Applications.DeleteApplication(f.ctx, other, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	list, total, err := f.svc.Applications.ListApplications(f.ctx, other, repositories.ApplicationFilter{AgencyID: owner.AgencyID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	got, err := f.svc.Applications.GetApplication(f.ctx, f.admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
}

func TestAgencyCannotEditDecidedApplication(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")

	_, err := f.svc.Applications.UpdateApplicationStatus(f.ctx, app.ID, &dto.UpdateApplicationStatusRequest{Status: models.ApplicationProcessing})
	require.NoError(t, err)

	_, err = f.svc.Applications.UpdateApplication(f.ctx, actor, app.ID, applicationRequest(college, course, "Rahul V"))
	assert.ErrorIs(t, err, apperrors.ErrApplicationLocked)

	err = f.svc.Applications.DeleteApplication(f.ctx, actor, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationLocked)
}

func TestUpdateApplicationSyncsPayment(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	pricier := &models.Course{CollegeID: college.ID, Name: "MBA", Fee: 5000}
	require.NoError(t, f.svc.Courses.CreateCourse(f.ctx, pricier))
	app := f.application(t, actor, college, course, "Rahul")

	updated, err := f.svc.Applications.UpdateApplication(f.ctx, actor, app.ID, applicationRequest(college, pricier, "Rahul Verma"))
	require.NoError(t, err)
	assert.Equal(t, 5000.0, updated.Fee)

	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rahul Verma", p.StudentName)
	assert.Equal(t, pricier.ID, p.CourseID)
	assert.Equal(t, 500.0, p.CommissionAmount)
}

func TestApproveApplicationApprovesDocuments(t *testing.T) {
	f := newFixture(t)
	agency, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")

	for _, name := range []string{"10th Marksheet", "Passport"} {
		_, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
			Name: name, FileName: "f.pdf", Data: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		})
		require.NoError(t, err)
	}

	decided, err := f.svc.Applications.UpdateApplicationStatus(f.ctx, app.ID, &dto.UpdateApplicationStatusRequest{
		Status: models.ApplicationApproved, Remarks: "all good",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, decided.Status)

	docs, err := f.repos.Documents.List(f.ctx, repositories.DocumentFilter{ApplicationID: app.ID})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, models.DocumentApproved, d.Status)
	}

	assert.Contains(t, f.events.types(), realtime.EventApplicationStatus)
	require.NotEmpty(t, f.mailer.sent)
	last := f.mailer.sent[len(f.mailer.sent)-1]
	assert.Equal(t, "application_status", last.kind)
	assert.Equal(t, agency.Email, last.to)
}

func TestRejectApplicationRejectsDocuments(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	_, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name: "Photo", FileName: "p.png", Data: base64.StdEncoding.EncodeToString([]byte("img")),
	})
	require.NoError(t, err)

	_, err = f.svc.Applications.UpdateApplicationStatus(f.ctx, app.ID, &dto.UpdateApplicationStatusRequest{Status: models.ApplicationRejected})
	require.NoError(t, err)

	docs, err := f.repos.Documents.List(f.ctx, repositories.DocumentFilter{ApplicationID: app.ID})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.DocumentRejected, docs[0].Status)
}

func TestDeleteApplicationRemovesPaymentAndDocuments(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	_, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name: "Passport", FileName: "p.pdf", Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Applications.DeleteApplication(f.ctx, actor, app.ID))

	_, err = f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	docs, err := f.repos.Documents.List(f.ctx, repositories.DocumentFilter{ApplicationID: app.ID})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestApplicationSummaryPDF(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")

	out, name, err := f.svc.Applications.SummaryPDF(f.ctx, actor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "application-"+app.ID+".pdf", name)
	assert.NotEmpty(t, out)
}
