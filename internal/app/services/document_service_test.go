package services

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

func TestDecodeBase64Payload(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantMime string
		wantErr  bool
	}{
		{name: "plain", input: base64.StdEncoding.EncodeToString([]byte("hello")), want: "hello"},
		{name: "data url", input: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF")), want: "%PDF", wantMime: "application/pdf"},
		{name: "data url with parameters", input: "data:application/pdf;name=a.pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF")), want: "%PDF", wantMime: "application/pdf"},
		{name: "data url without media type", input: "data:;base64," + base64.StdEncoding.EncodeToString([]byte("hi")), want: "hi"},
		{name: "unpadded", input: base64.RawStdEncoding.EncodeToString([]byte("hello")), want: "hello"},
		{name: "empty", input: "  ", wantErr: true},
		{name: "not base64", input: "***", wantErr: true},
		{name: "data url without base64", input: "data:text/plain,hello", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, mime, err := DecodeBase64Payload(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(raw))
			assert.Equal(t, tt.wantMime, mime)
		})
	}
}

func TestUploadDocumentFlagsPayment(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")

	doc, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name:     "10th Marksheet",
		Type:     "10th Marksheet",
		FileName: "marks.pdf",
		Data:     "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 body")),
	})
	require.NoError(t, err)
	assert.Equal(t, "marksheet_10th", doc.Type)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.EqualValues(t, len("%PDF-1.4 body"), doc.Size)
	assert.Empty(t, doc.Data)

	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)
	flag := p.Documents["marksheet_10th"]
	assert.True(t, flag.Uploaded)
	assert.NotNil(t, flag.UploadedAt)

	assert.Contains(t, f.events.types(), realtime.EventDocumentUploaded)

	stored, content, err := f.svc.Documents.GetDocumentFile(f.ctx, actor, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(content))
	assert.Equal(t, "marks.pdf", stored.FileName)
}

func TestUploadDocumentWithoutPaymentStillSucceeds(t *testing.T) {
	f := newFixture(t)
	agency, actor := f.agency(t, "globaledu", 10)
	app := f.orphan(t, agency.ID, 1000)

	_, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name: "Passport", FileName: "p.pdf", Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	assert.NoError(t, err)
}

func TestUploadDocumentTooLarge(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")

	big := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 2048)))
	_, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name: "Passport", FileName: "p.pdf", Data: big,
	})
	assert.ErrorIs(t, err, apperrors.ErrPayloadTooLarge)
}

func TestDocumentsScopedToAgency(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	_, other := f.agency(t, "rival", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")

	doc, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name: "Passport", FileName: "p.pdf", Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)

	_, err = f.svc.Documents.UploadDocument(f.ctx, other, app.ID, &dto.UploadDocumentRequest{
		Name: "Passport", FileName: "p.pdf", Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.svc.Documents.GetDocument(f.ctx, other, doc.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	docs, err := f.svc.Documents.ListDocuments(f.ctx, other, repositories.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestApprovedDocumentCannotBeDeletedByAgency(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	doc, err := f.svc.Documents.UploadDocument(f.ctx, actor, app.ID, &dto.UploadDocumentRequest{
		Name: "Passport", FileName: "p.pdf", Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)

	reviewed, err := f.svc.Documents.UpdateDocumentStatus(f.ctx, doc.ID.Hex(), &dto.UpdateDocumentStatusRequest{
		Status: models.DocumentApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentApproved, reviewed.Status)

	err = f.svc.Documents.DeleteDocument(f.ctx, actor, doc.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.NoError(t, f.svc.Documents.DeleteDocument(f.ctx, f.admin, doc.ID.Hex()))
}
