package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/repositories/memory"
	"github.com/yigit/agencyportal/internal/pkg/auth"
	"github.com/yigit/agencyportal/internal/pkg/filestorage"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*realtime.Event
}

func (p *recordingPublisher) Publish(e *realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type sentMail struct {
	kind string
	to   string
	args []string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) record(kind, to string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, to: to, args: args})
	return nil
}

func (m *recordingMailer) SendApplicationStatusEmail(toEmail, toName, studentName, status, remarks string) error {
	return m.record("application_status", toEmail, studentName, status, remarks)
}

func (m *recordingMailer) SendAccountActivatedEmail(toEmail, toName string) error {
	return m.record("account_activated", toEmail, toName)
}

func (m *recordingMailer) SendOfflinePaymentReviewedEmail(toEmail, toName, reference, status, remarks string) error {
	return m.record("offline_payment_reviewed", toEmail, reference, status, remarks)
}

type fixture struct {
	ctx    context.Context
	repos  *repositories.Repositories
	svc    *Services
	events *recordingPublisher
	mailer *recordingMailer
	admin  Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth.BcryptCost = bcrypt.MinCost

	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		ctx:    context.Background(),
		repos:  memory.NewRepositories(memory.Open()),
		events: &recordingPublisher{},
		mailer: &recordingMailer{},
		admin:  Actor{UserID: "admin-1", Name: "Admin", Role: models.RoleAdmin},
	}
	f.svc = NewServices(Deps{
		Repos: f.repos,
		Sessions: auth.NewSessionService(auth.SessionConfig{
			SecretKey:   "test-secret",
			Expiration:  time.Hour,
			TokenIssuer: "test",
		}),
		Events:  f.events,
		Mailer:  f.mailer,
		Storage: storage,
		Logger:  zerolog.Nop(),
		Options: Options{DefaultCommissionRate: 10, Currency: "INR", MaxUploadBytes: 1024},
	})
	return f
}

// agency creates an active agency with the given rate and returns an actor for it
func (f *fixture) agency(t *testing.T, name string, rate float64) (*models.Agency, Actor) {
	t.Helper()
	a := &models.Agency{Name: name, Email: name + "@example.com", CommissionRate: rate, Status: models.StatusActive}
	require.NoError(t, f.repos.Agencies.Create(f.ctx, a))
	return a, Actor{UserID: "user-" + a.ID, Name: name, Role: models.RoleAgency, AgencyID: a.ID}
}

func (f *fixture) catalog(t *testing.T, fee float64) (*models.College, *models.Course) {
	t.Helper()
	college := &models.College{Name: "Symbiosis", Status: models.StatusActive}
	require.NoError(t, f.svc.Colleges.CreateCollege(f.ctx, college))
	course := &models.Course{CollegeID: college.ID, Name: "B.Tech CSE", Fee: fee}
	require.NoError(t, f.svc.Courses.CreateCourse(f.ctx, course))
	return college, course
}

func applicationRequest(college *models.College, course *models.Course, student string) *dto.ApplicationRequest {
	return &dto.ApplicationRequest{
		StudentName:  student,
		StudentEmail: "student@example.com",
		CollegeID:    college.ID,
		CourseID:     course.ID,
	}
}

func (f *fixture) application(t *testing.T, actor Actor, college *models.College, course *models.Course, student string) *models.Application {
	t.Helper()
	app, err := f.svc.Applications.CreateApplication(f.ctx, actor, applicationRequest(college, course, student))
	require.NoError(t, err)
	return app
}

// multipartFile builds a parsed upload the way gin hands it to controllers
func multipartFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}
