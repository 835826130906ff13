package controllers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/agencyportal/internal/app/controllers"
	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/repositories/memory"
	"github.com/yigit/agencyportal/internal/app/routes"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
	"github.com/yigit/agencyportal/internal/pkg/auth"
	"github.com/yigit/agencyportal/internal/pkg/filestorage"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
	"github.com/yigit/agencyportal/internal/pkg/validation"
)

const cookieName = "session"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const maxUploadBytes = 1 << 20

type testServer struct {
	router *gin.Engine
	repos  *repositories.Repositories
	svc    *services.Services
	hub    *realtime.Hub
}

func newTestServer(t *testing.T, checks map[string]controllers.HealthCheck) *testServer {
	t.Helper()

	repos := memory.NewRepositories(memory.Open())
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	sessions := auth.NewSessionService(auth.SessionConfig{
		SecretKey:   "controller-test-secret",
		Expiration:  time.Hour,
		TokenIssuer: "test",
	})
	svc := services.NewServices(services.Deps{
		Repos:    repos,
		Sessions: sessions,
		Storage:  storage,
		Logger:   zerolog.Nop(),
		Options:  services.Options{DefaultCommissionRate: 10, Currency: "INR", MaxUploadBytes: maxUploadBytes},
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := realtime.NewHub(8, zerolog.Nop())
	go hub.Run(ctx)

	ctrls := controllers.NewControllers(svc, controllers.Options{
		Cookie:         controllers.CookieConfig{Name: cookieName},
		Hub:            hub,
		Upgrader:       realtime.NewUpgrader(nil),
		Heartbeat:      50 * time.Millisecond,
		HealthChecks:   checks,
		MaxUploadBytes: maxUploadBytes,
	}, zerolog.Nop())

	router := gin.New()
	routes.SetupRouter(router, ctrls, middleware.NewAuthMiddleware(sessions, cookieName))
	return &testServer{router: router, repos: repos, svc: svc, hub: hub}
}

func (s *testServer) user(t *testing.T, email, password string, role models.Role, agencyID *string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, s.repos.Users.Create(context.Background(), &models.User{
		Name:     "User " + email,
		Email:    email,
		Password: hash,
		Role:     role,
		Status:   models.StatusActive,
		AgencyID: agencyID,
	}))
}

// agency creates an active agency with one user and returns that user's cookie
func (s *testServer) agency(t *testing.T, name string) (*models.Agency, *http.Cookie) {
	t.Helper()
	a := &models.Agency{Name: name, Email: name + "@example.com", CommissionRate: 10, Status: models.StatusActive}
	require.NoError(t, s.repos.Agencies.Create(context.Background(), a))
	email := name + "-user@example.com"
	s.user(t, email, "password123", models.RoleAgency, &a.ID)
	return a, s.login(t, email, "password123")
}

func (s *testServer) admin(t *testing.T) *http.Cookie {
	t.Helper()
	s.user(t, "admin@example.com", "password123", models.RoleAdmin, nil)
	return s.login(t, "admin@example.com", "password123")
}

func (s *testServer) catalog(t *testing.T) (*models.College, *models.Course) {
	t.Helper()
	ctx := context.Background()
	college := &models.College{Name: "Christ University", Status: models.StatusActive}
	require.NoError(t, s.svc.Colleges.CreateCollege(ctx, college))
	course := &models.Course{CollegeID: college.ID, Name: "BBA", Fee: 200000}
	require.NoError(t, s.svc.Courses.CreateCourse(ctx, course))
	return college, course
}

func (s *testServer) createApplication(t *testing.T, cookie *http.Cookie, college *models.College, course *models.Course) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/agency/applications", gin.H{
		"studentName":  "Ravi Kumar",
		"studentEmail": "ravi@example.com",
		"collegeId":    college.ID,
		"courseId":     course.ID,
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataID(t, rec)
}

func (s *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func dataID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var obj struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &obj))
	require.NotEmpty(t, obj.ID)
	return obj.ID
}

func TestPing(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
}

func TestHealthReportsFailingDependency(t *testing.T) {
	s := newTestServer(t, map[string]controllers.HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"mongo":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec := s.do(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Equal(t, "connection refused", body.Checks["mongo"])
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.admin(t)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Greater(t, cookie.MaxAge, 0)

	rec := s.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &session))
	assert.Equal(t, "admin@example.com", session.User.Email)
	assert.Equal(t, "admin", session.User.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t, nil)
	s.user(t, "admin@example.com", "password123", models.RoleAdmin, nil)

	rec := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "admin@example.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginValidatesBody(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestLogoutExpiresCookie(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestRoleGatedRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	adminCookie := s.admin(t)
	_, agencyCookie := s.agency(t, "northstar")

	tests := []struct {
		name   string
		path   string
		cookie *http.Cookie
		want   int
	}{
		{"anonymous admin route", "/api/admin/users", nil, http.StatusUnauthorized},
		{"agency on admin route", "/api/admin/users", agencyCookie, http.StatusUnauthorized},
		{"admin on agency route", "/api/agency/profile", adminCookie, http.StatusUnauthorized},
		{"admin on admin route", "/api/admin/users", adminCookie, http.StatusOK},
		{"agency on agency route", "/api/agency/profile", agencyCookie, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil, tt.cookie)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestApplicationsAreScopedToTheirAgency(t *testing.T) {
	s := newTestServer(t, nil)
	adminCookie := s.admin(t)
	_, ownerCookie := s.agency(t, "northstar")
	_, otherCookie := s.agency(t, "southgate")
	college, course := s.catalog(t)

	appID := s.createApplication(t, ownerCookie, college, course)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/agency/applications/"+appID, nil, ownerCookie).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/applications/"+appID, nil, adminCookie).Code)

	rec := s.do(t, http.MethodGet, "/api/agency/applications/"+appID, nil, otherCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/agency/applications/not-a-uuid", nil, ownerCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentUploadAndDownload(t *testing.T) {
	s := newTestServer(t, nil)
	_, cookie := s.agency(t, "northstar")
	college, course := s.catalog(t)
	appID := s.createApplication(t, cookie, college, course)

	content := []byte("%PDF-1.4 marksheet")
	rec := s.do(t, http.MethodPost, "/api/agency/applications/"+appID+"/documents", gin.H{
		"name":     "10th Marksheet",
		"fileName": "marksheet.pdf",
		"mimeType": "application/pdf",
		"data":     base64.StdEncoding.EncodeToString(content),
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	docID := dataID(t, rec)

	rec = s.do(t, http.MethodGet, "/api/agency/documents/"+docID+"/download", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="marksheet.pdf"`, rec.Header().Get("Content-Disposition"))

	rec = s.do(t, http.MethodGet, "/api/agency/documents/12345/download", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentUploadRejectsOversizedBody(t *testing.T) {
	s := newTestServer(t, nil)
	_, cookie := s.agency(t, "northstar")
	college, course := s.catalog(t)
	appID := s.createApplication(t, cookie, college, course)

	rec := s.do(t, http.MethodPost, "/api/agency/applications/"+appID+"/documents", gin.H{
		"name":     "Passport",
		"fileName": "passport.pdf",
		"data":     base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{'x'}, 2*maxUploadBytes)),
	}, cookie)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "VAL_003", decode(t, rec).Error.Code)

	docs, err := s.repos.Documents.List(context.Background(), repositories.DocumentFilter{ApplicationID: appID})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestOfflinePaymentRejectsOversizedProof(t *testing.T) {
	s := newTestServer(t, nil)
	_, cookie := s.agency(t, "northstar")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("amount", "5000"))
	require.NoError(t, form.WriteField("reference", "UTR123"))
	require.NoError(t, form.WriteField("paymentDate", "2025-06-01"))
	part, err := form.CreateFormFile(controllers.ProofFormField, "proof.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{'x'}, 2*maxUploadBytes))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/agency/offline-payments", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestListFiltersRejectMalformedIDs(t *testing.T) {
	s := newTestServer(t, nil)
	adminCookie := s.admin(t)
	_, agencyCookie := s.agency(t, "northstar")

	tests := []struct {
		path   string
		cookie *http.Cookie
	}{
		{"/api/agency/documents?applicationId=x", agencyCookie},
		{"/api/admin/documents?agencyId=42", adminCookie},
		{"/api/admin/applications?collegeId=nope", adminCookie},
		{"/api/agency/applications?courseId=1", agencyCookie},
		{"/api/admin/payments?agencyId=abc", adminCookie},
		{"/api/admin/offline-payments?agencyId=abc", adminCookie},
		{"/api/admin/users?agencyId=abc", adminCookie},
		{"/api/agency/courses?collegeId=abc", agencyCookie},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil, tt.cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "VAL_001", decode(t, rec).Error.Code)
		})
	}

	rec := s.do(t, http.MethodGet, "/api/agency/documents?applicationId=6f1c1f2e-8f1e-4c55-a0d4-8a1f6f0c2b11", nil, agencyCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportExport(t *testing.T) {
	s := newTestServer(t, nil)
	adminCookie := s.admin(t)
	_, agencyCookie := s.agency(t, "northstar")

	rec := s.do(t, http.MethodGet, "/api/admin/reports/applications", nil, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, rec.Body.String(), "Student")

	rec = s.do(t, http.MethodGet, "/api/admin/reports/applications?format=xml", nil, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/reports/unknown", nil, adminCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/agency/reports/agencies", nil, agencyCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReportExportValidatesDates(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.admin(t)

	for _, query := range []string{"from=2025-13-01", "to=june", "from=01/06/2025"} {
		rec := s.do(t, http.MethodGet, "/api/admin/reports/payments?"+query, nil, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}

	rec := s.do(t, http.MethodGet, "/api/admin/reports/payments?from=2025-01-01&to=2025-12-31", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSyncPayments(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.admin(t)

	rec := s.do(t, http.MethodPost, "/api/admin/payments/sync", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var result services.SyncResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Zero(t, result.Failed)
}
