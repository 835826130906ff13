package middleware

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func newSessions() *auth.SessionService {
	return auth.NewSessionService(auth.SessionConfig{SecretKey: "test-secret", Expiration: time.Hour, TokenIssuer: "agencyportal"})
}

func protectedRouter(m *AuthMiddleware, role models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", m.SessionAuth(), m.RoleRequired(role), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "agencyId": actor.AgencyID})
	})
	return r
}

func TestSessionAuthCookieAndBearer(t *testing.T) {
	sessions := newSessions()
	m := NewAuthMiddleware(sessions, "portal_session")
	r := protectedRouter(m, models.RoleAgency)

	agencyID := "agency-1"
	token, _, err := sessions.IssueToken(&models.User{ID: "u1", Name: "Priya", Role: models.RoleAgency, AgencyID: &agencyID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","agencyId":"agency-1"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAuthRejects(t *testing.T) {
	sessions := newSessions()
	m := NewAuthMiddleware(sessions, "portal_session")
	r := protectedRouter(m, models.RoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: "garbage"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)

	token, _, err := sessions.IssueToken(&models.User{ID: "u2", Role: models.RoleAgency})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "agency session on an admin route")
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewResourceNotFoundError("application not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.NewCustomError(apperrors.ErrAccountDisabled, "pending approval"), http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{apperrors.NewForbiddenError("admins only"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, apperrors.ErrCourseCollegeMismatch), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrApplicationLocked, http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.NewConflictError("already reviewed"), http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodePayloadTooLarge},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleAPIErrorMessages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, fmt.Errorf("%w: commission rate must be between 0 and 100", apperrors.ErrValidationFailed))
	assert.Equal(t, "commission rate must be between 0 and 100", decodeError(t, w).Error.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, fmt.Errorf("error getting user: %w", errors.New("connection refused")))
	assert.Equal(t, "Internal server error", decodeError(t, w).Error.Message)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf strings.Builder
	r := gin.New()
	r.Use(RequestID(), AccessLog(zerolog.New(&buf)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	rid := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), rid)
	assert.Contains(t, buf.String(), `"status":200`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSAllowsCredentials(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestBindJSONAndParams(t *testing.T) {
	r := gin.New()
	r.POST("/login/:id", func(c *gin.Context) {
		if _, ok := UUIDParam(c, "id"); !ok {
			return
		}
		req, ok := BindJSON[dto.LoginRequest](c)
		if !ok {
			return
		}
		c.String(http.StatusOK, req.Email)
	})

	const id = "6f1c1f2e-8f1e-4c55-a0d4-8a1f6f0c2b11"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+id, strings.NewReader(`{"email":"a@b.co","password":"x"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@b.co", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+id, strings.NewReader(`{"email":"nope"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/42", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decodeError(t, w).Error.Field)
}

func TestOptionalUUIDQuery(t *testing.T) {
	r := gin.New()
	r.GET("/applications", func(c *gin.Context) {
		id, ok := OptionalUUIDQuery(c, "agencyId")
		if !ok {
			return
		}
		c.String(http.StatusOK, id)
	})

	const id = "6f1c1f2e-8f1e-4c55-a0d4-8a1f6f0c2b11"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/applications", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/applications?agencyId="+id, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/applications?agencyId=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, body.Error.Code)
	assert.Equal(t, "agencyId", body.Error.Field)
}

func TestUploadBodyLimit(t *testing.T) {
	assert.Zero(t, UploadBodyLimit(0))
	assert.Greater(t, UploadBodyLimit(3<<20), int64(base64.StdEncoding.EncodedLen(3<<20)))
}

// countingReader records how much of a request body was consumed
type countingReader struct {
	r    io.Reader
	read int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}

type uploadBody struct {
	Data string `json:"data" binding:"required"`
}

func TestBodyLimit(t *testing.T) {
	const limit = 1024
	r := gin.New()
	r.POST("/upload", BodyLimit(limit), func(c *gin.Context) {
		req, ok := BindJSON[uploadBody](c)
		if !ok {
			return
		}
		c.String(http.StatusOK, "%d", len(req.Data))
	})
	large := `{"data":"` + strings.Repeat("A", 64<<10) + `"}`

	t.Run("declared length over the limit", func(t *testing.T) {
		body := &countingReader{r: strings.NewReader(large)}
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.ContentLength = int64(len(large))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrorCodePayloadTooLarge, decodeError(t, w).Error.Code)
		assert.Zero(t, body.read)
	})

	t.Run("streamed body over the limit", func(t *testing.T) {
		body := &countingReader{r: strings.NewReader(large)}
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.ContentLength = -1
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrorCodePayloadTooLarge, decodeError(t, w).Error.Code)
		assert.LessOrEqual(t, body.read, int64(limit+1))
	})

	t.Run("within the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"data":"abc"}`)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Body.String())
	})
}
