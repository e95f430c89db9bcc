package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub/internal/auth"
	"eventhub/internal/clock"
	"eventhub/internal/logger"
	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(auth.TokenConfig{Secret: "s3cret", Issuer: "eventhub", Expiration: 5}, clock.NewSystem())
}

func token(t *testing.T, issuer *auth.TokenIssuer, id int64, role models.Role) string {
	t.Helper()
	raw, _, err := issuer.Issue(&models.User{ID: id, Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return raw
}

func serve(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newIssuer()

	var seenID int64
	var ctxID int64
	r := gin.New()
	r.Use(JWTAuth(issuer))
	r.GET("/me", func(c *gin.Context) {
		seenID, _ = UserID(c)
		ctxID, _ = logger.UserIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "garbage").Code)

	other := auth.NewTokenIssuer(auth.TokenConfig{Secret: "other", Issuer: "eventhub"}, clock.NewSystem())
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", token(t, other, 3, models.RoleAdmin)).Code)

	attendee := token(t, issuer, 7, models.RoleAttendee)
	assert.Equal(t, http.StatusOK, serve(r, "/me", attendee).Code)
	assert.Equal(t, int64(7), seenID)
	assert.Equal(t, int64(7), ctxID)

	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", attendee).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/admin", token(t, issuer, 1, models.RoleAdmin)).Code)
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/admin", "").Code)
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var fromCtx string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		fromCtx, _ = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", fromCtx)

	w = serve(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), fromCtx)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var hasDeadline bool
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	serve(r, "/", "")
	assert.True(t, hasDeadline)
}

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, serve(r, "/", "").Code)
}
