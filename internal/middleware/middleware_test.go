package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]*model.TokenClaims

func (f fakeTokens) ValidateToken(token string) (*model.TokenClaims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, apperrors.Unauthorized("not authorized to access this route")
}

type fakeAccounts map[uuid.UUID]*model.User

func (f fakeAccounts) GetMe(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user")
}

func do(r http.Handler, method, path string, header map[string]string) (*httptest.ResponseRecorder, httputil.Response) {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp httputil.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func authRouter(users ...*model.User) *gin.Engine {
	tokens := fakeTokens{}
	accounts := fakeAccounts{}
	for _, u := range users {
		tokens["tok-"+u.Name] = &model.TokenClaims{UserID: u.ID, Role: u.Role, Email: u.Email}
		accounts[u.ID] = u
	}
	m := NewAuthMiddleware(tokens, accounts, rbac.NewService(nil))

	r := gin.New()
	api := r.Group("/api", m.Authenticate())
	api.GET("/wards", m.Authorize(rbac.ResourceWards), func(c *gin.Context) {
		caller, _ := Caller(c)
		httputil.RespondWithSuccess(c, caller.Role)
	})
	api.POST("/wards", m.Authorize(rbac.ResourceWards), func(c *gin.Context) {
		httputil.RespondWithCreated(c, nil)
	})
	api.GET("/admin-only", RequireRoles(model.RoleAdmin), func(c *gin.Context) {
		httputil.RespondWithMessage(c, "ok")
	})
	r.POST("/register", m.OptionalAuthenticate(), func(c *gin.Context) {
		role := "anonymous"
		if caller, ok := Caller(c); ok {
			role = string(caller.Role)
		}
		httputil.RespondWithSuccess(c, role)
	})
	return r
}

func newUser(name string, role model.Role, active bool) *model.User {
	u := &model.User{Name: name, Role: role, IsActive: active}
	u.ID = uuid.New()
	return u
}

func TestAuthenticate(t *testing.T) {
	nurse := newUser("nurse", model.RoleNurse, true)
	gone := newUser("gone", model.RoleNurse, false)
	r := authRouter(nurse, gone)

	w, resp := do(r, http.MethodGet, "/api/wards", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)

	w, _ = do(r, http.MethodGet, "/api/wards", map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(r, http.MethodGet, "/api/wards", map[string]string{"Authorization": "Bearer tok-gone"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = do(r, http.MethodGet, "/api/wards", map[string]string{"Authorization": "Bearer tok-nurse"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nurse", resp.Data)
}

func TestOptionalAuthenticate(t *testing.T) {
	admin := newUser("admin", model.RoleAdmin, true)
	gone := newUser("gone", model.RoleAdmin, false)
	r := authRouter(admin, gone)

	w, resp := do(r, http.MethodPost, "/register", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", resp.Data)

	w, resp = do(r, http.MethodPost, "/register", map[string]string{"Authorization": "Bearer tok-admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Admin", resp.Data)

	// A token that is sent must still be valid
	w, _ = do(r, http.MethodPost, "/register", map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(r, http.MethodPost, "/register", map[string]string{"Authorization": "Bearer tok-gone"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorizeListsAllowedMethods(t *testing.T) {
	doctor := newUser("doctor", model.RoleDoctor, true)
	r := authRouter(doctor)

	w, resp := do(r, http.MethodPost, "/api/wards", map[string]string{"Authorization": "Bearer tok-doctor"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, []string{http.MethodGet}, resp.Allowed)

	w, _ = do(r, http.MethodGet, "/api/admin-only", map[string]string{"Authorization": "Bearer tok-doctor"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { httputil.RespondWithMessage(c, c.GetString(ContextRequestID)) })

	w, resp := do(r, http.MethodGet, "/x", map[string]string{HeaderXRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", resp.Message)

	w, _ = do(r, http.MethodGet, "/x", nil)
	_, err := uuid.Parse(w.Header().Get(HeaderXRequestID))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("nil map") })

	w, resp := do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", resp.Message)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2, IdleTTL: time.Minute}).RateLimit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w, _ := do(r, http.MethodGet, "/x", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, resp := do(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 10 * time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/db", func(c *gin.Context) {
		<-c.Request.Context().Done()
		httputil.RespondWithError(c, apperrors.Internal(c.Request.Context().Err()))
	})

	w, _ := do(r, http.MethodGet, "/slow", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w, _ = do(r, http.MethodGet, "/db", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSConfig{AllowOrigins: []string{"https://app.medilink.test"}, AllowMethods: []string{"GET"}, AllowCredentials: true, MaxAge: 600}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w, _ := do(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://app.medilink.test"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.medilink.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	w, _ = do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.test"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 16, MaxHeaderSize: 1 << 10}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 64)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
