// Package handlertest mounts a resource handler behind the real auth chain
// with in-memory identities, for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/validator"
)

type Registrar interface {
	RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware)
}

// Server is an engine with one active user per role. The bearer token for a
// role is the role name.
type Server struct {
	t      *testing.T
	engine *gin.Engine
	users  map[model.Role]*model.User
}

type directory struct {
	users map[model.Role]*model.User
}

func (d directory) ValidateToken(token string) (*model.TokenClaims, error) {
	u, ok := d.users[model.Role(token)]
	if !ok {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return &model.TokenClaims{UserID: u.ID, Role: u.Role, Email: u.Email}, nil
}

func (d directory) GetMe(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

// New mounts h under /api behind Authenticate, the way the router mounts
// resource handlers.
func New(t *testing.T, h Registrar) *Server {
	t.Helper()
	return mount(t, h, true)
}

// NewPublic mounts h on a bare /api group for handlers that guard their own routes
func NewPublic(t *testing.T, h Registrar) *Server {
	t.Helper()
	return mount(t, h, false)
}

func mount(t *testing.T, h Registrar, protect bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterBinding())

	users := make(map[model.Role]*model.User, len(model.Roles))
	for _, role := range model.Roles {
		u := &model.User{Name: string(role), Email: string(role) + "@medilink.test", Role: role, IsActive: true}
		u.ID = uuid.New()
		users[role] = u
	}
	dir := directory{users: users}
	auth := middleware.NewAuthMiddleware(dir, dir, rbac.NewService(nil))

	engine := gin.New()
	api := engine.Group("/api")
	if protect {
		api.Use(auth.Authenticate())
	}
	h.RegisterRoutes(api, auth)

	return &Server{t: t, engine: engine, users: users}
}

// User returns the identity behind a role's token
func (s *Server) User(role model.Role) model.UserRef {
	u := s.users[role]
	return model.UserRef{ID: u.ID, Role: u.Role, Email: u.Email}
}

// Do sends body as JSON with the role's token. An empty role sends no token.
func (s *Server) Do(role model.Role, method, path string, body interface{}) (*httptest.ResponseRecorder, httputil.Response) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+string(role))
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp httputil.Response
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// Decode re-encodes resp.Data into dst
func Decode(t *testing.T, resp httputil.Response, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}
