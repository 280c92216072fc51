package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

const (
	ContextCaller = "caller"
	ContextClaims = "claims"
)

type TokenValidator interface {
	ValidateToken(token string) (*model.TokenClaims, error)
}

type AccountLookup interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type Authorizer interface {
	Authorize(role model.Role, resource, method string) error
}

type AuthMiddleware struct {
	tokens   TokenValidator
	accounts AccountLookup
	rbac     Authorizer
}

func NewAuthMiddleware(tokens TokenValidator, accounts AccountLookup, rbac Authorizer) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts, rbac: rbac}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate verifies the bearer token and loads the caller. Deactivated
// accounts are rejected even while their token is still valid.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c, false)
	}
}

// OptionalAuthenticate lets anonymous requests through but still loads and
// checks the caller when a bearer token is sent.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c, true)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, optional bool) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		if optional {
			c.Next()
			return
		}
		httputil.RespondWithError(c, apperrors.Unauthorized("not authorized to access this route"))
		return
	}

	claims, err := m.tokens.ValidateToken(token)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	user, err := m.accounts.GetMe(c.Request.Context(), claims.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.Unauthorized("user no longer exists")
		}
		httputil.RespondWithError(c, err)
		return
	}
	if !user.IsActive {
		httputil.RespondWithError(c, apperrors.Unauthorized("account is deactivated"))
		return
	}

	// The stored role wins over the one baked into the token
	caller := model.UserRef{ID: user.ID, Role: user.Role, Email: user.Email}
	c.Set(ContextCaller, caller)
	c.Set(ContextClaims, claims)

	l := log.Ctx(c.Request.Context()).With().
		Str("user_id", caller.ID.String()).
		Str("role", string(caller.Role)).
		Logger()
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
	c.Next()
}

// Authorize checks the caller's role against the policy for resource and
// the request method.
func (m *AuthMiddleware) Authorize(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := Caller(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("not authorized to access this route"))
			return
		}
		if err := m.rbac.Authorize(caller.Role, resource, c.Request.Method); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireRoles admits only the listed roles, regardless of the policy table
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return func(c *gin.Context) {
		caller, ok := Caller(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("not authorized to access this route"))
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden(
			"role "+string(caller.Role)+" is not allowed to access this route", allowed))
	}
}

// Caller returns the authenticated identity set by Authenticate
func Caller(c *gin.Context) (model.UserRef, bool) {
	v, ok := c.Get(ContextCaller)
	if !ok {
		return model.UserRef{}, false
	}
	ref, ok := v.(model.UserRef)
	return ref, ok
}

// Claims returns the validated token claims set by Authenticate
func Claims(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}
