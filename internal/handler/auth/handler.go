package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

type Service interface {
	Register(ctx context.Context, caller *model.UserRef, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Logout(claims *model.TokenClaims)
	GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) (*model.AuthResponse, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req *model.UpdatePasswordRequest) (*model.AuthResponse, error)
}

// PermissionSource exposes the role table so clients can shape their menus
type PermissionSource interface {
	Permissions(role model.Role) rbac.Policy
}

type Handler struct {
	svc         Service
	permissions PermissionSource
}

func NewHandler(svc Service, permissions PermissionSource) *Handler {
	return &Handler{svc: svc, permissions: permissions}
}

// RegisterRoutes mounts the public endpoints on r and guards the rest with Authenticate
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := r.Group("/auth")
	{
		group.POST("/register", auth.OptionalAuthenticate(), h.Register)
		group.POST("/login", h.Login)
		group.POST("/forgot-password", h.ForgotPassword)
		group.PUT("/reset-password", h.ResetPassword)

		protected := group.Group("", auth.Authenticate())
		protected.GET("/me", h.GetMe)
		protected.PUT("/me", h.UpdateProfile)
		protected.PUT("/password", h.UpdatePassword)
		protected.POST("/logout", h.Logout)
		protected.GET("/permissions", h.Permissions)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	var caller *model.UserRef
	if ref, ok := middleware.Caller(c); ok {
		caller = &ref
	}

	resp, err := h.svc.Register(c.Request.Context(), caller, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := middleware.Claims(c); ok {
		h.svc.Logout(claims)
	}
	httputil.RespondWithMessage(c, "logged out successfully")
}

func (h *Handler) GetMe(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	user, err := h.svc.GetMe(c.Request.Context(), caller.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), caller.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.UpdatePasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.UpdatePassword(c.Request.Context(), caller.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	// The old token stays valid until expiry unless revoked here
	if claims, ok := middleware.Claims(c); ok {
		h.svc.Logout(claims)
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "if the address is registered, a reset link has been sent")
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Permissions(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"role":        caller.Role,
		"permissions": h.permissions.Permissions(caller.Role),
	})
}
