package dashboard

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

type Service interface {
	ForRole(ctx context.Context, caller model.UserRef) (interface{}, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	dashboards := r.Group("/dashboards", auth.Authorize(rbac.ResourceDashboards))
	{
		dashboards.GET("", h.Dashboard)
		for _, role := range model.Roles {
			dashboards.GET("/"+roleSlug(role), middleware.RequireRoles(role), h.Dashboard)
		}
	}
}

func roleSlug(r model.Role) string {
	return strings.ToLower(string(r))
}

// Dashboard answers with the view belonging to the caller's role
func (h *Handler) Dashboard(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	view, err := h.service.ForRole(c.Request.Context(), caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}
