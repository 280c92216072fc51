package report

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

type Service interface {
	Revenue(ctx context.Context, from, to *model.Date) (*model.RevenueReport, error)
	Appointments(ctx context.Context, from, to *model.Date) (*model.AppointmentReport, error)
	Occupancy(ctx context.Context) (*model.OccupancyReport, error)
	Inventory(ctx context.Context) (*model.InventoryReport, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	reports := r.Group("/reports", auth.Authorize(rbac.ResourceReports))
	{
		adminOnly := middleware.RequireRoles(model.RoleAdmin)
		reports.GET("/revenue", adminOnly, h.Revenue)
		reports.GET("/appointments", adminOnly, h.Appointments)
		reports.GET("/occupancy", adminOnly, h.Occupancy)
		reports.GET("/inventory", middleware.RequireRoles(model.RoleAdmin, model.RolePharmacist), h.Inventory)
	}
}

func dateRange(c *gin.Context) (from, to *model.Date, ok bool) {
	if from, ok = handler.QueryDate(c, "from"); !ok {
		return nil, nil, false
	}
	if to, ok = handler.QueryDate(c, "to"); !ok {
		return nil, nil, false
	}
	return from, to, true
}

func (h *Handler) Revenue(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.service.Revenue(c.Request.Context(), from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) Appointments(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.service.Appointments(c.Request.Context(), from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) Occupancy(c *gin.Context) {
	report, err := h.service.Occupancy(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) Inventory(c *gin.Context) {
	report, err := h.service.Inventory(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}
