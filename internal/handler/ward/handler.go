package ward

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
	Create(ctx context.Context, req *model.CreateWardRequest) (*model.Ward, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Ward, error)
	List(ctx context.Context, filter *model.WardFilter) ([]*model.Ward, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateWardRequest) (*model.Ward, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AllocateBed(ctx context.Context, wardID uuid.UUID, req *model.AllocateBedRequest) (*model.BedAllocation, error)
	ReleaseBed(ctx context.Context, wardID uuid.UUID, bedNumber string) (*model.Ward, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	wards := r.Group("/wards", auth.Authorize(rbac.ResourceWards), middleware.Audit(rbac.ResourceWards))
	{
		wards.POST("", middleware.RequireRoles(model.RoleAdmin), h.CreateWard)
		wards.GET("", h.ListWards)
		wards.GET("/:id", h.GetWard)
		wards.PUT("/:id", middleware.RequireRoles(model.RoleAdmin), h.UpdateWard)
		wards.DELETE("/:id", h.DeleteWard)
		wards.POST("/:id/allocate-bed", h.AllocateBed)
		wards.POST("/:id/release-bed", h.ReleaseBed)
	}
}

func (h *Handler) CreateWard(c *gin.Context) {
	var req model.CreateWardRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	ward, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, ward)
}

func (h *Handler) GetWard(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	ward, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ward)
}

func (h *Handler) ListWards(c *gin.Context) {
	var filter model.WardFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	wards, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, wards, len(wards), filter.Pagination, total)
}

func (h *Handler) UpdateWard(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateWardRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	ward, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ward)
}

func (h *Handler) DeleteWard(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "ward deleted")
}

func (h *Handler) AllocateBed(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AllocateBedRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	allocation, err := h.service.AllocateBed(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, allocation)
}

func (h *Handler) ReleaseBed(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.ReleaseBedRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	ward, err := h.service.ReleaseBed(c.Request.Context(), id, req.BedNumber)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ward)
}
