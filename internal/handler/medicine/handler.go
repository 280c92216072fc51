package medicine

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateMedicineRequest) (*model.Medicine, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
	List(ctx context.Context, filter *model.MedicineFilter) ([]*model.Medicine, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicineRequest) (*model.Medicine, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, req *model.UpdateStockRequest) (*model.Medicine, error)
	LowStock(ctx context.Context) ([]*model.Medicine, error)
	Expiring(ctx context.Context, months int) ([]*model.Medicine, error)
	Expired(ctx context.Context) ([]*model.Medicine, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	medicines := r.Group("/medicines", auth.Authorize(rbac.ResourceMedicines), middleware.Audit(rbac.ResourceMedicines))
	{
		medicines.POST("", h.CreateMedicine)
		medicines.GET("", h.ListMedicines)
		medicines.GET("/low-stock", h.LowStock)
		medicines.GET("/expiring", h.Expiring)
		medicines.GET("/expired", h.Expired)
		medicines.GET("/:id", h.GetMedicine)
		medicines.PUT("/:id", h.UpdateMedicine)
		medicines.PATCH("/:id/stock", h.UpdateStock)
		medicines.DELETE("/:id", h.DeleteMedicine)
	}
}

func (h *Handler) CreateMedicine(c *gin.Context) {
	var req model.CreateMedicineRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	medicine, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, medicine)
}

func (h *Handler) GetMedicine(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	medicine, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medicine)
}

func (h *Handler) ListMedicines(c *gin.Context) {
	var filter model.MedicineFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	medicines, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, medicines, len(medicines), filter.Pagination, total)
}

func (h *Handler) UpdateMedicine(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateMedicineRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	medicine, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medicine)
}

func (h *Handler) DeleteMedicine(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "medicine deleted")
}

func (h *Handler) UpdateStock(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateStockRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	medicine, err := h.service.UpdateStock(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medicine)
}

func (h *Handler) LowStock(c *gin.Context) {
	medicines, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, medicines, len(medicines))
}

func (h *Handler) Expiring(c *gin.Context) {
	// Zero lets the service apply its default window
	months := 0
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.RespondWithError(c, apperrors.Validation("months must be a positive integer"))
			return
		}
		months = n
	}

	medicines, err := h.service.Expiring(c.Request.Context(), months)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, medicines, len(medicines))
}

func (h *Handler) Expired(c *gin.Context) {
	medicines, err := h.service.Expired(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, medicines, len(medicines))
}
