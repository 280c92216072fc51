package billing

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
	Create(ctx context.Context, req *model.CreateBillRequest) (*model.Bill, error)
	Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, caller model.UserRef, filter *model.BillFilter) ([]*model.Bill, int, error)
	RecordPayment(ctx context.Context, id uuid.UUID, req *model.RecordPaymentRequest) (*model.Bill, error)
	SubmitClaim(ctx context.Context, id uuid.UUID, req *model.InsuranceClaimRequest) (*model.Bill, error)
	ResolveClaim(ctx context.Context, id uuid.UUID, req *model.UpdateClaimRequest) (*model.Bill, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	billing := r.Group("/billing", auth.Authorize(rbac.ResourceBilling), middleware.Audit(rbac.ResourceBilling))
	{
		billing.POST("", h.CreateBill)
		billing.GET("", h.ListBills)
		billing.GET("/:id", h.GetBill)
		billing.POST("/:id/payments", h.RecordPayment)
		billing.POST("/:id/insurance-claim", h.SubmitClaim)
		billing.PUT("/:id/insurance-claim", middleware.RequireRoles(model.RoleAdmin), h.ResolveClaim)
	}
}

func (h *Handler) CreateBill(c *gin.Context) {
	var req model.CreateBillRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, bill)
}

func (h *Handler) GetBill(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	bill, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bill)
}

func (h *Handler) ListBills(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	var filter model.BillFilter
	if !handler.BindQuery(c, &filter.Pagination) {
		return
	}
	if filter.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}
	if filter.From, ok = handler.QueryDate(c, "from"); !ok {
		return
	}
	if filter.To, ok = handler.QueryDate(c, "to"); !ok {
		return
	}
	filter.PaymentStatus = model.PaymentStatus(c.Query("payment_status"))

	bills, total, err := h.service.List(c.Request.Context(), caller, &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, bills, len(bills), filter.Pagination, total)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.RecordPaymentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.RecordPayment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bill)
}

func (h *Handler) SubmitClaim(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.InsuranceClaimRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.SubmitClaim(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bill)
}

func (h *Handler) ResolveClaim(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateClaimRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.ResolveClaim(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bill)
}
