package prescription

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
	Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Prescription, error)
	List(ctx context.Context, caller model.UserRef, filter *model.PrescriptionFilter) ([]*model.Prescription, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error)
	UpdateStatus(ctx context.Context, caller model.UserRef, id uuid.UUID, status model.PrescriptionStatus) (*model.Prescription, error)
	Refill(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Prescription, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Prescription, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	prescriptions := r.Group("/prescriptions", auth.Authorize(rbac.ResourcePrescriptions), middleware.Audit(rbac.ResourcePrescriptions))
	{
		prescriptions.POST("", h.CreatePrescription)
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)
		prescriptions.PUT("/:id", middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor), h.UpdatePrescription)
		prescriptions.PATCH("/:id/status", h.UpdateStatus)
		prescriptions.PUT("/:id/refill", middleware.RequireRoles(model.RoleAdmin, model.RolePharmacist), h.Refill)
		prescriptions.PUT("/:id/cancel", middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor), h.CancelPrescription)
	}
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	prescription, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, prescription)
}

func (h *Handler) GetPrescription(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	prescription, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescription)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	var filter model.PrescriptionFilter
	if !handler.BindQuery(c, &filter.Pagination) {
		return
	}
	if filter.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}
	if filter.DoctorID, ok = handler.QueryUUID(c, "doctor_id"); !ok {
		return
	}
	filter.Status = model.PrescriptionStatus(c.Query("status"))

	prescriptions, total, err := h.service.List(c.Request.Context(), caller, &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, prescriptions, len(prescriptions), filter.Pagination, total)
}

func (h *Handler) UpdatePrescription(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	prescription, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescription)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePrescriptionStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	prescription, err := h.service.UpdateStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescription)
}

func (h *Handler) Refill(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	prescription, err := h.service.Refill(c.Request.Context(), caller, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescription)
}

func (h *Handler) CancelPrescription(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CancelPrescriptionRequest
	if c.Request.ContentLength > 0 && !handler.BindJSON(c, &req) {
		return
	}

	prescription, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescription)
}
