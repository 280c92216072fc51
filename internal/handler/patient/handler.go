package patient

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
	Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Patient, error)
	GetMine(ctx context.Context, caller model.UserRef) (*model.Patient, error)
	List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error)
	Update(ctx context.Context, caller model.UserRef, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	AddMedicalHistory(ctx context.Context, caller model.UserRef, id uuid.UUID, entry *model.MedicalHistoryEntry) (*model.Patient, error)
	AddLabReport(ctx context.Context, caller model.UserRef, id uuid.UUID, report *model.LabReport) (*model.Patient, error)
	Admissions(ctx context.Context, caller model.UserRef, id uuid.UUID) ([]model.Admission, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	staffOnly := middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleNurse,
		model.RoleReceptionist, model.RolePharmacist)
	clinical := middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleNurse)

	patients := r.Group("/patients", auth.Authorize(rbac.ResourcePatients), middleware.Audit(rbac.ResourcePatients))
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", staffOnly, h.ListPatients)
		patients.GET("/me", middleware.RequireRoles(model.RolePatient), h.GetMyProfile)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.PUT("/:id/medical-history", clinical, h.AddMedicalHistory)
		patients.PUT("/:id/lab-reports", clinical, h.AddLabReport)
		patients.GET("/:id/admissions", h.ListAdmissions)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) GetMyProfile(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	patient, err := h.service.GetMine(c.Request.Context(), caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filter model.PatientFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	patients, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, patients, len(patients), filter.Pagination, total)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "patient deleted")
}

func (h *Handler) AddMedicalHistory(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var entry model.MedicalHistoryEntry
	if !handler.BindJSON(c, &entry) {
		return
	}

	patient, err := h.service.AddMedicalHistory(c.Request.Context(), caller, id, &entry)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) AddLabReport(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var report model.LabReport
	if !handler.BindJSON(c, &report) {
		return
	}

	patient, err := h.service.AddLabReport(c.Request.Context(), caller, id, &report)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) ListAdmissions(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	admissions, err := h.service.Admissions(c.Request.Context(), caller, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, admissions, len(admissions))
}
