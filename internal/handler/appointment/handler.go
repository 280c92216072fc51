package appointment

import (
	"context"

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
	Create(ctx context.Context, caller model.UserRef, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, caller model.UserRef, filter *model.AppointmentFilter) ([]*model.Appointment, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) (*model.AvailableSlots, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments", auth.Authorize(rbac.ResourceAppointments), middleware.Audit(rbac.ResourceAppointments))
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/available-slots", h.AvailableSlots)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
		appointments.PUT("/:id/cancel", h.CancelAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	var filter model.AppointmentFilter
	if !handler.BindQuery(c, &filter.Pagination) {
		return
	}
	if filter.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}
	if filter.DoctorID, ok = handler.QueryUUID(c, "doctor_id"); !ok {
		return
	}
	if filter.Date, ok = handler.QueryDate(c, "date"); !ok {
		return
	}
	if filter.From, ok = handler.QueryDate(c, "from"); !ok {
		return
	}
	if filter.To, ok = handler.QueryDate(c, "to"); !ok {
		return
	}
	filter.Status = model.AppointmentStatus(c.Query("status"))
	filter.Priority = model.Priority(c.Query("priority"))

	appointments, total, err := h.service.List(c.Request.Context(), caller, &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, appointments, len(appointments), filter.Pagination, total)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.RescheduleAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	// The reason is optional, so an empty body is fine
	var req model.CancelAppointmentRequest
	if c.Request.ContentLength > 0 && !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "appointment deleted")
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	doctorID, ok := handler.QueryUUID(c, "doctor_id")
	if !ok {
		return
	}
	date, ok := handler.QueryDate(c, "date")
	if !ok {
		return
	}
	if doctorID == nil || date == nil {
		httputil.RespondWithError(c, apperrors.Validation("doctor_id and date are required"))
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), *doctorID, *date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}
