package doctor

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

var errNotYours = apperrors.Forbidden("doctors may only edit their own profile", []string{"GET"})

type Service interface {
	Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.Doctor, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	doctors := r.Group("/doctors", auth.Authorize(rbac.ResourceDoctors), middleware.Audit(rbac.ResourceDoctors))
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/me", middleware.RequireRoles(model.RoleDoctor), h.GetMyProfile)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.PUT("/:id/availability", h.UpdateAvailability)
		doctors.DELETE("/:id", h.DeactivateDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	doctor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) GetMyProfile(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	doctor, err := h.service.GetByUser(c.Request.Context(), caller.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var filter model.DoctorFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	doctors, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, doctors, len(doctors), filter.Pagination, total)
}

// doctorOwns reports whether a Doctor caller is editing someone else's profile.
// Other roles reaching here were already cleared by the policy table.
func (h *Handler) doctorOwns(c *gin.Context, id uuid.UUID) bool {
	caller, ok := handler.Caller(c)
	if !ok {
		return false
	}
	if caller.Role != model.RoleDoctor {
		return true
	}
	mine, err := h.service.GetByUser(c.Request.Context(), caller.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return false
	}
	if mine.ID != id {
		httputil.RespondWithError(c, errNotYours)
		return false
	}
	return true
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok || !h.doctorOwns(c, id) {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) UpdateAvailability(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok || !h.doctorOwns(c, id) {
		return
	}
	var req model.UpdateAvailabilityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.UpdateAvailability(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) DeactivateDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "doctor deactivated")
}
