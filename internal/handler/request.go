// Package handler holds the request plumbing shared by the resource handlers.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

// ParamID parses a uuid path parameter. On failure the 400 is already written.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validationf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON decodes and validates the body into req
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.RespondWithBindError(c, err)
		return false
	}
	return true
}

// BindQuery binds form-tagged query parameters into dst
func BindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		httputil.RespondWithBindError(c, err)
		return false
	}
	return true
}

// QueryUUID reads an optional uuid query parameter
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validationf("invalid %s", name))
		return nil, false
	}
	return &id, true
}

// QueryDate reads an optional YYYY-MM-DD query parameter
func QueryDate(c *gin.Context, name string) (*model.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validationf("%s must be a YYYY-MM-DD date", name))
		return nil, false
	}
	return &d, true
}

// Caller returns the authenticated user or answers 401
func Caller(c *gin.Context) (model.UserRef, bool) {
	caller, ok := middleware.Caller(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("not authorized to access this route"))
	}
	return caller, ok
}

// RespondWithPage writes a paginated list envelope for p
func RespondWithPage(c *gin.Context, data interface{}, count int, p model.Pagination, total int) {
	httputil.RespondWithPagination(c, data, count, p.Page, p.PageSize, total)
}
