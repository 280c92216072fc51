package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/httputil"
)

// ErrorHandler answers errors that handlers attached with c.Error but did
// not write themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}

// NotFound answers unknown routes with the envelope
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, httputil.Response{Success: false, Message: "route " + c.Request.URL.Path + " not found"})
	}
}
