package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Audit writes an audit line for every successful write to resource.
// Reads are not audited.
func Audit(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action := ""
		switch c.Request.Method {
		case http.MethodPost:
			action = "create"
		case http.MethodPut, http.MethodPatch:
			action = "update"
		case http.MethodDelete:
			action = "delete"
		default:
			return
		}
		if status := c.Writer.Status(); status >= 400 {
			return
		}

		event := log.Info().
			Str("audit", resource).
			Str("action", action).
			Str("route", c.FullPath()).
			Str("request_id", c.GetString(ContextRequestID))
		if id := c.Param("id"); id != "" {
			event = event.Str("entity_id", id)
		}
		if caller, ok := Caller(c); ok {
			event = event.Str("actor_id", caller.ID.String()).Str("actor_role", string(caller.Role))
		}
		event.Msg("audit")
	}
}
