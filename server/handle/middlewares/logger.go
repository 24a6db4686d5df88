package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/server/handle/api"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		c.Next()
		if raw != "" {
			path = path + "?" + raw
		}
		log.Api.Debugf("method: %s, path: %s, status: %d, latency: %s, client_ip: %s, error_message: %s, body_size: %d",
			c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP(), c.Errors.ByType(gin.ErrorTypePrivate).String(), c.Writer.Size())
	}
}

// Recovery answers 500 on a panicking handler and logs the panic.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Api.Errorf("panic serving %s: %v", c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.RespErr(api.CodeError500, "internal error"))
	})
}
