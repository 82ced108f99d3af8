package logger

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

const contextKey = "logger"

// Attach stores a request-scoped logger on the gin context.
func Attach(c *gin.Context, l *slog.Logger) {
	c.Set(contextKey, l)
}

// FromContext returns the request-scoped logger, or slog.Default when none
// was attached.
func FromContext(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(contextKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
