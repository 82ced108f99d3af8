// Package middleware provides HTTP middleware for the workshop planner.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/GunarsK-portfolio/workshop-planner/internal/logger"
	"github.com/GunarsK-portfolio/workshop-planner/internal/metrics"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// CSRFHeader carries the synchronizer token on API requests.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField carries the token on form posts.
	CSRFFormField = "csrf_token"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AllowedOrigins is checked against Origin/Referer when non-empty.
	// Should match CORS allowed origins.
	AllowedOrigins []string
	// Guard validates the per-session synchronizer token.
	Guard service.CsrfGuard
	// SessionID extracts the session identifier keying the token.
	SessionID func(c *gin.Context) string
	Metrics   *metrics.Metrics
}

// CSRF returns middleware that protects state-changing requests. When
// origins are configured, a present Origin or Referer must match one of
// them. Every state-changing request must also carry the session's
// synchronizer token in the X-CSRF-Token header or csrf_token form field.
func CSRF(config CSRFConfig) gin.HandlerFunc {
	allowedSet := make(map[string]bool)
	for _, origin := range config.AllowedOrigins {
		normalized := strings.TrimSuffix(strings.ToLower(origin), "/")
		allowedSet[normalized] = true
	}

	reject := func(c *gin.Context, reason, message string) {
		config.Metrics.ObserveCsrfRejection(reason)
		logger.FromContext(c).Warn("CSRF validation failed",
			"reason", reason,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "CSRF validation failed: " + message,
		})
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			c.Next()
			return
		}

		if len(allowedSet) > 0 {
			if origin := c.GetHeader("Origin"); origin != "" {
				if !isAllowedOrigin(origin, allowedSet) {
					reject(c, "invalid_origin", "invalid origin")
					return
				}
			} else if referer := c.GetHeader("Referer"); referer != "" {
				if !isAllowedOrigin(extractOrigin(referer), allowedSet) {
					reject(c, "invalid_referer", "invalid referer")
					return
				}
			}
		}

		submitted := c.GetHeader(CSRFHeader)
		if submitted == "" {
			submitted = c.PostForm(CSRFFormField)
		}
		if submitted == "" {
			reject(c, "missing_token", "missing token")
			return
		}

		sessionID := ""
		if config.SessionID != nil {
			sessionID = config.SessionID(c)
		}
		if config.Guard == nil || !config.Guard.Validate(c.Request.Context(), sessionID, submitted) {
			reject(c, "invalid_token", "invalid token")
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the given origin is in the allowed set.
func isAllowedOrigin(origin string, allowedSet map[string]bool) bool {
	normalized := strings.TrimSuffix(strings.ToLower(origin), "/")
	return allowedSet[normalized]
}

// extractOrigin extracts the origin (scheme://host:port) from a URL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
