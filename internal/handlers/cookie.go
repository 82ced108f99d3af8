package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Cookie names
	AuthTokenCookie = "auth_token"
	SessionCookie   = "workshop_session"
)

// CookieHelper manages the auth token cookie and the opaque session
// cookie that keys CSRF state.
type CookieHelper struct {
	config     config.CookieConfig
	sessionTTL time.Duration
}

// NewCookieHelper creates a new cookie helper with the given configuration.
func NewCookieHelper(cfg config.CookieConfig, sessionTTL time.Duration) *CookieHelper {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteStrictMode
	}
	return &CookieHelper{config: cfg, sessionTTL: sessionTTL}
}

// SetAuthCookie stores the token with Max-Age equal to its lifetime.
func (h *CookieHelper) SetAuthCookie(c *gin.Context, token string, ttl time.Duration) {
	h.setCookie(c, AuthTokenCookie, token, int(ttl.Seconds()))
}

// ClearAuthCookie expires the auth cookie.
func (h *CookieHelper) ClearAuthCookie(c *gin.Context) {
	h.setCookie(c, AuthTokenCookie, "", -1)
}

// GetAuthToken reads the token from the cookie, falling back to an
// Authorization: Bearer header.
func (h *CookieHelper) GetAuthToken(c *gin.Context) string {
	if token, err := c.Cookie(AuthTokenCookie); err == nil && token != "" {
		return token
	}
	return bearerToken(c)
}

// SessionID returns the current session cookie value, or "".
func (h *CookieHelper) SessionID(c *gin.Context) string {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return id
}

// EnsureSession returns the current session id, starting a new session
// when the request has none.
func (h *CookieHelper) EnsureSession(c *gin.Context) string {
	if id := h.SessionID(c); id != "" {
		return id
	}
	return h.StartSession(c)
}

// StartSession issues a fresh session id cookie.
func (h *CookieHelper) StartSession(c *gin.Context) string {
	id := newSessionID()
	h.SetSession(c, id)
	return id
}

// SetSession stores id in the session cookie.
func (h *CookieHelper) SetSession(c *gin.Context, id string) {
	h.setCookie(c, SessionCookie, id, int(h.sessionTTL.Seconds()))
}

func newSessionID() string {
	return uuid.NewString()
}

// ClearSession expires the session cookie.
func (h *CookieHelper) ClearSession(c *gin.Context) {
	h.setCookie(c, SessionCookie, "", -1)
}

func (h *CookieHelper) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(h.config.SameSite)
	c.SetCookie(
		name,
		value,
		maxAge,
		h.config.Path,
		h.config.Domain,
		h.secure(c),
		true, // httpOnly - always true for auth cookies
	)
}

// secure is true when the request arrived over TLS or config forces it.
func (h *CookieHelper) secure(c *gin.Context) bool {
	return h.config.Secure || c.Request.TLS != nil
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
