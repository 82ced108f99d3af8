// Package handlers contains HTTP request handlers for the workshop planner.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/internal/logger"
	"github.com/GunarsK-portfolio/workshop-planner/internal/metrics"
	"github.com/GunarsK-portfolio/workshop-planner/internal/middleware"
	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	csrf        service.CsrfGuard
	cookies     *CookieHelper
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, csrf service.CsrfGuard, cookies *CookieHelper, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		csrf:        csrf,
		cookies:     cookies,
		metrics:     m,
	}
}

// AuthResponse is returned after login or registration.
type AuthResponse struct {
	Success   bool         `json:"success"`
	User      *models.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
	ExpiresIn int64        `json:"expires_in"`
	CSRFToken string       `json:"csrf_token"`
}

// TokenStatusResponse represents the token status response.
type TokenStatusResponse struct {
	Valid      bool  `json:"valid"`
	TTLSeconds int64 `json:"ttl_seconds"`
}

// Login godoc
// @Summary User login
// @Description Authenticate by email and password, set the auth cookie and rotate the CSRF session
// @Tags auth
// @Accept json
// @Produce json
// @Param X-CSRF-Token header string true "CSRF token"
// @Param request body service.LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			h.metrics.ObserveLogin(metrics.LoginRateLimited)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.metrics.ObserveLogin(metrics.LoginFailure)
		default:
			h.metrics.ObserveLogin(metrics.LoginError)
		}
		RespondServiceError(c, err)
		return
	}

	h.metrics.ObserveLogin(metrics.LoginSuccess)
	h.completeAuth(c, http.StatusOK, result)
}

// Register godoc
// @Summary Register a teacher
// @Description Create a teacher account and log it in
// @Tags auth
// @Accept json
// @Produce json
// @Param X-CSRF-Token header string true "CSRF token"
// @Param request body service.RegisterRequest true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	h.completeAuth(c, http.StatusCreated, result)
}

// completeAuth sets the auth cookie and rotates the CSRF session so a
// token issued before login cannot be replayed after it. No cookie is
// touched until the new session's token is stored.
func (h *AuthHandler) completeAuth(c *gin.Context, status int, result *service.AuthResult) {
	ctx := c.Request.Context()

	sessionID := newSessionID()
	csrfToken, err := h.csrf.Issue(ctx, sessionID)
	if err != nil {
		LogAndRespondError(c, http.StatusInternalServerError, err, "failed to start session")
		return
	}

	if old := h.cookies.SessionID(c); old != "" {
		if err := h.csrf.Destroy(ctx, old); err != nil {
			logger.FromContext(c).Warn("Failed to destroy previous CSRF session", "error", err)
		}
	}
	h.cookies.SetSession(c, sessionID)

	ttl := time.Until(result.ExpiresAt)
	if ttl <= 0 {
		ttl = h.authService.TokenTTL()
	}
	h.cookies.SetAuthCookie(c, result.Token, ttl)

	c.JSON(status, AuthResponse{
		Success:   true,
		User:      result.User,
		ExpiresAt: result.ExpiresAt,
		ExpiresIn: int64(ttl.Seconds()),
		CSRFToken: csrfToken,
	})
}

// Logout godoc
// @Summary User logout
// @Description Clear the auth cookie and destroy the CSRF session. The token itself stays valid until it expires.
// @Tags auth
// @Produce json
// @Param X-CSRF-Token header string true "CSRF token"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.GetClaims(c); ok {
		h.authService.Logout(c.Request.Context(), claims.UserID)
	}
	if sessionID := h.cookies.SessionID(c); sessionID != "" {
		if err := h.csrf.Destroy(c.Request.Context(), sessionID); err != nil {
			logger.FromContext(c).Warn("Failed to destroy CSRF session", "error", err)
		}
	}
	h.cookies.ClearAuthCookie(c)
	h.cookies.ClearSession(c)

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]models.User
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePassword godoc
// @Summary Change password
// @Description Verify the current password and store a new one
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param request body service.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed successfully"})
}

// CSRFToken godoc
// @Summary CSRF token
// @Description Return the session's synchronizer token, starting a session when the request has none
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auth/csrf [get]
func (h *AuthHandler) CSRFToken(c *gin.Context) {
	sessionID := h.cookies.EnsureSession(c)

	token, err := h.csrf.Issue(c.Request.Context(), sessionID)
	if err != nil {
		LogAndRespondError(c, http.StatusInternalServerError, err, "failed to issue CSRF token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}

// TokenStatus godoc
// @Summary Check token status
// @Description Report whether the request's token is valid and its remaining lifetime
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TokenStatusResponse
// @Failure 401 {object} TokenStatusResponse
// @Router /auth/token-status [get]
func (h *AuthHandler) TokenStatus(c *gin.Context) {
	token := h.cookies.GetAuthToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, TokenStatusResponse{Valid: false, TTLSeconds: 0})
		return
	}

	claims, err := h.authService.Authenticate(token)
	if err != nil || claims.ExpiresAt == nil {
		c.JSON(http.StatusUnauthorized, TokenStatusResponse{Valid: false, TTLSeconds: 0})
		return
	}

	ttl := int64(time.Until(claims.ExpiresAt.Time).Seconds())
	if ttl <= 0 {
		c.JSON(http.StatusUnauthorized, TokenStatusResponse{Valid: false, TTLSeconds: 0})
		return
	}

	c.JSON(http.StatusOK, TokenStatusResponse{
		Valid:      true,
		TTLSeconds: ttl,
	})
}
