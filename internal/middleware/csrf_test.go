package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/GunarsK-portfolio/workshop-planner/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const (
	testSession = "session-1"
	testToken   = "abc123"
)

// =============================================================================
// Mock CsrfGuard
// =============================================================================

type mockCsrfGuard struct {
	validateFunc func(ctx context.Context, sessionID, submitted string) bool
}

func (m *mockCsrfGuard) Issue(context.Context, string) (string, error) {
	return testToken, nil
}

func (m *mockCsrfGuard) Validate(ctx context.Context, sessionID, submitted string) bool {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, sessionID, submitted)
	}
	return sessionID == testSession && submitted == testToken
}

func (m *mockCsrfGuard) Destroy(context.Context, string) error {
	return nil
}

func fixedSession(id string) func(*gin.Context) string {
	return func(*gin.Context) string { return id }
}

func newCSRFRouter(config CSRFConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CSRF(config))
	r.Any("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

// =============================================================================
// Origin Tests
// =============================================================================

func TestCSRF_Origin(t *testing.T) {
	config := CSRFConfig{
		AllowedOrigins: []string{
			"https://localhost:8443",
			"https://admin.example.com",
		},
		Guard:     &mockCsrfGuard{},
		SessionID: fixedSession(testSession),
	}

	tests := []struct {
		name       string
		method     string
		origin     string
		referer    string
		wantStatus int
	}{
		// Safe methods pass without validation
		{
			name:       "GET request passes without headers",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "HEAD request passes without headers",
			method:     http.MethodHead,
			wantStatus: http.StatusOK,
		},
		{
			name:       "OPTIONS request passes without headers",
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with valid origin passes",
			method:     http.MethodPost,
			origin:     "https://localhost:8443",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with valid origin (trailing slash) passes",
			method:     http.MethodPost,
			origin:     "https://localhost:8443/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with valid origin (case insensitive) passes",
			method:     http.MethodPost,
			origin:     "HTTPS://LOCALHOST:8443",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with invalid origin blocked",
			method:     http.MethodPost,
			origin:     "https://evil.com",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with different port blocked",
			method:     http.MethodPost,
			origin:     "https://localhost:9999",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with valid referer passes",
			method:     http.MethodPost,
			referer:    "https://localhost:8443/some/page",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with invalid referer blocked",
			method:     http.MethodPost,
			referer:    "https://evil.com/attack",
			wantStatus: http.StatusForbidden,
		},
		// Non-browser clients send neither header; the token still applies
		{
			name:       "POST with no origin or referer relies on token",
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with Origin null blocked",
			method:     http.MethodPost,
			origin:     "null",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "PUT with valid origin passes",
			method:     http.MethodPut,
			origin:     "https://admin.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "DELETE with valid origin passes",
			method:     http.MethodDelete,
			origin:     "https://admin.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "PATCH with invalid origin blocked",
			method:     http.MethodPatch,
			origin:     "https://evil.com",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := newCSRFRouter(config)

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set(CSRFHeader, testToken)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("CSRF() status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// =============================================================================
// Synchronizer Token Tests
// =============================================================================

func TestCSRF_Token(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		header     string
		form       string
		session    string
		wantStatus int
	}{
		{"GET without token passes", http.MethodGet, "", "", testSession, http.StatusOK},
		{"POST with matching header passes", http.MethodPost, testToken, "", testSession, http.StatusOK},
		{"POST with matching form field passes", http.MethodPost, "", testToken, testSession, http.StatusOK},
		{"POST with one character off blocked", http.MethodPost, "abc124", "", testSession, http.StatusForbidden},
		{"POST without token blocked", http.MethodPost, "", "", testSession, http.StatusForbidden},
		{"POST without session blocked", http.MethodPost, testToken, "", "", http.StatusForbidden},
		{"DELETE with matching header passes", http.MethodDelete, testToken, "", testSession, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := tt.session
			r := newCSRFRouter(CSRFConfig{
				Guard:     &mockCsrfGuard{},
				SessionID: func(*gin.Context) string { return session },
			})

			var req *http.Request
			if tt.form != "" {
				body := url.Values{CSRFFormField: {tt.form}}.Encode()
				req = httptest.NewRequest(tt.method, "/test", strings.NewReader(body))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				req = httptest.NewRequest(tt.method, "/test", nil)
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("CSRF() status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestCSRF_GuardUnavailableFailsClosed(t *testing.T) {
	r := newCSRFRouter(CSRFConfig{
		Guard: &mockCsrfGuard{
			validateFunc: func(context.Context, string, string) bool { return false },
		},
		SessionID: fixedSession(testSession),
	})

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(CSRFHeader, testToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestCSRF_NoGuardRejects(t *testing.T) {
	r := newCSRFRouter(CSRFConfig{SessionID: fixedSession(testSession)})

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(CSRFHeader, testToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestCSRF_CountsRejections(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := newCSRFRouter(CSRFConfig{
		Guard:     &mockCsrfGuard{},
		SessionID: fixedSession(testSession),
		Metrics:   m,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", nil))

	if got := testutil.ToFloat64(m.CsrfRejections.WithLabelValues("missing_token")); got != 1 {
		t.Errorf("missing_token rejections = %v, want 1", got)
	}
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{
			name:   "full URL",
			rawURL: "https://example.com/path/to/page?query=1",
			want:   "https://example.com",
		},
		{
			name:   "URL with port",
			rawURL: "https://localhost:8443/login",
			want:   "https://localhost:8443",
		},
		{
			name:   "HTTP URL",
			rawURL: "http://example.com/page",
			want:   "http://example.com",
		},
		{
			name:   "path only (no scheme)",
			rawURL: "not-a-url",
			want:   "",
		},
		{
			name:   "empty string",
			rawURL: "",
			want:   "",
		},
		{
			name:   "null string",
			rawURL: "null",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractOrigin(tt.rawURL)
			if got != tt.want {
				t.Errorf("extractOrigin() = %s, want %s", got, tt.want)
			}
		})
	}
}
