package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Security Headers Middleware Tests
// =============================================================================

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	mw := NewSecurityHeadersMiddleware(false)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/compliance/rules", nil)
	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, req)

	expected := []struct {
		header string
		value  string
	}{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
	}

	for _, e := range expected {
		if got := rec.Header().Get(e.header); got != e.value {
			t.Errorf("expected %s: %q, got %q", e.header, e.value, got)
		}
	}
}

func TestSecurityHeadersMiddleware_HSTSInProduction(t *testing.T) {
	mw := NewSecurityHeadersMiddleware(true)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, req)

	hsts := rec.Header().Get("Strict-Transport-Security")
	if hsts == "" {
		t.Fatal("expected HSTS header in secure mode")
	}
	if !strings.Contains(hsts, "max-age=31536000") {
		t.Errorf("expected 1 year max-age, got %q", hsts)
	}
}

func TestSecurityHeadersMiddleware_NoHSTSInDevelopment(t *testing.T) {
	mw := NewSecurityHeadersMiddleware(false)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, req)

	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set without HTTPS")
	}
}

func TestSecurityHeadersMiddleware_CSPLocksDownJSONAPI(t *testing.T) {
	mw := NewSecurityHeadersMiddleware(false)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/compliance/rules", nil)
	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, req)

	csp := rec.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Fatal("expected Content-Security-Policy header")
	}
	if !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("JSON API should deny all sources by default: %s", csp)
	}
	if !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("JSON API should deny framing: %s", csp)
	}
}

func TestSecurityHeadersMiddleware_PassesThroughRequests(t *testing.T) {
	mw := NewSecurityHeadersMiddleware(false)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("response body"))
	})

	req := httptest.NewRequest("POST", "/api/generate", nil)
	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("handler should have been called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Body.String() != "response body" {
		t.Errorf("response body should be preserved, got: %s", rec.Body.String())
	}
}
