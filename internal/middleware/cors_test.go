package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsRequest(t *testing.T, origins []string, method, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reachedNext := false
	handler := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedNext = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(method, "/api/user/me", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, reachedNext
}

func TestCORS_ExplicitOriginGetsCredentials(t *testing.T) {
	w, _ := corsRequest(t, []string{"https://devmatch.app"}, http.MethodGet, "https://devmatch.app")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://devmatch.app" {
		t.Errorf("Expected origin echo, got %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Expected credentials for an explicit origin")
	}
	if headers := w.Header().Get("Access-Control-Allow-Headers"); headers != "Content-Type, Authorization" {
		t.Errorf("Expected Authorization to be allowed, got %q", headers)
	}
}

func TestCORS_WildcardEchoWithoutCredentials(t *testing.T) {
	w, _ := corsRequest(t, []string{"*"}, http.MethodGet, "https://anywhere.example")

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example" {
		t.Errorf("Expected origin echo, got %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("Expected no credentials for a wildcard match")
	}
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	w, reachedNext := corsRequest(t, []string{"https://devmatch.app"}, http.MethodGet, "https://evil.example")

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Expected no CORS headers for a disallowed origin")
	}
	if !reachedNext {
		t.Error("Expected the request itself to still pass through")
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	w, reachedNext := corsRequest(t, []string{"*"}, http.MethodOptions, "https://devmatch.app")

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", w.Code)
	}
	if reachedNext {
		t.Error("Expected preflight to stop at the middleware")
	}
}
