package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

func newTestMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("coldguard-test", "0.0.0",
		mcpserver.WithToolCapabilities(true),
	)
}

func TestHTTPServer_HealthEndpoints(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{})
	srv.SetHealthChecker(NewHealthChecker(nil))

	handler := srv.handler()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/healthz/detailed", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("GET %s Content-Type = %q, want application/json", tt.path, ct)
			}
		})
	}
}

func TestHTTPServer_NoHealthCheckerNoEndpoints(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /healthz without health checker = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStatusRecorder_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)

	if sr.status != http.StatusTeapot {
		t.Errorf("statusRecorder status = %d, want %d", sr.status, http.StatusTeapot)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("underlying recorder status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestHTTPServer_InstrumentWithoutMetrics(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{})

	called := false
	handler := srv.instrument("/test", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("wrapped handler was not called")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestHTTPServer_ShutdownWithoutStart(t *testing.T) {
	srv := NewHTTPServer(newTestMCPServer(), HTTPServerConfig{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before Start = %v, want nil", err)
	}
}
