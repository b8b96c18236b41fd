package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/curo/internal/config"
)

const webOrigin = "https://curo.example.com"

func corsHandler(cfg *config.Config, called *bool) http.Handler {
	return CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

// Every consultation route must survive a browser preflight from the web client.
func TestCORS_PreflightCoversConsultationRoutes(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{" " + webOrigin + " "}}

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/auth/session"},
		{http.MethodGet, "/v1/consultation"},
		{http.MethodPut, "/v1/consultation/input"},
		{http.MethodPost, "/v1/consultation/submit"},
		{http.MethodPost, "/v1/consultation/reset"},
		{http.MethodDelete, "/v1/consultation"},
		{http.MethodGet, "/v1/consultation/export"},
		{http.MethodPut, "/v1/credential"},
		{http.MethodDelete, "/v1/credential"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodOptions, rt.path, nil)
			req.Header.Set("Origin", webOrigin)
			req.Header.Set("Access-Control-Request-Method", rt.method)
			rr := httptest.NewRecorder()

			corsHandler(cfg, &called).ServeHTTP(rr, req)

			if called {
				t.Fatal("preflight must not reach the consultation handler")
			}
			if rr.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", rr.Code)
			}
			methods := strings.Split(rr.Header().Get("Access-Control-Allow-Methods"), ",")
			found := false
			for _, m := range methods {
				found = found || m == rt.method
			}
			if !found {
				t.Fatalf("%s missing from Allow-Methods %v", rt.method, methods)
			}
			if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
				t.Fatal("session token header must be allowed")
			}
		})
	}
}

func TestCORS_UnknownOriginGetsNoGrant(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{webOrigin}}

	called := false
	req := httptest.NewRequest(http.MethodOptions, "/v1/consultation/input", nil)
	req.Header.Set("Origin", "https://other.example.com")
	rr := httptest.NewRecorder()
	corsHandler(cfg, &called).ServeHTTP(rr, req)

	if called || rr.Code != http.StatusNoContent {
		t.Fatalf("expected bare 204 preflight, got %d called=%v", rr.Code, called)
	}
	for _, h := range []string{"Access-Control-Allow-Origin", "Access-Control-Allow-Methods"} {
		if got := rr.Header().Get(h); got != "" {
			t.Fatalf("expected no %s, got %q", h, got)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/consultation", nil)
	req.Header.Set("Origin", "https://other.example.com")
	rr = httptest.NewRecorder()
	corsHandler(cfg, &called).ServeHTTP(rr, req)
	if !called || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected request passed through without grant, called=%v", called)
	}
}

func TestCORS_CredentialsAndVary(t *testing.T) {
	for _, withCreds := range []bool{false, true} {
		cfg := &config.Config{CORSAllowedOrigins: []string{webOrigin}, CORSAllowCredentials: withCreds}

		called := false
		req := httptest.NewRequest(http.MethodPost, "/v1/consultation/submit", nil)
		req.Header.Set("Origin", webOrigin)
		rr := httptest.NewRecorder()
		corsHandler(cfg, &called).ServeHTTP(rr, req)

		if !called {
			t.Fatal("expected submit to reach the handler")
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != webOrigin || rr.Header().Get("Vary") != "Origin" {
			t.Fatalf("expected origin grant with Vary, got %v", rr.Header())
		}
		if got := rr.Header().Get("Access-Control-Allow-Credentials") == "true"; got != withCreds {
			t.Fatalf("credentials=%v, header present=%v", withCreds, got)
		}
	}
}

// Same-origin and non-browser callers send no Origin; OPTIONS then reaches the mux.
func TestCORS_NoOriginPassesThrough(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{webOrigin}}

	called := false
	rr := httptest.NewRecorder()
	corsHandler(cfg, &called).ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/consultation", nil))
	if !called || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected pass-through without CORS headers, called=%v", called)
	}
}
