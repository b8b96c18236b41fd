package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/curo/internal/storage/memory"
	"github.com/fdg312/curo/internal/userctx"
)

func newTestHandler(fallback string) (*Handler, *Service) {
	svc := NewService(memory.New(), fallback)
	return NewHandler(svc), svc
}

func withClient(req *http.Request, clientID string) *http.Request {
	return req.WithContext(userctx.WithClientID(req.Context(), clientID))
}

func TestValidate(t *testing.T) {
	if err := Validate("   "); err != ErrKeyRequired {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
	if err := Validate("pk-123"); err != ErrKeyMalformed {
		t.Fatalf("expected ErrKeyMalformed, got %v", err)
	}
	if err := Validate(" sk-abc "); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}
}

func TestLookupFallsBackToServerKey(t *testing.T) {
	ctx := context.Background()
	_, svc := newTestHandler("sk-server")

	key, err := svc.Lookup(ctx, "client-1")
	if err != nil || key != "sk-server" {
		t.Fatalf("expected server key, got %q err=%v", key, err)
	}

	if _, err := svc.Save(ctx, "client-1", "sk-client-key"); err != nil {
		t.Fatalf("save: %v", err)
	}
	key, err = svc.Lookup(ctx, "client-1")
	if err != nil || key != "sk-client-key" {
		t.Fatalf("expected client key, got %q err=%v", key, err)
	}

	_, noFallback := newTestHandler("")
	key, err = noFallback.Lookup(ctx, "client-1")
	if err != nil || key != "" {
		t.Fatalf("expected empty key without fallback, got %q err=%v", key, err)
	}
}

func TestHandlePutValidation(t *testing.T) {
	h, _ := newTestHandler("")

	cases := map[string]string{
		`{"api_key":""}`:       "api_key_required",
		`{"api_key":"abc123"}`: "api_key_invalid",
	}
	for body, code := range cases {
		rec := httptest.NewRecorder()
		req := withClient(httptest.NewRequest(http.MethodPut, "/v1/credential", strings.NewReader(body)), "client-1")
		h.HandlePut(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error.Code != code {
			t.Fatalf("%s: expected code %s, got %s", body, code, resp.Error.Code)
		}
	}
}

func TestHandlePutGetDelete(t *testing.T) {
	h, _ := newTestHandler("")
	const secret = "sk-test-1234567890"

	body, _ := json.Marshal(SaveRequest{APIKey: secret})
	rec := httptest.NewRecorder()
	h.HandlePut(rec, withClient(httptest.NewRequest(http.MethodPut, "/v1/credential", bytes.NewReader(body)), "client-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), secret) {
		t.Fatal("response must not echo the secret")
	}

	rec = httptest.NewRecorder()
	h.HandleGet(rec, withClient(httptest.NewRequest(http.MethodGet, "/v1/credential", nil), "client-1"))
	var status StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Configured || status.Source != SourceClient || status.Masked != "sk-...7890" {
		t.Fatalf("unexpected status: %+v", status)
	}

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, withClient(httptest.NewRequest(http.MethodDelete, "/v1/credential", nil), "client-1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleGet(rec, withClient(httptest.NewRequest(http.MethodGet, "/v1/credential", nil), "client-1"))
	status = StatusResponse{}
	_ = json.NewDecoder(rec.Body).Decode(&status)
	if status.Configured || status.Source != SourceNone {
		t.Fatalf("expected no credential after delete, got %+v", status)
	}
}

func TestHandlersRequireClient(t *testing.T) {
	h, _ := newTestHandler("")

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/v1/credential", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
