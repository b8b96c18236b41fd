package consultation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/curo/internal/export"
	"github.com/fdg312/curo/internal/userctx"
)

func newTestHandler(p *fakeProvider, key string) (*Handler, *Registry) {
	r := NewRegistry(p, staticCredentials{key: key}, time.Minute)
	return NewHandler(r, export.NewService(nil, time.Minute)), r
}

func authed(req *http.Request) *http.Request {
	return req.WithContext(userctx.WithClientID(req.Context(), "client-1"))
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) Snapshot {
	t.Helper()
	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return resp
}

func TestHandlerFullFlow(t *testing.T) {
	p := &fakeProvider{reply: `{"category":"Mild","reliefSteps":["Rest","Hydrate"]}`}
	h, r := newTestHandler(p, "sk-test")
	defer r.Stop()

	rec := httptest.NewRecorder()
	h.HandleGet(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/consultation", nil)))
	if snap := decodeSnapshot(t, rec); snap.Phase != PhaseIdle || !snap.Editable {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	body := `{"symptoms":"I have a mild headache","include_diet":true}`
	rec = httptest.NewRecorder()
	h.HandleUpdateInput(rec, authed(httptest.NewRequest(http.MethodPut, "/v1/consultation/input", strings.NewReader(body))))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec); snap.ThemeClass != "theme-diet" || snap.Input.Symptoms != "I have a mild headache" {
		t.Fatalf("unexpected snapshot after update: %+v", snap)
	}

	rec = httptest.NewRecorder()
	h.HandleSubmit(rec, authed(httptest.NewRequest(http.MethodPost, "/v1/consultation/submit", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Phase != PhaseResulted || snap.Advice == nil || snap.Advice.CategoryLabel != "Mild" {
		t.Fatalf("unexpected result: %+v", snap)
	}

	rec = httptest.NewRecorder()
	h.HandleUpdateInput(rec, authed(httptest.NewRequest(http.MethodPut, "/v1/consultation/input", strings.NewReader(`{"symptoms":"x"}`))))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Error.Code != "not_editable" {
		t.Fatalf("expected not_editable conflict, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleExport(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/consultation/export", nil)))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != export.ContentTypePDF {
		t.Fatalf("expected inline pdf, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected PDF body")
	}

	rec = httptest.NewRecorder()
	h.HandleReset(rec, authed(httptest.NewRequest(http.MethodPost, "/v1/consultation/reset", nil)))
	if snap := decodeSnapshot(t, rec); snap.Phase != PhaseIdle || snap.Input.Symptoms != "" || snap.ThemeClass != "" {
		t.Fatalf("unexpected snapshot after reset: %+v", snap)
	}
}

func TestHandlerSubmitErrors(t *testing.T) {
	cases := []struct {
		name     string
		key      string
		symptoms string
		status   int
		code     string
	}{
		{"blank symptoms", "sk-test", "   ", http.StatusBadRequest, "symptoms_required"},
		{"no credential", "", "headache", http.StatusBadRequest, "credential_missing"},
		{"provider failure", "sk-test", "headache", http.StatusBadGateway, "advice_unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{}
			if tc.code == "advice_unavailable" {
				p.err = errTestTransport
			}
			h, r := newTestHandler(p, tc.key)
			defer r.Stop()
			_, _ = r.Get("client-1").SetSymptoms(tc.symptoms)

			rec := httptest.NewRecorder()
			h.HandleSubmit(rec, authed(httptest.NewRequest(http.MethodPost, "/v1/consultation/submit", nil)))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			resp := decodeError(t, rec)
			if resp.Error.Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, resp.Error.Code)
			}
			if resp.Consultation == nil || resp.Consultation.Phase != PhaseIdle || resp.Consultation.Notice == nil {
				t.Fatalf("expected idle snapshot with notice, got %+v", resp.Consultation)
			}
		})
	}
}

func TestHandlerExportWithoutResult(t *testing.T) {
	h, r := newTestHandler(&fakeProvider{}, "sk-test")
	defer r.Stop()

	rec := httptest.NewRecorder()
	h.HandleExport(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/consultation/export", nil)))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Error.Code != "no_result" {
		t.Fatalf("expected no_result conflict, got %d", rec.Code)
	}
	if r.Len() != 0 {
		t.Fatalf("export must not open a session, got %d", r.Len())
	}

	r.Get("client-1")
	rec = httptest.NewRecorder()
	h.HandleExport(rec, authed(httptest.NewRequest(http.MethodGet, "/v1/consultation/export", nil)))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Consultation == nil {
		t.Fatalf("expected conflict with the idle consultation attached, got %d", rec.Code)
	}
}

func TestHandlerCloseAndInvalidBody(t *testing.T) {
	h, r := newTestHandler(&fakeProvider{}, "sk-test")
	defer r.Stop()
	r.Get("client-1")

	rec := httptest.NewRecorder()
	h.HandleUpdateInput(rec, authed(httptest.NewRequest(http.MethodPut, "/v1/consultation/input", strings.NewReader("{"))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleClose(rec, authed(httptest.NewRequest(http.MethodDelete, "/v1/consultation", nil)))
	if rec.Code != http.StatusNoContent || r.Len() != 0 {
		t.Fatalf("expected 204 and no sessions, got %d len=%d", rec.Code, r.Len())
	}

	rec = httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/v1/consultation", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
