package consultation

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/fdg312/curo/internal/export"
	"github.com/fdg312/curo/internal/userctx"
)

type Handler struct {
	registry *Registry
	exporter *export.Service
}

func NewHandler(registry *Registry, exporter *export.Service) *Handler {
	return &Handler{registry: registry, exporter: exporter}
}

// HandleGet serves GET /v1/consultation
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// HandleUpdateInput serves PUT /v1/consultation/input
func (h *Handler) HandleUpdateInput(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var p Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", nil)
		return
	}

	snap, err := c.Update(p)
	if err != nil {
		h.handleError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleSubmit serves POST /v1/consultation/submit
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	snap, err := c.Submit(r.Context())
	if err != nil {
		h.handleError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleReset serves POST /v1/consultation/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	snap, err := c.NewConsultation()
	if err != nil {
		h.handleError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleClose serves DELETE /v1/consultation
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	clientID, ok := userctx.GetClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}
	h.registry.Close(clientID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport serves GET /v1/consultation/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	clientID, ok := userctx.GetClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}
	c, ok := h.registry.Peek(clientID)
	if !ok {
		writeError(w, http.StatusConflict, "no_result", "Submit your symptoms before exporting.", nil)
		return
	}
	snap := c.Snapshot()
	if snap.Phase != PhaseResulted || snap.Advice == nil {
		writeError(w, http.StatusConflict, "no_result", "Submit your symptoms before exporting.", &snap)
		return
	}

	doc, err := h.exporter.Export(r.Context(), clientID, snap.Input, *snap.Advice, snap.Degraded)
	if err != nil {
		log.Printf("consultation export failed: client=%s err=%v", clientID, err)
		writeError(w, http.StatusInternalServerError, "export_failed", "Failed to export advice", nil)
		return
	}

	if doc.Inline() {
		w.Header().Set("Content-Type", export.ContentTypePDF)
		w.Header().Set("Content-Disposition", `attachment; filename="health-advice.pdf"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Data)
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{URL: doc.Link, ExpiresIn: int64(doc.ExpiresIn.Seconds())})
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	clientID, ok := userctx.GetClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return nil, false
	}
	return h.registry.Get(clientID), true
}

func (h *Handler) handleError(w http.ResponseWriter, err error, snap Snapshot) {
	switch {
	case errors.Is(err, ErrSymptomsRequired):
		writeError(w, http.StatusBadRequest, "symptoms_required", noticeSymptomsRequired.Title, &snap)
	case errors.Is(err, ErrCredentialMissing):
		writeError(w, http.StatusBadRequest, "credential_missing", noticeCredentialMissing.Description, &snap)
	case errors.Is(err, ErrAdviceUnavailable):
		writeError(w, http.StatusBadGateway, "advice_unavailable", noticeAdviceFailed.Description, &snap)
	case errors.Is(err, ErrBusy):
		writeError(w, http.StatusConflict, "consultation_busy", "A request is already in progress", &snap)
	case errors.Is(err, ErrNotEditable):
		writeError(w, http.StatusConflict, "not_editable", "Start a new consultation to change your input", &snap)
	case errors.Is(err, ErrClosed):
		writeError(w, http.StatusGone, "consultation_closed", "Consultation was closed", nil)
	default:
		log.Printf("consultation request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error", &snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, snap *Snapshot) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}, Consultation: snap})
}
