package credentials

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fdg312/curo/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet serves GET /v1/credential
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID, ok := userctx.GetClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	resp, err := h.service.Status(r.Context(), clientID)
	if err != nil {
		log.Printf("credential status failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePut serves PUT /v1/credential
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	clientID, ok := userctx.GetClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.Save(r.Context(), clientID, req.APIKey)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete serves DELETE /v1/credential
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	clientID, ok := userctx.GetClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	if err := h.service.Clear(r.Context(), clientID); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrKeyRequired):
		writeError(w, http.StatusBadRequest, "api_key_required", "Please enter your OpenAI API key.")
	case errors.Is(err, ErrKeyMalformed):
		writeError(w, http.StatusBadRequest, "api_key_invalid", "OpenAI API keys should start with 'sk-'.")
	case errors.Is(err, ErrClientMissing):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	default:
		log.Printf("credential request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
