package auth

import (
	"encoding/json"
	"log"
	"net/http"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleStartSession serves POST /v1/auth/session
func (h *Handlers) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.StartSession()
	if err != nil {
		log.Printf("auth session failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to start session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
