package credentials

import "time"

type SaveRequest struct {
	APIKey string `json:"api_key"`
}

// StatusResponse never carries the secret itself.
type StatusResponse struct {
	Configured bool       `json:"configured"`
	Source     string     `json:"source"` // client | server | none
	Masked     string     `json:"masked,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

const (
	SourceClient = "client"
	SourceServer = "server"
	SourceNone   = "none"
)
