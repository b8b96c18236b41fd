package storage

import (
	"context"
	"time"
)

// Credential is a completion-service key saved for one client.
type Credential struct {
	ClientID  string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialsStorage keeps at most one credential per client id.
type CredentialsStorage interface {
	// GetCredential returns the credential for clientID. bool=false means not found.
	GetCredential(ctx context.Context, clientID string) (Credential, bool, error)

	// UpsertCredential creates or replaces the credential for clientID.
	UpsertCredential(ctx context.Context, clientID, secret string) (Credential, error)

	// DeleteCredential removes the credential; deleting a missing one is not an error.
	DeleteCredential(ctx context.Context, clientID string) error
}

// Storage is the backend selected at startup (memory or Postgres).
type Storage interface {
	CredentialsStorage

	Ping(ctx context.Context) error

	// Close закрывает соединение (для Postgres)
	Close() error
}
