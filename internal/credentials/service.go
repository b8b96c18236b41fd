package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/curo/internal/storage"
)

var (
	ErrKeyRequired   = errors.New("api key required")
	ErrKeyMalformed  = errors.New("openai api keys should start with 'sk-'")
	ErrClientMissing = errors.New("client id is required")
)

const keyPrefix = "sk-"

// Service captures per-client completion keys. When a client has not saved
// one, Lookup falls back to the server-wide key, which may also be empty.
type Service struct {
	storage  storage.CredentialsStorage
	fallback string
}

func NewService(st storage.CredentialsStorage, fallbackKey string) *Service {
	return &Service{storage: st, fallback: strings.TrimSpace(fallbackKey)}
}

func Validate(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}
	if !strings.HasPrefix(key, keyPrefix) {
		return ErrKeyMalformed
	}
	return nil
}

func (s *Service) Save(ctx context.Context, clientID, key string) (StatusResponse, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return StatusResponse{}, ErrClientMissing
	}
	if err := Validate(key); err != nil {
		return StatusResponse{}, err
	}

	row, err := s.storage.UpsertCredential(ctx, clientID, strings.TrimSpace(key))
	if err != nil {
		return StatusResponse{}, fmt.Errorf("save credential: %w", err)
	}
	updated := row.UpdatedAt
	return StatusResponse{
		Configured: true,
		Source:     SourceClient,
		Masked:     Mask(row.Secret),
		UpdatedAt:  &updated,
	}, nil
}

func (s *Service) Clear(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ErrClientMissing
	}
	return s.storage.DeleteCredential(ctx, clientID)
}

func (s *Service) Status(ctx context.Context, clientID string) (StatusResponse, error) {
	row, found, err := s.get(ctx, clientID)
	if err != nil {
		return StatusResponse{}, err
	}
	if found {
		updated := row.UpdatedAt
		return StatusResponse{Configured: true, Source: SourceClient, Masked: Mask(row.Secret), UpdatedAt: &updated}, nil
	}
	if s.fallback != "" {
		return StatusResponse{Configured: true, Source: SourceServer, Masked: Mask(s.fallback)}, nil
	}
	return StatusResponse{Configured: false, Source: SourceNone}, nil
}

// Lookup returns the key to use for clientID, or "" when none is available.
func (s *Service) Lookup(ctx context.Context, clientID string) (string, error) {
	row, found, err := s.get(ctx, clientID)
	if err != nil {
		return "", err
	}
	if found && strings.TrimSpace(row.Secret) != "" {
		return row.Secret, nil
	}
	return s.fallback, nil
}

func (s *Service) get(ctx context.Context, clientID string) (storage.Credential, bool, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return storage.Credential{}, false, nil
	}
	row, found, err := s.storage.GetCredential(ctx, clientID)
	if err != nil {
		return storage.Credential{}, false, fmt.Errorf("load credential: %w", err)
	}
	return row, found, nil
}

// Mask keeps the prefix and the last four characters.
func Mask(secret string) string {
	secret = strings.TrimSpace(secret)
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:3] + "..." + secret[len(secret)-4:]
}
