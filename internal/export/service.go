package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/curo/internal/advice"
	"github.com/fdg312/curo/internal/blob"
)

const ContentTypePDF = "application/pdf"

// Document is either inline bytes or a link to an uploaded copy.
type Document struct {
	Data      []byte
	Link      string
	ExpiresIn time.Duration
}

func (d Document) Inline() bool {
	return d.Link == ""
}

type Service struct {
	store blob.Store // nil: return documents inline
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store blob.Store, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl, now: time.Now}
}

// Export renders the result and, when a store is configured, uploads it
// under a random key and returns a short-lived link.
func (s *Service) Export(ctx context.Context, clientID string, in advice.Input, a advice.HealthAdvice, degraded bool) (Document, error) {
	now := s.now()
	data, err := RenderPDF(in, a, degraded, now)
	if err != nil {
		return Document{}, err
	}
	if s.store == nil {
		return Document{Data: data}, nil
	}

	key := fmt.Sprintf("consultations/%s/%s-%s.pdf", clientID, now.UTC().Format("20060102T150405Z"), uuid.NewString())
	if err := s.store.Put(ctx, key, data, ContentTypePDF); err != nil {
		return Document{}, fmt.Errorf("upload export: %w", err)
	}
	link, err := s.store.Link(ctx, key, s.ttl)
	if err != nil {
		return Document{}, fmt.Errorf("link export: %w", err)
	}
	return Document{Link: link, ExpiresIn: s.ttl}, nil
}
