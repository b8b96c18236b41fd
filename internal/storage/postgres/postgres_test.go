package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a migrated database when TEST_DATABASE_URL is set.
func TestCredentialsRoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer st.Close()

	clientID := uuid.NewString()
	defer func() { _ = st.DeleteCredential(context.Background(), clientID) }()

	if _, found, err := st.GetCredential(ctx, clientID); err != nil || found {
		t.Fatalf("expected not found, got found=%t err=%v", found, err)
	}

	first, err := st.UpsertCredential(ctx, clientID, "sk-first")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := st.UpsertCredential(ctx, clientID, "sk-second")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) || second.Secret != "sk-second" {
		t.Fatalf("expected in-place update, got first=%+v second=%+v", first, second)
	}

	if err := st.DeleteCredential(ctx, clientID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := st.GetCredential(ctx, clientID); found {
		t.Fatal("expected credential to be deleted")
	}
}
