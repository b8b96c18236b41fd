package memory

import (
	"context"
	"testing"
	"time"
)

func TestCredentialsRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := New()

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st.now = func() time.Time { return clock }

	if _, found, err := st.GetCredential(ctx, "client-1"); err != nil || found {
		t.Fatalf("expected not found, got found=%t err=%v", found, err)
	}

	created, err := st.UpsertCredential(ctx, " client-1 ", "sk-first")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.ClientID != "client-1" || !created.CreatedAt.Equal(clock) {
		t.Fatalf("unexpected created row: %+v", created)
	}

	clock = clock.Add(time.Hour)
	updated, err := st.UpsertCredential(ctx, "client-1", "sk-second")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if updated.Secret != "sk-second" || !updated.CreatedAt.Equal(created.CreatedAt) || !updated.UpdatedAt.Equal(clock) {
		t.Fatalf("unexpected updated row: %+v", updated)
	}

	got, found, err := st.GetCredential(ctx, "client-1")
	if err != nil || !found || got.Secret != "sk-second" {
		t.Fatalf("expected stored secret, got %+v found=%t err=%v", got, found, err)
	}

	if err := st.DeleteCredential(ctx, "client-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := st.GetCredential(ctx, "client-1"); found {
		t.Fatal("expected credential to be deleted")
	}
	if err := st.DeleteCredential(ctx, "client-1"); err != nil {
		t.Fatalf("deleting a missing credential must not fail: %v", err)
	}
}
