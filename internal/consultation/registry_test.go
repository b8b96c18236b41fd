package consultation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRegistry(p *fakeProvider, ttl time.Duration) (*Registry, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(p, staticCredentials{key: "sk-test"}, ttl)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistryGetReusesController(t *testing.T) {
	r, _ := newTestRegistry(&fakeProvider{}, time.Minute)
	defer r.Stop()

	a := r.Get("client-1")
	if b := r.Get("client-1"); a != b {
		t.Fatal("expected same controller for same client")
	}
	if c := r.Get("client-2"); c == a {
		t.Fatal("expected separate controllers per client")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", r.Len())
	}
}

func TestRegistryClientsDoNotShareTheme(t *testing.T) {
	r, _ := newTestRegistry(&fakeProvider{}, time.Minute)
	defer r.Stop()

	a, b := r.Get("client-1"), r.Get("client-2")
	_, _ = a.SetIncludeDiet(true)
	if got := b.Snapshot().ThemeClass; got != "" {
		t.Fatalf("expected untouched theme for other client, got %q", got)
	}
}

func TestRegistrySweepExpiresIdle(t *testing.T) {
	r, now := newTestRegistry(&fakeProvider{}, 10*time.Minute)
	defer r.Stop()

	old := r.Get("old")
	_, _ = old.SetIncludeExercise(true)

	*now = now.Add(8 * time.Minute)
	r.Get("fresh")

	*now = now.Add(5 * time.Minute)
	if n := r.Sweep(); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", r.Len())
	}
	if got := old.Snapshot().ThemeClass; got != "" {
		t.Fatalf("expected swept session theme reverted, got %q", got)
	}
	if r.Get("old") == old {
		t.Fatal("expected a fresh controller after sweep")
	}
}

func TestRegistrySweepKeepsSubmitting(t *testing.T) {
	p := &fakeProvider{
		reply:   `{"category":"Mild","reliefSteps":["Rest"]}`,
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	r, now := newTestRegistry(p, time.Minute)
	defer r.Stop()

	c := r.Get("client-1")
	_, _ = c.SetSymptoms("headache")
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-p.entered

	*now = now.Add(time.Hour)
	if n := r.Sweep(); n != 0 {
		t.Fatalf("expected submitting session kept, swept %d", n)
	}

	close(p.block)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestRegistryCloseAndStop(t *testing.T) {
	r, _ := newTestRegistry(&fakeProvider{}, 0)

	r.Get("client-1")
	r.Get("client-2")
	if !r.Close("client-1") || r.Close("client-1") {
		t.Fatal("expected Close to report presence once")
	}
	if n := r.Sweep(); n != 0 {
		t.Fatalf("expected sweep disabled without ttl, got %d", n)
	}

	r.StartSweeper(time.Millisecond)
	r.Stop()
	r.Stop()
	if r.Len() != 0 {
		t.Fatalf("expected no sessions after stop, got %d", r.Len())
	}
}

type blockingCredentials struct {
	entered chan struct{}
	release chan struct{}
}

func (b blockingCredentials) Lookup(ctx context.Context, clientID string) (string, error) {
	if clientID == "slow" {
		b.entered <- struct{}{}
		<-b.release
	}
	return "sk-test", nil
}

func TestRegistryNotStalledByCredentialLookup(t *testing.T) {
	creds := blockingCredentials{entered: make(chan struct{}, 1), release: make(chan struct{})}
	p := &fakeProvider{reply: `{"category":"Mild","reliefSteps":["Rest"]}`}
	r := NewRegistry(p, creds, time.Minute)
	defer r.Stop()

	slow := r.Get("slow")
	_, _ = slow.SetSymptoms("headache")
	done := make(chan error, 1)
	go func() {
		_, err := slow.Submit(context.Background())
		done <- err
	}()
	<-creds.entered

	others := make(chan Snapshot, 1)
	go func() {
		_ = r.Get("slow").Snapshot()
		r.Sweep()
		others <- r.Get("other").Snapshot()
	}()
	select {
	case snap := <-others:
		if snap.Phase != PhaseIdle {
			t.Fatalf("expected idle consultation for other client, got %s", snap.Phase)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked while a credential lookup was in flight")
	}

	snap := slow.Snapshot()
	if snap.Phase != PhaseIdle || snap.Editable {
		t.Fatalf("expected idle and read-only during lookup, got phase=%s editable=%v", snap.Phase, snap.Editable)
	}
	if _, err := slow.SetSymptoms("other"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while credential pending, got %v", err)
	}

	close(creds.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Calls() != 1 {
		t.Fatalf("expected one request, got %d", p.Calls())
	}
}

func TestRegistryPeekDoesNotCreate(t *testing.T) {
	r, _ := newTestRegistry(&fakeProvider{}, time.Minute)
	defer r.Stop()

	if _, ok := r.Peek("client-1"); ok || r.Len() != 0 {
		t.Fatalf("expected no session from Peek, len=%d", r.Len())
	}
	c := r.Get("client-1")
	if got, ok := r.Peek("client-1"); !ok || got != c {
		t.Fatal("expected Peek to return the live controller")
	}
	c.Close()
	if _, ok := r.Peek("client-1"); ok {
		t.Fatal("expected Peek to skip a closed controller")
	}
	if r.Get("client-1") == c {
		t.Fatal("expected Get to replace a closed controller")
	}
}
