package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/curo/internal/advice"
)

type fakeStore struct {
	puts    map[string][]byte
	putErr  error
	lastTTL time.Duration
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[key] = data
	return nil
}

func (f *fakeStore) Link(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.lastTTL = ttl
	return "https://blob.example.com/" + key, nil
}

func sampleAdvice() advice.HealthAdvice {
	return advice.HealthAdvice{
		Category:      advice.CategoryMild,
		CategoryLabel: "Mild",
		ReliefSteps:   []string{"Rest", "Hydrate"},
		DietTips:      &advice.DietTips{Foods: []string{"Oats", "Ginger"}, Recipes: []string{"Porridge", "Ginger tea"}},
		ExerciseTips:  &advice.ExerciseTips{Exercises: []string{"Neck stretch", "Walking — 15 min"}},
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(advice.Input{Symptoms: "Kopfschmerzen, müde"}, sampleAdvice(), false, time.Now())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", data[:8])
	}
}

func TestRenderPDFFallbackAdvice(t *testing.T) {
	parsed := advice.Parse("You should rest.")
	data, err := RenderPDF(advice.Input{Symptoms: "tired"}, parsed.Advice, parsed.Degraded(), time.Now())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected PDF bytes")
	}
}

func TestExportInlineWithoutStore(t *testing.T) {
	doc, err := NewService(nil, time.Minute).Export(context.Background(), "client-1", advice.Input{Symptoms: "cough"}, sampleAdvice(), false)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !doc.Inline() || !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Fatalf("expected inline PDF, got link=%q len=%d", doc.Link, len(doc.Data))
	}
}

func TestExportUploadsToStore(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, 10*time.Minute)

	doc, err := svc.Export(context.Background(), "client-1", advice.Input{Symptoms: "cough"}, sampleAdvice(), false)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Inline() || !strings.HasPrefix(doc.Link, "https://blob.example.com/consultations/client-1/") {
		t.Fatalf("unexpected link: %q", doc.Link)
	}
	if len(store.puts) != 1 || store.lastTTL != 10*time.Minute || doc.ExpiresIn != 10*time.Minute {
		t.Fatalf("unexpected store usage: puts=%d ttl=%s", len(store.puts), store.lastTTL)
	}
}

func TestExportUploadFailure(t *testing.T) {
	store := &fakeStore{putErr: errors.New("bucket gone")}

	_, err := NewService(store, time.Minute).Export(context.Background(), "client-1", advice.Input{}, sampleAdvice(), false)
	if err == nil || !strings.Contains(err.Error(), "bucket gone") {
		t.Fatalf("expected upload error, got %v", err)
	}
}
