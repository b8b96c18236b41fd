package blob

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	appcfg "github.com/fdg312/curo/internal/config"
)

func TestNewStoreLocalForced(t *testing.T) {
	var buf bytes.Buffer

	store, mode, err := NewStore(appcfg.BlobConfig{Mode: appcfg.BlobModeLocal}, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal || store != nil {
		t.Fatalf("expected nil store in local mode, got store=%v mode=%s", store, mode)
	}
	if !strings.Contains(buf.String(), "mode=local (forced)") {
		t.Fatalf("expected local mode log, got: %s", buf.String())
	}
}

func TestNewStoreAutoFallsBackToLocal(t *testing.T) {
	var buf bytes.Buffer

	store, mode, err := NewStore(appcfg.BlobConfig{Mode: appcfg.BlobModeAuto}, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal || store != nil {
		t.Fatalf("expected local fallback, got store=%v mode=%s", store, mode)
	}
	if !strings.Contains(buf.String(), "code=s3_not_configured") {
		t.Fatalf("expected diagnostics in log, got: %s", buf.String())
	}
}

func TestNewStoreS3MissingRequired(t *testing.T) {
	store, mode, err := NewStore(appcfg.BlobConfig{
		Mode: appcfg.BlobModeS3,
		S3:   appcfg.S3Config{Endpoint: "https://storage.yandexcloud.net"},
	}, nil)
	if err == nil {
		t.Fatal("expected error when mode=s3 and required env are missing")
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestS3StoreLink(t *testing.T) {
	cfg := appcfg.S3Config{
		Endpoint:        "http://127.0.0.1:9000",
		Region:          "us-east-1",
		Bucket:          "exports",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicBaseURL:   "https://cdn.example.com/exports/",
	}

	t.Run("presigned", func(t *testing.T) {
		store, err := NewS3Store(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		link, err := store.Link(context.Background(), "consultations/a.pdf", 5*time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(link, "consultations/a.pdf") || !strings.Contains(link, "X-Amz-Signature") {
			t.Fatalf("expected presigned URL, got %s", link)
		}
	})

	t.Run("public", func(t *testing.T) {
		publicCfg := cfg
		publicCfg.PreferPublicURL = true
		store, err := NewS3Store(publicCfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		link, err := store.Link(context.Background(), "consultations/a.pdf", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link != "https://cdn.example.com/exports/consultations/a.pdf" {
			t.Fatalf("unexpected public link: %s", link)
		}
	})
}
