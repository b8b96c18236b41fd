package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase  = "http://localhost:8080"
	defaultSymptoms = "I have a mild headache and feel tired"
)

var (
	apiBase  string
	token    string
	apiKey   string
	symptoms string
	client   = &http.Client{Timeout: 60 * time.Second}
)

func main() {
	fmt.Println("=== Curo E2E Smoke Test ===")
	fmt.Println()

	apiBase = strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBase), "/")
	apiKey = getEnv("SMOKE_OPENAI_API_KEY", "")
	symptoms = getEnv("SMOKE_SYMPTOMS", defaultSymptoms)

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("API Key: %s\n", maskString(apiKey))
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Start Session", testStartSession},
		{"Save Credential", testSaveCredential},
		{"Update Input", testUpdateInput},
		{"Submit", testSubmit},
		{"Export", testExport},
		{"New Consultation", testReset},
		{"Close Consultation", testClose},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	_, err := call(http.MethodGet, "/healthz", nil, http.StatusOK, nil)
	return err
}

func testStartSession() error {
	var session struct {
		AccessToken string `json:"access_token"`
		ClientID    string `json:"client_id"`
	}
	if _, err := call(http.MethodPost, "/v1/auth/session", nil, http.StatusOK, &session); err != nil {
		return err
	}
	if session.AccessToken == "" {
		return fmt.Errorf("empty access token")
	}
	token = session.AccessToken
	return nil
}

// Without SMOKE_OPENAI_API_KEY the server-wide key (or mock mode) is used.
func testSaveCredential() error {
	if apiKey == "" {
		fmt.Print("(skipped, using server key) ")
		return nil
	}
	_, err := call(http.MethodPut, "/v1/credential", map[string]string{"api_key": apiKey}, http.StatusOK, nil)
	return err
}

func testUpdateInput() error {
	payload := map[string]any{
		"symptoms":         symptoms,
		"include_diet":     true,
		"include_exercise": true,
	}
	var snap snapshot
	if _, err := call(http.MethodPut, "/v1/consultation/input", payload, http.StatusOK, &snap); err != nil {
		return err
	}
	if snap.ThemeClass != "theme-combined" {
		return fmt.Errorf("expected theme-combined, got %q", snap.ThemeClass)
	}
	return nil
}

func testSubmit() error {
	var snap snapshot
	if _, err := call(http.MethodPost, "/v1/consultation/submit", nil, http.StatusOK, &snap); err != nil {
		return err
	}
	if snap.Phase != "resulted" || snap.Advice == nil || len(snap.Advice.ReliefSteps) == 0 {
		return fmt.Errorf("unexpected result: phase=%s", snap.Phase)
	}
	fmt.Printf("(category=%s degraded=%t) ", snap.Advice.CategoryLabel, snap.Degraded)
	return nil
}

func testExport() error {
	resp, err := call(http.MethodGet, "/v1/consultation/export", nil, http.StatusOK, nil)
	if err != nil {
		return err
	}
	if strings.HasPrefix(resp.header.Get("Content-Type"), "application/pdf") {
		if !bytes.HasPrefix(resp.body, []byte("%PDF-")) {
			return fmt.Errorf("inline export is not a PDF")
		}
		return nil
	}

	var link struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.body, &link); err != nil || link.URL == "" {
		return fmt.Errorf("expected export link, got %s", string(resp.body))
	}
	return nil
}

func testReset() error {
	var snap snapshot
	if _, err := call(http.MethodPost, "/v1/consultation/reset", nil, http.StatusOK, &snap); err != nil {
		return err
	}
	if snap.Phase != "idle" || snap.ThemeClass != "" {
		return fmt.Errorf("unexpected state after reset: phase=%s theme=%q", snap.Phase, snap.ThemeClass)
	}
	return nil
}

func testClose() error {
	_, err := call(http.MethodDelete, "/v1/consultation", nil, http.StatusNoContent, nil)
	return err
}

// Helper functions

type snapshot struct {
	Phase      string `json:"phase"`
	ThemeClass string `json:"theme_class"`
	Degraded   bool   `json:"degraded"`
	Advice     *struct {
		CategoryLabel string   `json:"category_label"`
		ReliefSteps   []string `json:"relief_steps"`
	} `json:"advice"`
}

type response struct {
	header http.Header
	body   []byte
}

func call(method, path string, payload any, wantStatus int, out any) (response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return response{}, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return response{}, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return response{}, err
	}
	if resp.StatusCode != wantStatus {
		return response{}, fmt.Errorf("status=%d body=%s", resp.StatusCode, truncate(data, 4096))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return response{}, fmt.Errorf("decode failed: %w", err)
		}
	}
	return response{header: resp.Header, body: data}, nil
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
