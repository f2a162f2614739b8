package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CALL_GENERATION_BUDGET", "CALL_CLEANUP_GRACE", "CALL_FETCH_ATTEMPTS", "CALL_FETCH_BACKOFF", "CALL_WEBHOOK_BUDGET", "DEEPGRAM_MODEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":3000" {
		t.Fatalf("unexpected default addr: %s", cfg.Server.Addr)
	}
	if cfg.Call.GenerationBudget != 5*time.Second {
		t.Fatalf("unexpected generation budget: %v", cfg.Call.GenerationBudget)
	}
	if cfg.Call.CleanupGrace != time.Hour {
		t.Fatalf("unexpected cleanup grace: %v", cfg.Call.CleanupGrace)
	}
	if cfg.Call.FetchAttempts != 3 || cfg.Call.FetchBackoff != 2*time.Second {
		t.Fatalf("unexpected fetch policy: %+v", cfg.Call)
	}
	if cfg.Call.WebhookBudget != 14*time.Second {
		t.Fatalf("unexpected webhook budget: %v", cfg.Call.WebhookBudget)
	}
	if cfg.Transcribe.Model != "nova-2" {
		t.Fatalf("unexpected transcription model: %s", cfg.Transcribe.Model)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CALL_GENERATION_BUDGET", "2s")
	t.Setenv("CALL_CLEANUP_GRACE", "10m")
	t.Setenv("CALL_FETCH_ATTEMPTS", "5")
	t.Setenv("CALL_WEBHOOK_BUDGET", "8s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Call.GenerationBudget != 2*time.Second {
		t.Fatalf("unexpected budget: %v", cfg.Call.GenerationBudget)
	}
	if cfg.Call.CleanupGrace != 10*time.Minute {
		t.Fatalf("unexpected grace: %v", cfg.Call.CleanupGrace)
	}
	if cfg.Call.FetchAttempts != 5 {
		t.Fatalf("unexpected attempts: %d", cfg.Call.FetchAttempts)
	}
	if cfg.Call.WebhookBudget != 8*time.Second {
		t.Fatalf("unexpected webhook budget: %v", cfg.Call.WebhookBudget)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CALL_GENERATION_BUDGET", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	if (AIConfig{}).Enabled() {
		t.Fatal("empty config must not be enabled")
	}
	if !(AIConfig{Model: "m", APIKey: "k"}).Enabled() {
		t.Fatal("api key + model should enable")
	}
	if !(AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}).Enabled() {
		t.Fatal("ak/sk + model should enable")
	}
	if (AIConfig{APIKey: "k"}).Enabled() {
		t.Fatal("missing model must not enable")
	}
}
