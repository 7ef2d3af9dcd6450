package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("BATCH_CONCURRENCY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-image-preview" {
		t.Fatalf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.UploadMaxBytes != 12<<20 {
		t.Fatalf("UploadMaxBytes = %d, want %d", cfg.UploadMaxBytes, 12<<20)
	}
	if cfg.BatchConcurrency != 2 {
		t.Fatalf("BatchConcurrency = %d, want 2", cfg.BatchConcurrency)
	}
	if cfg.RenderTimeout != 300*time.Second {
		t.Fatalf("RenderTimeout = %s, want 300s", cfg.RenderTimeout)
	}
}

func TestLoadConfigRunsWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadConfigRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("BATCH_CONCURRENCY", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for BATCH_CONCURRENCY=0")
	}
}

func TestLoadConfigSplitsOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, http://localhost:5173 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://app.example.com", "http://localhost:5173"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v", cfg.AllowedOrigins)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}
