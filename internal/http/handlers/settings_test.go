package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/woodchen-ink/aice-ps/internal/infra"
)

type stubConfigurer struct {
	apiKey  string
	baseURL string
}

func (c *stubConfigurer) Configure(apiKey, baseURL string) error {
	c.apiKey = apiKey
	c.baseURL = baseURL
	return nil
}

func (c *stubConfigurer) Configured() bool { return c.apiKey != "" }

func settingsApp(configurer GeneratorConfigurer) *App {
	return NewApp(Options{
		Config:     &infra.Config{GeminiModel: "gemini-2.5-flash-image-preview"},
		Logger:     zerolog.New(io.Discard),
		Configurer: configurer,
	})
}

func TestSettingsShowReportsKeyState(t *testing.T) {
	app := settingsApp(&stubConfigurer{apiKey: "k"})
	rec := doJSON(t, http.HandlerFunc(app.SettingsShow), http.MethodGet, "/v1/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.APIKeySet {
		t.Fatal("expected api_key_set")
	}
	if resp.Model != "gemini-2.5-flash-image-preview" {
		t.Fatalf("model = %q", resp.Model)
	}
}

func TestSettingsUpdateConfiguresProvider(t *testing.T) {
	configurer := &stubConfigurer{}
	app := settingsApp(configurer)
	rec := doJSON(t, http.HandlerFunc(app.SettingsUpdateGeminiKey), http.MethodPut, "/v1/settings/gemini-key", geminiKeyRequest{
		APIKey:  "new-key",
		BaseURL: "https://proxy.example/v1beta",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if configurer.apiKey != "new-key" || configurer.baseURL != "https://proxy.example/v1beta" {
		t.Fatalf("configurer = %+v", configurer)
	}
}

func TestSettingsUpdateRejectsEmptyKey(t *testing.T) {
	app := settingsApp(&stubConfigurer{})
	rec := doJSON(t, http.HandlerFunc(app.SettingsUpdateGeminiKey), http.MethodPut, "/v1/settings/gemini-key", geminiKeyRequest{APIKey: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSettingsUpdateWithoutConfigurerUnavailable(t *testing.T) {
	app := settingsApp(nil)
	rec := doJSON(t, http.HandlerFunc(app.SettingsUpdateGeminiKey), http.MethodPut, "/v1/settings/gemini-key", geminiKeyRequest{APIKey: "k"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
