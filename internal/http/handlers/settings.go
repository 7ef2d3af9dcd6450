package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type settingsResponse struct {
	APIKeySet bool   `json:"api_key_set"`
	Model     string `json:"model"`
	BaseURL   string `json:"base_url,omitempty"`
}

// SettingsShow reports how the generative provider is configured; the
// key itself is never echoed back.
func (a *App) SettingsShow(w http.ResponseWriter, r *http.Request) {
	resp := settingsResponse{Model: a.cfg.GeminiModel, BaseURL: a.cfg.GeminiBaseURL}
	if a.configurer != nil {
		resp.APIKeySet = a.configurer.Configured()
	}
	a.json(w, http.StatusOK, resp)
}

type geminiKeyRequest struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
}

// SettingsUpdateGeminiKey swaps the provider credentials at runtime and
// persists them when a database is attached.
func (a *App) SettingsUpdateGeminiKey(w http.ResponseWriter, r *http.Request) {
	if a.configurer == nil {
		a.error(w, r, http.StatusServiceUnavailable, "persistence_unavailable", "persistence_unavailable")
		return
	}
	var req geminiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	if err := a.configurer.Configure(req.APIKey, req.BaseURL); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	if a.settings != nil {
		ctx := r.Context()
		if err := a.settings.SetGeminiAPIKey(ctx, req.APIKey); err != nil {
			a.logger.Error().Err(err).Msg("handlers: persist gemini key failed")
			a.error(w, r, http.StatusServiceUnavailable, "persistence_unavailable", "persistence_unavailable")
			return
		}
		if req.BaseURL != "" {
			if err := a.settings.SetGeminiBaseURL(ctx, req.BaseURL); err != nil {
				a.logger.Error().Err(err).Msg("handlers: persist gemini base url failed")
				a.error(w, r, http.StatusServiceUnavailable, "persistence_unavailable", "persistence_unavailable")
				return
			}
		}
	}
	a.json(w, http.StatusOK, settingsResponse{
		APIKeySet: true,
		Model:     a.cfg.GeminiModel,
		BaseURL:   req.BaseURL,
	})
}
