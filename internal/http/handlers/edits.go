package handlers

import (
	"context"
	"encoding/json"
	"image"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/woodchen-ink/aice-ps/internal/editor"
	"github.com/woodchen-ink/aice-ps/internal/genai"
)

type editRequest struct {
	Prompt  string          `json:"prompt"`
	Hotspot *editor.Hotspot `json:"hotspot,omitempty"`
}

// EditApply runs a localized retouch described in natural language.
func (a *App) EditApply(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	a.apply(w, r, editor.LastAction{
		Kind:        editor.ActionEdit,
		Instruction: genai.BuildEditInstruction(req.Prompt, req.Hotspot),
	})
}

type namedRequest struct {
	Name string `json:"name"`
}

// FilterApply applies a named stylistic filter to the whole image.
func (a *App) FilterApply(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	a.apply(w, r, editor.LastAction{
		Kind:        editor.ActionFilter,
		Instruction: genai.BuildFilterInstruction(req.Name),
	})
}

// AdjustmentApply applies a global photographic adjustment.
func (a *App) AdjustmentApply(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	a.apply(w, r, editor.LastAction{
		Kind:        editor.ActionAdjust,
		Instruction: genai.BuildAdjustmentInstruction(req.Name),
	})
}

// TextureApply blends a named texture over the image.
func (a *App) TextureApply(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	a.apply(w, r, editor.LastAction{
		Kind:        editor.ActionTexture,
		Instruction: genai.BuildTextureInstruction(req.Name),
	})
}

func (a *App) apply(w http.ResponseWriter, r *http.Request, action editor.LastAction) {
	ctx, cancel := a.renderContext(r)
	defer cancel()
	artifact, snap, err := a.service.Apply(ctx, chi.URLParam(r, "session_id"), action)
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{Image: toPayload(artifact), History: snap})
}

// RegenerateLast redoes the most recent generative action against the
// image that preceded it, replacing the current result.
func (a *App) RegenerateLast(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.renderContext(r)
	defer cancel()
	artifact, snap, err := a.service.Regenerate(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{Image: toPayload(artifact), History: snap})
}

type cropRequest struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropApply crops the current image locally, without a provider call.
func (a *App) CropApply(w http.ResponseWriter, r *http.Request) {
	var req cropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	rect := image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height)
	artifact, snap, err := a.service.Crop(chi.URLParam(r, "session_id"), rect)
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{Image: toPayload(artifact), History: snap})
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// Generate creates an image from a text prompt, outside any session.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	ctx, cancel := a.renderContext(r)
	defer cancel()
	artifact, err := a.gen.GenerateImage(ctx, genai.BuildGenerationPrompt(req.Prompt, req.AspectRatio))
	if err != nil {
		a.logger.Error().Err(err).Msg("handlers: text-to-image failed")
		a.error(w, r, http.StatusBadGateway, "generation_failed", "generation_failed")
		return
	}
	a.json(w, http.StatusOK, struct {
		Image imagePayload `json:"image"`
	}{Image: toPayload(artifact)})
}

// renderContext bounds a generative call by the configured render
// timeout rather than the client's connection lifetime.
func (a *App) renderContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), a.cfg.RenderTimeout)
}
