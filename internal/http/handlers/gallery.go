package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/woodchen-ink/aice-ps/internal/editor"
	"github.com/woodchen-ink/aice-ps/internal/infra"
	"github.com/woodchen-ink/aice-ps/internal/sqlinline"
)

type gallerySaveRequest struct {
	Title      string          `json:"title"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

type galleryImage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GallerySave stores the session's current image in the shared gallery.
func (a *App) GallerySave(w http.ResponseWriter, r *http.Request) {
	if a.sql == nil {
		a.error(w, r, http.StatusServiceUnavailable, "persistence_unavailable", "persistence_unavailable")
		return
	}
	var req gallerySaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	artifact, err := a.service.Current(chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}

	var props any
	if len(req.Properties) > 0 {
		props = string(req.Properties)
	}
	var img galleryImage
	img.Title = req.Title
	img.MimeType = artifact.MimeType
	row := a.sql.QueryRow(r.Context(), sqlinline.QInsertGalleryImage,
		req.Title, artifact.MimeType, artifact.Data, props)
	if err := row.Scan(&img.ID, &img.CreatedAt); err != nil {
		a.logger.Error().Err(err).Msg("handlers: gallery insert failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal")
		return
	}
	a.json(w, http.StatusCreated, img)
}

// GalleryList returns recent gallery entries, newest first.
func (a *App) GalleryList(w http.ResponseWriter, r *http.Request) {
	if a.sql == nil {
		a.error(w, r, http.StatusServiceUnavailable, "persistence_unavailable", "persistence_unavailable")
		return
	}
	const limit = 50
	rows, err := a.sql.Query(r.Context(), sqlinline.QListGalleryImages, limit)
	if err != nil {
		a.logger.Error().Err(err).Msg("handlers: gallery list failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal")
		return
	}
	defer rows.Close()

	images := make([]galleryImage, 0, limit)
	for rows.Next() {
		var img galleryImage
		if err := rows.Scan(&img.ID, &img.Title, &img.MimeType, &img.Size, &img.CreatedAt); err != nil {
			a.logger.Error().Err(err).Msg("handlers: gallery scan failed")
			a.error(w, r, http.StatusInternalServerError, "internal", "internal")
			return
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		a.logger.Error().Err(err).Msg("handlers: gallery rows failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal")
		return
	}
	a.json(w, http.StatusOK, struct {
		Images []galleryImage `json:"images"`
	}{Images: images})
}

// GalleryDownload streams one stored image back as raw bytes.
func (a *App) GalleryDownload(w http.ResponseWriter, r *http.Request) {
	if a.sql == nil {
		a.error(w, r, http.StatusServiceUnavailable, "persistence_unavailable", "persistence_unavailable")
		return
	}
	var (
		img  galleryImage
		data []byte
	)
	row := a.sql.QueryRow(r.Context(), sqlinline.QSelectGalleryImage, chi.URLParam(r, "image_id"))
	if err := row.Scan(&img.ID, &img.Title, &img.MimeType, &data, &img.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			a.error(w, r, http.StatusNotFound, "not_found", "not_found")
			return
		}
		a.logger.Error().Err(err).Msg("handlers: gallery select failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal")
		return
	}
	artifact := editor.Artifact{Data: data, MimeType: img.MimeType}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Title+"."+artifact.Ext()))
	a.writeArtifact(w, artifact)
}
