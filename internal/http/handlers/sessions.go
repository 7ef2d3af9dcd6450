package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

type sessionResponse struct {
	SessionID string                 `json:"session_id"`
	History   editor.HistorySnapshot `json:"history"`
}

type imageResponse struct {
	Image   imagePayload           `json:"image"`
	History editor.HistorySnapshot `json:"history"`
}

// SessionCreate starts a new editing session.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	sess := a.service.CreateSession()
	a.json(w, http.StatusCreated, sessionResponse{SessionID: sess.ID})
}

// SessionDelete discards a session and its history.
func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	a.service.DeleteSession(chi.URLParam(r, "session_id"))
	w.WriteHeader(http.StatusNoContent)
}

type uploadRequest struct {
	Image imagePayload `json:"image"`
}

// ImageUpload pushes an uploaded image as the session's next history entry.
func (a *App) ImageUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	artifact, err := req.Image.artifact()
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	snap, err := a.service.Upload(chi.URLParam(r, "session_id"), artifact.Data, artifact.MimeType)
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, sessionResponse{SessionID: chi.URLParam(r, "session_id"), History: snap})
}

// ImageCurrent returns the artifact under the history cursor.
func (a *App) ImageCurrent(w http.ResponseWriter, r *http.Request) {
	artifact, err := a.service.Current(chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.writeArtifact(w, artifact)
}

// HistoryShow returns the session's history snapshot.
func (a *App) HistoryShow(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Snapshot(chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

// HistoryEntry serves the raw image stored at one history index.
func (a *App) HistoryEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	artifact, err := a.service.EntryAt(chi.URLParam(r, "session_id"), index)
	if err != nil {
		if errors.Is(err, editor.ErrSessionNotFound) {
			a.editorError(w, r, err)
			return
		}
		a.error(w, r, http.StatusNotFound, "not_found", "not_found")
		return
	}
	a.writeArtifact(w, artifact)
}

// HistoryUndo steps the cursor back.
func (a *App) HistoryUndo(w http.ResponseWriter, r *http.Request) {
	artifact, snap, err := a.service.Undo(chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{Image: toPayload(artifact), History: snap})
}

// HistoryRedo steps the cursor forward.
func (a *App) HistoryRedo(w http.ResponseWriter, r *http.Request) {
	artifact, snap, err := a.service.Redo(chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{Image: toPayload(artifact), History: snap})
}

type jumpRequest struct {
	Index int `json:"index"`
}

// HistoryJump moves the cursor to an arbitrary entry.
func (a *App) HistoryJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	artifact, snap, err := a.service.Jump(chi.URLParam(r, "session_id"), req.Index)
	if err != nil {
		if errors.Is(err, editor.ErrSessionNotFound) {
			a.editorError(w, r, err)
			return
		}
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	a.json(w, http.StatusOK, imageResponse{Image: toPayload(artifact), History: snap})
}

// HistoryReset clears the session back to its empty state.
func (a *App) HistoryReset(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Reset(chi.URLParam(r, "session_id"))
	if err != nil {
		a.editorError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{SessionID: chi.URLParam(r, "session_id"), History: snap})
}

// editorError maps service errors onto HTTP responses. Provider failures
// surface as 502 so the front end can distinguish "retry the edit" from
// "fix the request".
func (a *App) editorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound):
		a.error(w, r, http.StatusNotFound, "session_not_found", "session_not_found")
	case errors.Is(err, editor.ErrImageTooLarge):
		a.error(w, r, http.StatusRequestEntityTooLarge, "image_too_large", "image_too_large")
	case errors.Is(err, editor.ErrUnsupportedImage), errors.Is(err, editor.ErrEmptyImage):
		a.error(w, r, http.StatusUnsupportedMediaType, "unsupported_image", "unsupported_image")
	case errors.Is(err, editor.ErrEmptyHistory):
		a.error(w, r, http.StatusConflict, "empty_history", "empty_history")
	case errors.Is(err, editor.ErrNothingToUndo):
		a.error(w, r, http.StatusConflict, "nothing_to_undo", "nothing_to_undo")
	case errors.Is(err, editor.ErrNothingToRedo):
		a.error(w, r, http.StatusConflict, "nothing_to_redo", "nothing_to_redo")
	case errors.Is(err, editor.ErrNoLastAction):
		a.error(w, r, http.StatusConflict, "no_last_action", "no_last_action")
	case errors.Is(err, editor.ErrInvalidCrop):
		a.error(w, r, http.StatusBadRequest, "invalid_crop", "invalid_crop")
	default:
		a.logger.Error().Err(err).Msg("handlers: generation failed")
		a.error(w, r, http.StatusBadGateway, "generation_failed", "generation_failed")
	}
}
