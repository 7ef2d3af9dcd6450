package editor

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"
)

// Generator performs one generative image call: it edits a source artifact
// according to a natural-language instruction and returns the produced
// artifact.
type Generator interface {
	EditImage(ctx context.Context, source Artifact, instruction string) (Artifact, error)
}

// HistorySnapshot is the read-only view of a session's history returned to
// handlers after every mutation.
type HistorySnapshot struct {
	Cursor  int  `json:"cursor"`
	Length  int  `json:"length"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// Service orchestrates editing sessions: it validates uploads, issues
// generative calls, applies local transforms, and keeps each session's
// history consistent.
type Service struct {
	gen       Generator
	sessions  *SessionStore
	maxUpload int64
	logger    zerolog.Logger
}

func NewService(gen Generator, sessions *SessionStore, maxUpload int64, logger zerolog.Logger) *Service {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Service{gen: gen, sessions: sessions, maxUpload: maxUpload, logger: logger}
}

// CreateSession starts a fresh editing session.
func (s *Service) CreateSession() *Session {
	return s.sessions.Create()
}

// DeleteSession discards the session and its history.
func (s *Service) DeleteSession(id string) {
	s.sessions.Delete(id)
}

// Upload validates the payload and pushes it as the session's next history
// entry. Validation happens before anything else; oversized or non-image
// payloads never enter the history.
func (s *Service) Upload(sessionID string, data []byte, mimeType string) (HistorySnapshot, error) {
	if err := ValidateUpload(data, s.maxUpload); err != nil {
		return HistorySnapshot{}, err
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.history.Push(NewArtifact(data, mimeType))
	sess.lastAction = nil
	sess.touch()
	return snapshot(sess.history), nil
}

// Apply runs a generative operation against the session's current artifact
// and pushes the result. The action is recorded so Regenerate can re-issue
// it later.
func (s *Service) Apply(ctx context.Context, sessionID string, action LastAction) (Artifact, HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	source, ok := sess.history.Current()
	if !ok {
		return Artifact{}, HistorySnapshot{}, ErrEmptyHistory
	}
	result, err := s.gen.EditImage(ctx, source, action.Instruction)
	if err != nil {
		return Artifact{}, snapshot(sess.history), fmt.Errorf("%s: %w", action.Kind, err)
	}
	sess.history.Push(result)
	sess.lastAction = &action
	sess.touch()
	s.logger.Info().
		Str("session_id", sess.ID).
		Str("kind", string(action.Kind)).
		Int("cursor", sess.history.Cursor()).
		Msg("editor: applied generative action")
	return result, snapshot(sess.history), nil
}

// Regenerate re-issues the session's last generative action using the entry
// immediately preceding the cursor as source, then replaces the current
// entry (and any forward history) with the new result. It is defined only
// when the cursor is at least 1 and a last action is recorded; the history
// is left untouched otherwise.
func (s *Service) Regenerate(ctx context.Context, sessionID string) (Artifact, HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	source, ok := sess.history.Previous()
	if !ok || sess.lastAction == nil {
		return Artifact{}, snapshot(sess.history), ErrNoLastAction
	}
	action := *sess.lastAction
	result, err := s.gen.EditImage(ctx, source, action.Instruction)
	if err != nil {
		return Artifact{}, snapshot(sess.history), fmt.Errorf("regenerate %s: %w", action.Kind, err)
	}
	sess.history.Undo()
	sess.history.Push(result)
	sess.touch()
	s.logger.Info().
		Str("session_id", sess.ID).
		Str("kind", string(action.Kind)).
		Msg("editor: regenerated last action")
	return result, snapshot(sess.history), nil
}

// Crop applies a purely local transform: the current artifact is cropped to
// rect and the result pushed as a new entry. No network call is involved and
// the last generative action is left as-is.
func (s *Service) Crop(sessionID string, rect image.Rectangle) (Artifact, HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	source, ok := sess.history.Current()
	if !ok {
		return Artifact{}, HistorySnapshot{}, ErrEmptyHistory
	}
	result, err := cropArtifact(source, rect)
	if err != nil {
		return Artifact{}, snapshot(sess.history), err
	}
	sess.history.Push(result)
	sess.touch()
	return result, snapshot(sess.history), nil
}

// Undo moves the session one history entry back.
func (s *Service) Undo(sessionID string) (Artifact, HistorySnapshot, error) {
	return s.step(sessionID, (*History).Undo, ErrNothingToUndo)
}

// Redo moves the session one history entry forward.
func (s *Service) Redo(sessionID string) (Artifact, HistorySnapshot, error) {
	return s.step(sessionID, (*History).Redo, ErrNothingToRedo)
}

func (s *Service) step(sessionID string, move func(*History) bool, failure error) (Artifact, HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !move(sess.history) {
		return Artifact{}, snapshot(sess.history), failure
	}
	sess.touch()
	current, _ := sess.history.Current()
	return current, snapshot(sess.history), nil
}

// Jump moves the cursor directly to the given history index.
func (s *Service) Jump(sessionID string, index int) (Artifact, HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.history.Jump(index) {
		return Artifact{}, snapshot(sess.history), fmt.Errorf("history index %d out of range", index)
	}
	sess.touch()
	current, _ := sess.history.Current()
	return current, snapshot(sess.history), nil
}

// Reset clears the session's history and last action.
func (s *Service) Reset(sessionID string) (HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.history.Reset()
	sess.lastAction = nil
	sess.touch()
	return snapshot(sess.history), nil
}

// Current returns the session's current artifact.
func (s *Service) Current(sessionID string) (Artifact, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	current, ok := sess.history.Current()
	if !ok {
		return Artifact{}, ErrEmptyHistory
	}
	return current, nil
}

// EntryAt returns the artifact stored at the given history index.
func (s *Service) EntryAt(sessionID string, index int) (Artifact, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Artifact{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	a, ok := sess.history.At(index)
	if !ok {
		return Artifact{}, fmt.Errorf("history index %d out of range", index)
	}
	return a, nil
}

// Snapshot returns the session's current history view.
func (s *Service) Snapshot(sessionID string) (HistorySnapshot, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return HistorySnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(sess.history), nil
}

func snapshot(h *History) HistorySnapshot {
	return HistorySnapshot{
		Cursor:  h.Cursor(),
		Length:  h.Len(),
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
	}
}
