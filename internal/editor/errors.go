package editor

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmptyHistory     = errors.New("history is empty")
	ErrEmptyImage       = errors.New("image payload is empty")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrNothingToRedo    = errors.New("nothing to redo")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNoLastAction     = errors.New("no previous action to regenerate")
	ErrInvalidCrop      = errors.New("crop region is empty")
	ErrProviderFailure  = errors.New("provider failure")
)
