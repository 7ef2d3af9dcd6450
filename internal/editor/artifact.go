package editor

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultMaxUploadBytes caps uploaded source images at 12 MB.
const DefaultMaxUploadBytes = 12 << 20

// Artifact is a produced image: raw bytes plus their MIME type. Artifacts are
// immutable once created; history entries share the underlying byte slices
// and must never mutate them.
type Artifact struct {
	Data     []byte
	MimeType string
}

// NewArtifact normalizes the MIME type, sniffing it from the payload when the
// caller did not supply one.
func NewArtifact(data []byte, mimeType string) Artifact {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Artifact{Data: data, MimeType: mimeType}
}

// IsZero reports whether the artifact carries no image bytes.
func (a Artifact) IsZero() bool {
	return len(a.Data) == 0
}

// Ext returns a file extension matching the artifact's MIME type.
func (a Artifact) Ext() string {
	switch a.MimeType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// ValidateUpload rejects payloads before any network call is made: oversized
// files and non-image content never reach the provider.
func ValidateUpload(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrImageTooLarge, len(data), maxBytes)
	}
	if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
		return fmt.Errorf("%w: detected %s", ErrUnsupportedImage, sniffed)
	}
	return nil
}
