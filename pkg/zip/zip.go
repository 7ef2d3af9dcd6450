// Package zip bundles generated artifacts into a single downloadable
// archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

// Entry is one file in the archive.
type Entry struct {
	Name     string
	Artifact editor.Artifact
}

// Archive writes the entries into a zip file. Empty artifacts are skipped;
// missing or duplicate names get an index-based fallback so every artifact
// survives the bundling.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	used := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		if entry.Artifact.IsZero() {
			continue
		}
		name := sanitizeName(entry.Name, i, entry.Artifact)
		if _, taken := used[name]; taken {
			name = fmt.Sprintf("%02d-%s", i+1, name)
		}
		used[name] = struct{}{}

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(entry.Artifact.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitizeName(name string, index int, artifact editor.Artifact) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	if name == "" {
		name = fmt.Sprintf("image-%02d", index+1)
	}
	if !strings.Contains(name, ".") {
		name = name + "." + artifact.Ext()
	}
	return name
}
