package zip

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

func TestArchiveNamesAndContents(t *testing.T) {
	entries := []Entry{
		{Name: "1950s", Artifact: editor.Artifact{Data: []byte("a"), MimeType: "image/png"}},
		{Name: "1950s", Artifact: editor.Artifact{Data: []byte("b"), MimeType: "image/png"}},
		{Artifact: editor.Artifact{Data: []byte("c"), MimeType: "image/png"}},
		{Name: "skip-me"},
	}

	data, err := Archive(entries)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("archive has %d files, want 3", len(zr.File))
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"1950s.png", "02-1950s.png", "image-03.png"} {
		if !names[want] {
			t.Fatalf("archive missing %s, have %v", want, names)
		}
	}
}
