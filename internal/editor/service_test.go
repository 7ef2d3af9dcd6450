package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

type fakeGenerator struct {
	calls   []string
	sources []Artifact
	result  Artifact
	err     error
}

func (f *fakeGenerator) EditImage(ctx context.Context, source Artifact, instruction string) (Artifact, error) {
	f.calls = append(f.calls, instruction)
	f.sources = append(f.sources, source)
	if f.err != nil {
		return Artifact{}, f.err
	}
	if f.result.IsZero() {
		return Artifact{Data: []byte("generated"), MimeType: "image/png"}, nil
	}
	return f.result, nil
}

func newTestService(gen Generator) *Service {
	return NewService(gen, NewSessionStore(), DefaultMaxUploadBytes, zerolog.New(io.Discard))
}

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadRejectsOversizedPayload(t *testing.T) {
	svc := NewService(&fakeGenerator{}, NewSessionStore(), 64, zerolog.New(io.Discard))
	sess := svc.CreateSession()
	data := makePNG(t, 16, 16)
	if _, err := svc.Upload(sess.ID, data, "image/png"); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	snap, err := svc.Snapshot(sess.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Length != 0 {
		t.Fatalf("rejected upload reached history, length = %d", snap.Length)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	sess := svc.CreateSession()
	if _, err := svc.Upload(sess.ID, []byte("<html>nope</html>"), ""); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestApplyPushesResultAndRecordsAction(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen)
	sess := svc.CreateSession()
	if _, err := svc.Upload(sess.ID, makePNG(t, 8, 8), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	result, snap, err := svc.Apply(context.Background(), sess.ID, LastAction{
		Kind:        ActionFilter,
		Instruction: "apply a vintage film look",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if string(result.Data) != "generated" {
		t.Fatalf("unexpected result: %q", result.Data)
	}
	if snap.Length != 2 || snap.Cursor != 1 {
		t.Fatalf("snapshot = %+v, want length 2 cursor 1", snap)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "apply a vintage film look" {
		t.Fatalf("generator calls = %v", gen.calls)
	}
}

func TestApplyOnEmptySession(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	sess := svc.CreateSession()
	if _, _, err := svc.Apply(context.Background(), sess.ID, LastAction{Kind: ActionEdit, Instruction: "x"}); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
}

func TestApplyFailureLeavesHistoryUntouched(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model refused")}
	svc := newTestService(gen)
	sess := svc.CreateSession()
	if _, err := svc.Upload(sess.ID, makePNG(t, 8, 8), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	_, snap, err := svc.Apply(context.Background(), sess.ID, LastAction{Kind: ActionEdit, Instruction: "x"})
	if err == nil {
		t.Fatalf("expected error from generator")
	}
	if snap.Length != 1 || snap.Cursor != 0 {
		t.Fatalf("failed apply mutated history: %+v", snap)
	}
}

func TestRegenerateReplacesCurrentEntry(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen)
	sess := svc.CreateSession()
	original := makePNG(t, 8, 8)
	if _, err := svc.Upload(sess.ID, original, "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, _, err := svc.Apply(context.Background(), sess.ID, LastAction{Kind: ActionEdit, Instruction: "warm tones"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	gen.result = Artifact{Data: []byte("second take"), MimeType: "image/png"}
	result, snap, err := svc.Regenerate(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if string(result.Data) != "second take" {
		t.Fatalf("unexpected result: %q", result.Data)
	}
	// Same instruction, and the source must be the entry before the cursor.
	if len(gen.calls) != 2 || gen.calls[1] != "warm tones" {
		t.Fatalf("generator calls = %v", gen.calls)
	}
	if !bytes.Equal(gen.sources[1].Data, original) {
		t.Fatalf("regenerate used wrong source image")
	}
	if snap.Length != 2 || snap.Cursor != 1 {
		t.Fatalf("snapshot = %+v, want length 2 cursor 1", snap)
	}
}

func TestRegenerateWithoutPriorEntryIsNoOp(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestService(gen)
	sess := svc.CreateSession()
	if _, err := svc.Upload(sess.ID, makePNG(t, 8, 8), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, snap, err := svc.Regenerate(context.Background(), sess.ID)
	if !errors.Is(err, ErrNoLastAction) {
		t.Fatalf("expected ErrNoLastAction, got %v", err)
	}
	if snap.Length != 1 || snap.Cursor != 0 {
		t.Fatalf("no-op regenerate mutated history: %+v", snap)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("no-op regenerate reached the generator: %v", gen.calls)
	}
}

func TestCropProducesSmallerImage(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	sess := svc.CreateSession()
	if _, err := svc.Upload(sess.ID, makePNG(t, 32, 32), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	result, snap, err := svc.Crop(sess.ID, image.Rect(4, 4, 20, 24))
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decode crop result: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 20 {
		t.Fatalf("crop size = %dx%d, want 16x20", cfg.Width, cfg.Height)
	}
	if snap.Length != 2 {
		t.Fatalf("crop did not push history entry: %+v", snap)
	}
}

func TestCropRejectsEmptyRegion(t *testing.T) {
	svc := newTestService(&fakeGenerator{})
	sess := svc.CreateSession()
	if _, err := svc.Upload(sess.ID, makePNG(t, 16, 16), "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, _, err := svc.Crop(sess.ID, image.Rect(100, 100, 120, 120)); !errors.Is(err, ErrInvalidCrop) {
		t.Fatalf("expected ErrInvalidCrop, got %v", err)
	}
}

func TestSessionStorePruneIdle(t *testing.T) {
	store := NewSessionStore()
	s := store.Create()
	if store.Len() != 1 {
		t.Fatalf("store len = %d", store.Len())
	}
	if removed := store.PruneIdle(0); removed != 1 {
		t.Fatalf("PruneIdle removed %d, want 1", removed)
	}
	if _, err := store.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
