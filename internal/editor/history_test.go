package editor

import (
	"fmt"
	"testing"
)

func art(n int) Artifact {
	return Artifact{Data: []byte(fmt.Sprintf("img-%d", n)), MimeType: "image/png"}
}

func TestHistoryPushSetsCursorToLast(t *testing.T) {
	h := NewHistory()
	if h.Cursor() != -1 {
		t.Fatalf("empty history cursor = %d, want -1", h.Cursor())
	}
	for i := 0; i < 3; i++ {
		h.Push(art(i))
		current, ok := h.Current()
		if !ok {
			t.Fatalf("Current after push %d: no entry", i)
		}
		if string(current.Data) != fmt.Sprintf("img-%d", i) {
			t.Fatalf("Current after push %d = %q", i, current.Data)
		}
		if h.Cursor() != i {
			t.Fatalf("cursor after push %d = %d", i, h.Cursor())
		}
	}
}

func TestHistoryPushAfterUndoDiscardsRedoPath(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 5; i++ {
		h.Push(art(i))
	}
	if !h.Undo() || !h.Undo() {
		t.Fatalf("expected two undos to succeed")
	}
	if h.Cursor() != 2 {
		t.Fatalf("cursor after two undos = %d, want 2", h.Cursor())
	}

	h.Push(art(99))

	if h.Len() != 4 {
		t.Fatalf("length after push = %d, want 4", h.Len())
	}
	if h.Cursor() != 3 {
		t.Fatalf("cursor after push = %d, want 3", h.Cursor())
	}
	for i := 0; i < 3; i++ {
		got, ok := h.At(i)
		if !ok || string(got.Data) != fmt.Sprintf("img-%d", i) {
			t.Fatalf("entry %d = %q, want img-%d", i, got.Data, i)
		}
	}
	if got, _ := h.At(3); string(got.Data) != "img-99" {
		t.Fatalf("entry 3 = %q, want img-99", got.Data)
	}
	if h.CanRedo() {
		t.Fatalf("redo should be impossible after push")
	}
}

func TestHistoryUndoRedoBounds(t *testing.T) {
	h := NewHistory()
	if h.Undo() || h.Redo() {
		t.Fatalf("undo/redo on empty history must be no-ops")
	}

	h.Push(art(0))
	h.Push(art(1))

	if h.Undo() != true || h.Cursor() != 0 {
		t.Fatalf("undo failed, cursor = %d", h.Cursor())
	}
	if h.Undo() {
		t.Fatalf("undo at cursor 0 must be a no-op")
	}
	if !h.Redo() || h.Cursor() != 1 {
		t.Fatalf("redo failed, cursor = %d", h.Cursor())
	}
	if h.Redo() {
		t.Fatalf("redo at last entry must be a no-op")
	}
}

func TestHistoryCursorStaysInRange(t *testing.T) {
	h := NewHistory()
	ops := []func(){
		func() { h.Push(art(h.Len())) },
		func() { h.Undo() },
		func() { h.Redo() },
		func() { h.Push(art(h.Len())) },
		func() { h.Undo() },
		func() { h.Undo() },
		func() { h.Push(art(h.Len())) },
		func() { h.Redo() },
	}
	for i, op := range ops {
		op()
		if h.Len() == 0 {
			if h.Cursor() != -1 {
				t.Fatalf("op %d: empty history cursor = %d", i, h.Cursor())
			}
			continue
		}
		if h.Cursor() < 0 || h.Cursor() >= h.Len() {
			t.Fatalf("op %d: cursor %d out of range [0,%d)", i, h.Cursor(), h.Len())
		}
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.Push(art(0))
	h.Push(art(1))
	h.Reset()
	if h.Len() != 0 || h.Cursor() != -1 {
		t.Fatalf("reset left len=%d cursor=%d", h.Len(), h.Cursor())
	}
	if _, ok := h.Current(); ok {
		t.Fatalf("Current on reset history returned an entry")
	}
}

func TestHistoryJump(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 4; i++ {
		h.Push(art(i))
	}
	if !h.Jump(1) || h.Cursor() != 1 {
		t.Fatalf("jump to 1 failed, cursor = %d", h.Cursor())
	}
	if h.Jump(4) || h.Jump(-1) {
		t.Fatalf("out-of-range jump must be rejected")
	}
	if h.Cursor() != 1 {
		t.Fatalf("failed jump moved cursor to %d", h.Cursor())
	}
}
