package editor

// History is a linear, branch-discarding undo/redo log over produced
// artifacts. The cursor always points at the artifact currently shown to the
// user: it stays inside [0, len) while entries exist and is -1 when empty.
// All operations are total; calls that cannot apply simply leave the state
// unchanged.
type History struct {
	entries []Artifact
	cursor  int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{cursor: -1}
}

// Push discards every entry after the cursor, appends a, and moves the
// cursor to the new last index. The redo path is invalidated irreversibly.
func (h *History) Push(a Artifact) {
	h.entries = append(h.entries[:h.cursor+1], a)
	h.cursor = len(h.entries) - 1
}

// Undo moves the cursor one entry back. It reports whether the cursor moved.
func (h *History) Undo() bool {
	if h.cursor <= 0 {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor one entry forward. It reports whether the cursor
// moved.
func (h *History) Redo() bool {
	if h.cursor >= len(h.entries)-1 {
		return false
	}
	h.cursor++
	return true
}

// Reset drops every entry and returns the history to its empty state.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = -1
}

// Current returns the artifact under the cursor.
func (h *History) Current() (Artifact, bool) {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return Artifact{}, false
	}
	return h.entries[h.cursor], true
}

// Previous returns the artifact immediately before the cursor. It is the
// source image used when regenerating the current entry.
func (h *History) Previous() (Artifact, bool) {
	if h.cursor < 1 {
		return Artifact{}, false
	}
	return h.entries[h.cursor-1], true
}

// At returns the artifact stored at index i.
func (h *History) At(i int) (Artifact, bool) {
	if i < 0 || i >= len(h.entries) {
		return Artifact{}, false
	}
	return h.entries[i], true
}

// Jump moves the cursor directly to index i, e.g. when the user clicks a
// thumbnail in the history strip. It reports whether i was in range.
func (h *History) Jump(i int) bool {
	if i < 0 || i >= len(h.entries) {
		return false
	}
	h.cursor = i
	return true
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Cursor returns the current cursor index, -1 when the history is empty.
func (h *History) Cursor() int {
	return h.cursor
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}
