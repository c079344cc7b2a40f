package editor

import "github.com/formseal/formseal/internal/field"

// historyLimit caps the undo stack; the oldest snapshot is evicted when a new
// mutation would exceed it.
const historyLimit = 20

// snapshot is a deep copy of the session state worth restoring.
type snapshot struct {
	fields   []field.Field
	selected string
}

// history implements linear undo/redo over deep snapshots: any new action
// invalidates the redo side entirely.
type history struct {
	limit int
	undos []snapshot
	redos []snapshot
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

// push records the state prior to a new action and clears the redo side.
func (h *history) push(s snapshot) {
	if len(h.undos) >= h.limit {
		h.undos = h.undos[len(h.undos)-h.limit+1:]
	}
	h.undos = append(h.undos, s)
	h.redos = nil
}

// undo trades the current state for the most recent snapshot.
func (h *history) undo(current snapshot) (snapshot, bool) {
	if len(h.undos) == 0 {
		return snapshot{}, false
	}
	prev := h.undos[len(h.undos)-1]
	h.undos = h.undos[:len(h.undos)-1]
	h.redos = append(h.redos, current)
	return prev, true
}

// redo trades the current state for the most recently undone snapshot.
func (h *history) redo(current snapshot) (snapshot, bool) {
	if len(h.redos) == 0 {
		return snapshot{}, false
	}
	next := h.redos[len(h.redos)-1]
	h.redos = h.redos[:len(h.redos)-1]
	h.undos = append(h.undos, current)
	return next, true
}

// dropLast removes the newest undo entry; used when the mutation that pushed
// it failed validation and never happened.
func (h *history) dropLast() {
	if len(h.undos) > 0 {
		h.undos = h.undos[:len(h.undos)-1]
	}
}

func (h *history) canUndo() bool { return len(h.undos) > 0 }
func (h *history) canRedo() bool { return len(h.redos) > 0 }
