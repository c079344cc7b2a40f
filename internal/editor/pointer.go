package editor

import "github.com/formseal/formseal/internal/geometry"

// Handle identifies which of the eight resize handles a pointer grabbed.
// HandleNone means the field body (a drag) or empty canvas.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleNW
)

// state is the pointer machine state: Idle -> Dragging|Resizing -> Idle.
type state int

const (
	stateIdle state = iota
	stateDragging
	stateResizing
)

// interaction tracks one in-flight drag or resize. Position updates are
// computed from the pointer's delta against the geometry captured at
// pointer-down, so a drag started mid-field never snaps the field's corner to
// the pointer.
type interaction struct {
	state   state
	fieldID string
	handle  Handle
	start   geometry.Point // template-space pointer position at down
	orig    geometry.Rect  // field rect at down
	before  snapshot       // state to record in history on pointer-up
	moved   bool
}

// PointerDown feeds a press at a render-space position. target is the id of
// the field under the pointer ("" for empty canvas) and handle the resize
// handle hit, if any. Pressing empty canvas clears the selection. A new
// interaction cannot start while another one is active.
func (s *Session) PointerDown(renderAt geometry.Point, target string, handle Handle) {
	if s.pointer.state != stateIdle {
		return
	}

	if target == "" {
		s.selected = ""
		return
	}
	f := s.find(target)
	if f == nil {
		return
	}

	s.selected = target
	st := stateDragging
	if handle != HandleNone {
		st = stateResizing
	}

	s.pointer = interaction{
		state:   st,
		fieldID: target,
		handle:  handle,
		start:   geometry.ToTemplateSpace(renderAt, s.zoom),
		orig:    f.Rect(),
		before:  snapshot{fields: s.Fields(), selected: s.selected},
	}
}

// PointerMove feeds a move at a render-space position, updating the active
// field's geometry live. No-op while idle.
func (s *Session) PointerMove(renderAt geometry.Point) {
	in := &s.pointer
	if in.state == stateIdle {
		return
	}
	f := s.find(in.fieldID)
	if f == nil {
		// Field vanished mid-interaction; abandon it.
		*in = interaction{}
		return
	}

	p := geometry.ToTemplateSpace(renderAt, s.zoom)
	dx := p.X - in.start.X
	dy := p.Y - in.start.Y
	if dx == 0 && dy == 0 {
		return
	}
	in.moved = true

	switch in.state {
	case stateDragging:
		// Clamp to the non-negative quadrant only; fields may extend past the
		// visible page edge.
		f.X = max(0, in.orig.X+dx)
		f.Y = max(0, in.orig.Y+dy)
	case stateResizing:
		r := resize(in.orig, in.handle, dx, dy)
		f.X, f.Y, f.Width, f.Height = r.X, r.Y, r.Width, r.Height
	}
}

// PointerUp finishes the active interaction. Moves and resizes record one
// history entry for the whole gesture, not one per pixel.
func (s *Session) PointerUp(geometry.Point) {
	in := s.pointer
	s.pointer = interaction{}
	if in.state == stateIdle || !in.moved {
		return
	}
	s.history.push(in.before)
}

// CancelInteraction aborts an in-flight drag or resize, restoring the
// geometry captured at pointer-down. When idle it clears the selection
// (Escape semantics).
func (s *Session) CancelInteraction() {
	in := s.pointer
	s.pointer = interaction{}

	if in.state == stateIdle {
		s.selected = ""
		return
	}
	if f := s.find(in.fieldID); f != nil {
		f.X, f.Y, f.Width, f.Height = in.orig.X, in.orig.Y, in.orig.Width, in.orig.Height
	}
}

// Dragging reports whether a drag or resize is in flight.
func (s *Session) Dragging() bool { return s.pointer.state != stateIdle }

// resize applies a handle delta to a rect. Each handle determines which of
// x/y/width/height move; north and west handles shift the position together
// with the size so the opposite edge stays fixed. Width and height never drop
// below MinSize and the position never goes negative.
func resize(orig geometry.Rect, h Handle, dx, dy float64) geometry.Rect {
	r := orig

	east := h == HandleNE || h == HandleE || h == HandleSE
	south := h == HandleSE || h == HandleS || h == HandleSW
	west := h == HandleNW || h == HandleW || h == HandleSW
	north := h == HandleNW || h == HandleN || h == HandleNE

	if east {
		r.Width = max(MinSize, orig.Width+dx)
	}
	if south {
		r.Height = max(MinSize, orig.Height+dy)
	}
	if west {
		right := orig.X + orig.Width
		x := orig.X + dx
		x = min(x, right-MinSize)
		x = max(x, 0)
		r.X = x
		r.Width = right - x
	}
	if north {
		bottom := orig.Y + orig.Height
		y := orig.Y + dy
		y = min(y, bottom-MinSize)
		y = max(y, 0)
		r.Y = y
		r.Height = bottom - y
	}

	return r
}
