package editor

// Key names the keyboard shortcuts the editor understands. They operate on
// the currently selected field only.
type Key string

const (
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyDelete    Key = "delete"
	KeyDuplicate Key = "duplicate"
	KeyEscape    Key = "escape"
)

// HandleKey dispatches a keyboard shortcut. Arrow keys nudge the selected
// field by one unit, or ten with the modifier held; Delete removes it; the
// duplicate shortcut clones it; Escape deselects (or cancels an in-flight
// drag). Unknown keys and shortcuts without a selection are ignored.
func (s *Session) HandleKey(k Key, modifier bool) {
	switch k {
	case KeyUp:
		_ = s.Nudge(0, -1, modifier)
	case KeyDown:
		_ = s.Nudge(0, 1, modifier)
	case KeyLeft:
		_ = s.Nudge(-1, 0, modifier)
	case KeyRight:
		_ = s.Nudge(1, 0, modifier)
	case KeyDelete:
		_ = s.DeleteSelected()
	case KeyDuplicate:
		_, _ = s.DuplicateSelected()
	case KeyEscape:
		s.CancelInteraction()
	}
}
