// Package shared holds the state exchanged between the event thread and the
// render loop. Each cell has its own guard; there is no lock spanning two
// cells, so updates to unrelated cells never contend and a frame may see
// them interleaved at any granularity.
package shared

import (
	"slices"

	"heliscene/internal/input"
)

// State bundles the independently guarded cells.
type State struct {
	Keys   Keys
	Mouse  Mouse
	Window Window
	Health Health
	Stop   Stop
}

// New returns state for a window of the given initial size. Health starts
// true and no resize is pending.
func New(width, height int) *State {
	s := &State{}
	s.Window.g.val = WindowSize{Width: width, Height: height}
	s.Health.g.val = true
	return s
}

// Keys is the set of currently held keys, in press order.
type Keys struct {
	g guard[[]input.Key]
}

// Press adds k. Pressing a held key is a no-op.
func (k *Keys) Press(key input.Key) error {
	return k.g.with(func(held *[]input.Key) {
		if !slices.Contains(*held, key) {
			*held = append(*held, key)
		}
	})
}

// Release removes k. Releasing a key that is not held is a no-op.
func (k *Keys) Release(key input.Key) error {
	return k.g.with(func(held *[]input.Key) {
		if i := slices.Index(*held, key); i >= 0 {
			*held = slices.Delete(*held, i, i+1)
		}
	})
}

// Pressed returns a copy of the held keys without clearing them.
func (k *Keys) Pressed() ([]input.Key, error) {
	var out []input.Key
	err := k.g.with(func(held *[]input.Key) {
		out = slices.Clone(*held)
	})
	return out, err
}

// Delta is accumulated pointer motion.
type Delta struct {
	X, Y float32
}

// Mouse accumulates pointer motion between drains.
type Mouse struct {
	g guard[Delta]
}

// Add accumulates a motion sample.
func (m *Mouse) Add(dx, dy float32) error {
	return m.g.with(func(d *Delta) {
		d.X += dx
		d.Y += dy
	})
}

// Drain returns the motion accumulated since the last drain and resets it.
func (m *Mouse) Drain() (Delta, error) {
	var out Delta
	err := m.g.with(func(d *Delta) {
		out = *d
		*d = Delta{}
	})
	return out, err
}

// WindowSize is the last size reported by the window system.
type WindowSize struct {
	Width, Height int
	Pending       bool
}

// Window holds the window size and whether the render loop has applied it.
type Window struct {
	g guard[WindowSize]
}

// Resize records a new size and marks it pending. Last write wins.
func (w *Window) Resize(width, height int) error {
	return w.g.with(func(s *WindowSize) {
		*s = WindowSize{Width: width, Height: height, Pending: true}
	})
}

// TakeResize returns the current size and clears the pending flag.
func (w *Window) TakeResize() (WindowSize, error) {
	var out WindowSize
	err := w.g.with(func(s *WindowSize) {
		out = *s
		s.Pending = false
	})
	return out, err
}

// Size returns the current size without touching the pending flag.
func (w *Window) Size() (WindowSize, error) {
	var out WindowSize
	err := w.g.with(func(s *WindowSize) {
		out = *s
	})
	return out, err
}

// Health reports whether the render loop is alive. It only ever goes from
// true to false.
type Health struct {
	g guard[bool]
}

// Healthy reads the flag. A poisoned cell reads as healthy so that the
// caller does not act on a value it could not observe.
func (h *Health) Healthy() (bool, error) {
	healthy := true
	err := h.g.with(func(v *bool) {
		healthy = *v
	})
	return healthy, err
}

// MarkUnhealthy clears the flag. It reports whether this call made the
// transition.
func (h *Health) MarkUnhealthy() (bool, error) {
	changed := false
	err := h.g.with(func(v *bool) {
		changed = *v
		*v = false
	})
	return changed, err
}

// Stop is the cooperative shutdown request for the render loop.
type Stop struct {
	g guard[bool]
}

// Request asks the render loop to finish after its current frame.
func (s *Stop) Request() error {
	return s.g.with(func(v *bool) {
		*v = true
	})
}

// Requested reports whether a stop was requested.
func (s *Stop) Requested() (bool, error) {
	var out bool
	err := s.g.with(func(v *bool) {
		out = *v
	})
	return out, err
}
