package shared

import (
	"errors"
	"sync"
)

// ErrPoisoned is returned by every accessor of a cell whose guard was held
// by a mutation that panicked.
var ErrPoisoned = errors.New("shared: cell poisoned by a panic")

// guard is a mutex-protected value that refuses access once a mutation
// panicked while holding it.
type guard[T any] struct {
	mu       sync.Mutex
	val      T
	poisoned bool
}

func (g *guard[T]) with(fn func(v *T)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.poisoned {
		return ErrPoisoned
	}
	done := false
	defer func() {
		if !done {
			g.poisoned = true
		}
	}()
	fn(&g.val)
	done = true
	return nil
}

func (g *guard[T]) poison() {
	g.mu.Lock()
	g.poisoned = true
	g.mu.Unlock()
}

// Cell is one of the guarded cells of a State.
type Cell interface {
	poison()
}

// Poison leaves c as a panicking mutation would: every later access
// returns ErrPoisoned. Readers of the cells use it to exercise their
// ErrPoisoned handling.
func Poison(c Cell) {
	c.poison()
}

func (k *Keys) poison()   { k.g.poison() }
func (m *Mouse) poison()  { m.g.poison() }
func (w *Window) poison() { w.g.poison() }
func (h *Health) poison() { h.g.poison() }
func (s *Stop) poison()   { s.g.poison() }
