package input

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Key is a physical key code. The values are GLFW key tokens so the event
// thread can convert a glfw.Key with a plain conversion.
type Key int

const (
	KeySpace     Key = 32
	KeyA         Key = 65
	KeyD         Key = 68
	KeyQ         Key = 81
	KeyS         Key = 83
	KeyW         Key = 87
	KeyEscape    Key = 256
	KeyLeftShift Key = 340
)

// Action represents a logical action, not a physical key
type Action int

const (
	ActionMoveLeft Action = iota
	ActionMoveRight
	ActionMoveForward
	ActionMoveBackward
	ActionMoveUp
	ActionMoveDown
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

// axis is the unit camera translation for each movement action.
var axis = [ActionCount]mgl32.Vec3{
	ActionMoveLeft:     {-1, 0, 0},
	ActionMoveRight:    {1, 0, 0},
	ActionMoveForward:  {0, 0, -1},
	ActionMoveBackward: {0, 0, 1},
	ActionMoveUp:       {0, 1, 0},
	ActionMoveDown:     {0, -1, 0},
}

// Bindings maps physical keys to logical actions
type Bindings struct {
	mu           sync.RWMutex
	keyToActions map[Key][]Action
}

// NewBindings creates bindings with the default camera keys:
// WASD for the horizontal plane, Space/LeftShift for altitude,
// Escape and Q to quit.
func NewBindings() *Bindings {
	b := &Bindings{keyToActions: make(map[Key][]Action)}

	b.BindKey(KeyA, ActionMoveLeft)
	b.BindKey(KeyD, ActionMoveRight)
	b.BindKey(KeyW, ActionMoveForward)
	b.BindKey(KeyS, ActionMoveBackward)
	b.BindKey(KeySpace, ActionMoveUp)
	b.BindKey(KeyLeftShift, ActionMoveDown)
	b.BindKey(KeyEscape, ActionQuit)
	b.BindKey(KeyQ, ActionQuit)

	return b
}

// BindKey binds a physical key to a logical action.
// Several keys may share an action.
func (b *Bindings) BindKey(key Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keyToActions[key] = append(b.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (b *Bindings) UnbindKey(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.keyToActions, key)
}

// Is reports whether key is bound to action.
func (b *Bindings) Is(key Key, action Action) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.keyToActions[key] {
		if a == action {
			return true
		}
	}
	return false
}

// Translation sums the movement of every held key, each moving distance
// along its own axis. Unbound keys contribute nothing.
func (b *Bindings) Translation(held []Key, distance float32) mgl32.Vec3 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out mgl32.Vec3
	for _, k := range held {
		for _, a := range b.keyToActions[k] {
			out = out.Add(axis[a].Mul(distance))
		}
	}
	return out
}
