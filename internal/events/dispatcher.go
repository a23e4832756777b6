// Package events turns window system events into writes on the shared
// state. It runs on the main thread and never touches the graphics context.
package events

import (
	"log/slog"
	"sync"

	"heliscene/internal/input"
	"heliscene/internal/shared"
)

// Dispatcher routes window events into shared.State.
type Dispatcher struct {
	state    *shared.State
	bindings *input.Bindings
	logger   *slog.Logger

	mu       sync.Mutex
	cursor   [2]float64
	hasFirst bool
	stop     bool
}

func NewDispatcher(state *shared.State, bindings *input.Bindings, logger *slog.Logger) *Dispatcher {
	if bindings == nil {
		bindings = input.NewBindings()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{state: state, bindings: bindings, logger: logger}
}

// Resize records a new framebuffer size for the render loop.
func (d *Dispatcher) Resize(width, height int) {
	d.check("resize", d.state.Window.Resize(width, height))
}

// Key records a press or release. Quit keys request a stop on press.
func (d *Dispatcher) Key(key input.Key, pressed bool) {
	if !pressed {
		d.check("key", d.state.Keys.Release(key))
		return
	}
	if d.bindings.Is(key, input.ActionQuit) {
		d.logger.Info("quit key pressed", "key", int(key))
		d.RequestStop()
		return
	}
	d.check("key", d.state.Keys.Press(key))
}

// CursorMoved converts an absolute cursor position into a delta. The
// first sample only sets the baseline.
func (d *Dispatcher) CursorMoved(x, y float64) {
	d.mu.Lock()
	if !d.hasFirst {
		d.cursor = [2]float64{x, y}
		d.hasFirst = true
		d.mu.Unlock()
		return
	}
	dx, dy := x-d.cursor[0], y-d.cursor[1]
	d.cursor = [2]float64{x, y}
	d.mu.Unlock()

	d.check("mouse", d.state.Mouse.Add(float32(dx), float32(dy)))
}

// CloseRequested handles the window close button.
func (d *Dispatcher) CloseRequested() {
	d.logger.Info("window close requested")
	d.RequestStop()
}

// RequestStop ends the event pump and asks the render loop to finish.
func (d *Dispatcher) RequestStop() {
	d.mu.Lock()
	d.stop = true
	d.mu.Unlock()
	d.check("stop", d.state.Stop.Request())
}

// ShouldStop reports whether the pump should exit: a stop was requested
// or the render thread is no longer healthy.
func (d *Dispatcher) ShouldStop() bool {
	d.mu.Lock()
	stop := d.stop
	d.mu.Unlock()
	if stop {
		return true
	}
	healthy, err := d.state.Health.Healthy()
	d.check("health", err)
	return !healthy
}

func (d *Dispatcher) check(cell string, err error) {
	if err != nil {
		d.logger.Debug("dropping event", "cell", cell, "err", err)
	}
}
