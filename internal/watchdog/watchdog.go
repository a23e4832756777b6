// Package watchdog supervises the render goroutine and turns its abnormal
// end into the one-shot health signal the event thread polls.
package watchdog

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"heliscene/internal/shared"
)

// Exit describes how a supervised function ended.
type Exit struct {
	Err   error // returned by the function
	Panic any   // recovered panic value, nil if none
	Stack []byte
}

// Abnormal reports whether the function panicked or returned an error.
func (e Exit) Abnormal() bool {
	return e.Panic != nil || e.Err != nil
}

func (e Exit) String() string {
	switch {
	case e.Panic != nil:
		return fmt.Sprintf("panic: %v", e.Panic)
	case e.Err != nil:
		return "error: " + e.Err.Error()
	default:
		return "ok"
	}
}

// Spawn runs fn on a new goroutine. The returned channel receives exactly
// one Exit and is then closed.
func Spawn(fn func() error) <-chan Exit {
	done := make(chan Exit, 1)
	go func() {
		defer close(done)
		var exit Exit
		defer func() {
			if r := recover(); r != nil {
				exit = Exit{Panic: r, Stack: debug.Stack()}
			}
			done <- exit
		}()
		exit.Err = fn()
	}()
	return done
}

// Watcher flips the health cell when the supervised goroutine ends badly.
type Watcher struct {
	Health *shared.Health
	Logger *slog.Logger
	// Wake is called after the flag is cleared so a blocked event pump
	// notices. Optional.
	Wake func()
}

// Watch blocks until done yields, and returns the Exit it received. On an
// abnormal exit the health flag is set to false; it is never set back.
func (w *Watcher) Watch(done <-chan Exit) Exit {
	exit, ok := <-done
	if !ok {
		return Exit{}
	}
	if !exit.Abnormal() {
		return exit
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	changed, err := w.Health.MarkUnhealthy()
	if err != nil {
		logger.Error("could not clear health flag", "err", err)
	}
	if changed {
		logger.Error("render loop terminated", "cause", exit.String(), "stack", string(exit.Stack))
	}
	if w.Wake != nil {
		w.Wake()
	}
	return exit
}

// Go starts fn under supervision and watches it on a second goroutine. The
// returned channel receives the final Exit after the health flag has been
// updated.
func (w *Watcher) Go(fn func() error) <-chan Exit {
	out := make(chan Exit, 1)
	done := Spawn(fn)
	go func() {
		out <- w.Watch(done)
		close(out)
	}()
	return out
}
