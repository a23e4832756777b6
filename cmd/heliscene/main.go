package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"heliscene/internal/config"
	"heliscene/internal/events"
	"heliscene/internal/graphics"
	"heliscene/internal/input"
	"heliscene/internal/render"
	"heliscene/internal/shared"
	"heliscene/internal/watchdog"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

const defaultConfigPath = "heliscene.toml"

func init() {
	// GLFW event processing must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func configPath() string {
	if p := os.Getenv("HELISCENE_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

func run() int {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "heliscene:", err)
		return 1
	}
	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	config.SetFPSLimit(cfg.Render.FPSLimit)

	if err := glfw.Init(); err != nil {
		logger.Error("could not initialize glfw", "err", err)
		return 1
	}

	window, err := graphics.OpenWindow(graphics.WindowOptions{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
	})
	if err != nil {
		logger.Error("could not open window", "err", err)
		glfw.Terminate()
		return 1
	}

	state := shared.New(cfg.Window.Width, cfg.Window.Height)
	bindings := input.NewBindings()
	dispatcher := events.NewDispatcher(state, bindings, logger)
	setupInputHandlers(window, dispatcher)
	if w, h := window.GetFramebufferSize(); w != cfg.Window.Width || h != cfg.Window.Height {
		dispatcher.Resize(w, h)
	}

	loop := render.NewLoop(render.Options{
		Config:   cfg,
		State:    state,
		Device:   graphics.NewDevice(window, cfg.Window.VSync, logger),
		Setup:    func() (*render.Resources, error) { return setupScene(cfg, logger) },
		Bindings: bindings,
		Logger:   logger,
	})
	watcher := &watchdog.Watcher{Health: &state.Health, Logger: logger, Wake: glfw.PostEmptyEvent}
	exited := watcher.Go(loop.Run)

	timeout := time.Duration(cfg.Render.ShutdownTimeout)
	finished := make(chan struct{})
	closer.Bind(func() {
		select {
		case <-finished:
			return
		default:
		}
		logger.Info("signal received, shutting down")
		dispatcher.RequestStop()
		glfw.PostEmptyEvent()
		select {
		case <-finished:
		case <-time.After(timeout):
		}
	})

	pollEvents(dispatcher, time.Duration(cfg.Window.PollInterval))

	code := shutdown(dispatcher, exited, timeout, logger)
	if code >= 0 {
		logger.Info("render loop terminated", "outcome", loop.Outcome(), "frames", loop.Frames())
		window.Destroy()
		glfw.Terminate()
	} else {
		// the render thread may still hold the context
		code = 1
	}
	close(finished)
	return code
}

func setupInputHandlers(window *glfw.Window, d *events.Dispatcher) {
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		d.Resize(width, height)
	})

	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			d.Key(input.Key(key), true)
		case glfw.Release:
			d.Key(input.Key(key), false)
		}
	})

	window.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		d.CursorMoved(xpos, ypos)
	})

	window.SetCloseCallback(func(_ *glfw.Window) {
		d.CloseRequested()
	})
}

// pollEvents pumps window events until a stop is requested or the render
// loop dies. The timeout bounds how long a health change can go unseen.
func pollEvents(d *events.Dispatcher, interval time.Duration) {
	for !d.ShouldStop() {
		glfw.WaitEventsTimeout(interval.Seconds())
	}
}

// shutdown asks the render loop to stop and waits for it. It returns the
// process exit code, or -1 if the loop did not finish in time.
func shutdown(d *events.Dispatcher, exited <-chan watchdog.Exit, timeout time.Duration, logger *slog.Logger) int {
	d.RequestStop()
	select {
	case exit := <-exited:
		if exit.Abnormal() {
			return 1
		}
		logger.Info("shut down cleanly")
		return 0
	case <-time.After(timeout):
		logger.Error("render loop did not stop in time", "timeout", timeout)
		return -1
	}
}
