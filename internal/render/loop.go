// Package render runs the render loop: it owns the graphics context for its
// whole life, drains the shared input state each frame, animates the scene
// and draws it.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"heliscene/internal/config"
	"heliscene/internal/input"
	"heliscene/internal/profiling"
	"heliscene/internal/scene"
	"heliscene/internal/shared"

	"github.com/go-gl/mathgl/mgl32"
)

// Phase is the lifecycle state of a Loop. PhaseTerminated covers a
// requested stop, an init failure and a panic alike; Loop.Outcome tells
// them apart.
type Phase int32

const (
	PhaseInitializing Phase = iota
	PhaseRunning
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseRunning:
		return "running"
	case PhaseTerminated:
		return "terminated"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// Outcome is how a terminated Loop ended: stopped on request, failed in
// Init, or panicked in a frame. OutcomeNone is reported until then.
type Outcome int32

const (
	OutcomeNone Outcome = iota
	OutcomeStopped
	OutcomeFailed
	OutcomePanicked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeStopped:
		return "stopped"
	case OutcomeFailed:
		return "failed"
	case OutcomePanicked:
		return "panicked"
	}
	return fmt.Sprintf("Outcome(%d)", int32(o))
}

// Device is the graphics context. Every method is called from the loop's
// goroutine only.
type Device interface {
	// Acquire makes the context current on the calling thread and sets
	// the fixed pipeline state.
	Acquire() error
	Resize(width, height int)
	Clear(color mgl32.Vec4)
	Present()
}

// Program is an activatable shader program.
type Program interface {
	Use()
}

// Animator advances animated nodes to the given elapsed time in seconds.
type Animator interface {
	Advance(elapsed float32)
}

// Resources are built once the context is current.
type Resources struct {
	Program  Program
	Drawer   scene.Renderer
	Graph    *scene.Graph
	Root     scene.NodeID
	Animator Animator
	// Release frees GPU objects. It runs on the loop's thread when Run
	// returns or panics. Optional.
	Release func()
}

// Options configure a Loop.
type Options struct {
	Config   config.Config
	State    *shared.State
	Device   Device
	Setup    func() (*Resources, error)
	Bindings *input.Bindings // defaults to input.NewBindings()
	Logger   *slog.Logger    // defaults to slog.Default()
}

// Loop is the render loop state machine.
type Loop struct {
	cfg      config.Config
	state    *shared.State
	device   Device
	setup    func() (*Resources, error)
	bindings *input.Bindings
	logger   *slog.Logger

	phase   atomic.Int32
	outcome atomic.Int32
	frames  atomic.Uint64

	res    *Resources
	camera *Camera

	first, prev time.Time
	sleep       func(time.Duration)
}

var errNotInitialized = errors.New("render: loop not initialized")

func NewLoop(opts Options) *Loop {
	l := &Loop{
		cfg:      opts.Config,
		state:    opts.State,
		device:   opts.Device,
		setup:    opts.Setup,
		bindings: opts.Bindings,
		logger:   opts.Logger,
		sleep:    time.Sleep,
	}
	if l.bindings == nil {
		l.bindings = input.NewBindings()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	cam := l.cfg.Camera
	l.camera = NewCamera(l.cfg.Window.Width, l.cfg.Window.Height, cam.FOV, cam.Near, cam.Far)
	l.camera.Position = mgl32.Vec3(cam.Position)
	return l
}

// Phase is safe to call from any goroutine.
func (l *Loop) Phase() Phase {
	return Phase(l.phase.Load())
}

// Outcome is OutcomeNone until the loop reaches PhaseTerminated. Safe to
// call from any goroutine.
func (l *Loop) Outcome() Outcome {
	return Outcome(l.outcome.Load())
}

// Frames returns the number of completed frames.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Camera is only safe to use from the loop's goroutine.
func (l *Loop) Camera() *Camera {
	return l.camera
}

// Init acquires the context and builds the scene. Errors are fatal.
func (l *Loop) Init() error {
	if err := l.device.Acquire(); err != nil {
		return fmt.Errorf("acquire graphics context: %w", err)
	}
	res, err := l.setup()
	if err != nil {
		return fmt.Errorf("set up scene: %w", err)
	}
	if res == nil || res.Graph == nil || res.Program == nil || res.Drawer == nil {
		return errors.New("set up scene: incomplete resources")
	}
	l.res = res
	return nil
}

// Run locks the goroutine to its OS thread, initializes, then renders
// until a stop is requested. A panic in a frame is not recovered here; it
// leaves the loop Terminated with OutcomePanicked and keeps unwinding.
// The thread stays locked so the context dies with it.
func (l *Loop) Run() (err error) {
	runtime.LockOSThread()
	returned := false
	defer func() {
		switch {
		case !returned:
			l.outcome.Store(int32(OutcomePanicked))
		case err != nil:
			l.outcome.Store(int32(OutcomeFailed))
		default:
			l.outcome.Store(int32(OutcomeStopped))
		}
		l.phase.Store(int32(PhaseTerminated))
	}()

	if initErr := l.Init(); initErr != nil {
		returned = true
		return initErr
	}
	if l.res.Release != nil {
		defer l.res.Release()
	}
	l.phase.Store(int32(PhaseRunning))
	l.logger.Info("render loop running")

	slow := time.Duration(l.cfg.Render.SlowFrame)
	for !l.stopRequested() {
		start := time.Now()
		l.Step(start)
		if d := time.Since(start); slow > 0 && d > slow {
			l.logger.Warn("slow frame", "took", d,
				"render", profiling.SumWithPrefix("render."),
				"top", profiling.TopN(3))
		}
		l.pace(start)
	}
	l.logger.Info("render loop stopped", "frames", l.Frames())
	returned = true
	return nil
}

// pace sleeps out the rest of the frame budget when vsync is off and
// config.GetFPSLimit is set. Each frame gets its own deadline, so a late
// frame is not made up by shortening the next ones.
func (l *Loop) pace(start time.Time) {
	limit := config.GetFPSLimit()
	if l.cfg.Window.VSync || limit <= 0 {
		return
	}
	budget := time.Second / time.Duration(limit)
	if rest := budget - time.Since(start); rest > 0 {
		l.sleep(rest)
	}
}

// Step renders one frame at time now.
func (l *Loop) Step(now time.Time) {
	if l.res == nil {
		panic(errNotInitialized)
	}
	profiling.ResetFrame()

	if l.first.IsZero() {
		l.first, l.prev = now, now
	}
	elapsed := float32(now.Sub(l.first).Seconds())
	dt := float32(now.Sub(l.prev).Seconds())
	l.prev = now

	func() {
		defer profiling.Track("render.input")()
		l.applyResize()
		l.applyKeys(dt)
		l.drainMouse()
	}()
	if l.res.Animator != nil {
		func() {
			defer profiling.Track("render.animate")()
			l.res.Animator.Advance(elapsed)
		}()
	}

	viewProjection := l.camera.ProjectionMatrix().Mul4(l.camera.ViewMatrix())

	l.device.Clear(mgl32.Vec4(l.cfg.Render.Background))
	l.res.Program.Use()
	func() {
		defer profiling.Track("render.traverse")()
		l.res.Graph.Traverse(l.res.Root, mgl32.Ident4(), viewProjection, l.res.Drawer)
	}()
	func() {
		defer profiling.Track("render.present")()
		l.device.Present()
	}()

	l.frames.Add(1)
}

func (l *Loop) applyResize() {
	size, err := l.state.Window.TakeResize()
	if err != nil {
		l.skip("resize", err)
		return
	}
	if !size.Pending {
		return
	}
	l.device.Resize(size.Width, size.Height)
	l.camera.SetViewport(size.Width, size.Height)
	l.logger.Info("window resized", "width", size.Width, "height", size.Height)
}

func (l *Loop) applyKeys(dt float32) {
	held, err := l.state.Keys.Pressed()
	if err != nil {
		l.skip("keys", err)
		return
	}
	l.camera.Move(l.bindings.Translation(held, l.cfg.Camera.MoveSpeed*dt))
}

// drainMouse empties the accumulator every frame. The camera has no
// look-around yet, so the motion is dropped.
func (l *Loop) drainMouse() {
	if _, err := l.state.Mouse.Drain(); err != nil {
		l.skip("mouse", err)
	}
}

func (l *Loop) stopRequested() bool {
	stop, err := l.state.Stop.Requested()
	if err != nil {
		l.skip("stop", err)
		return false
	}
	return stop
}

func (l *Loop) skip(step string, err error) {
	l.logger.Debug("skipping frame step", "step", step, "err", err)
}
