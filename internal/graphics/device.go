package graphics

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Device is the GL context of a window, driven from the render thread.
type Device struct {
	window *glfw.Window
	vsync  bool
	logger *slog.Logger
}

func NewDevice(window *glfw.Window, vsync bool, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{window: window, vsync: vsync, logger: logger}
}

// Acquire makes the context current on the calling thread, loads the GL
// entry points and sets the fixed pipeline state.
func (d *Device) Acquire() error {
	d.window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("load OpenGL: %w", err)
	}

	if d.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Disable(gl.MULTISAMPLE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	d.logger.Info("graphics context ready",
		"vendor", gl.GoStr(gl.GetString(gl.VENDOR)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		"vsync", d.vsync)
	return CheckError("set pipeline state")
}

// CheckError drains the GL error queue. The 4.1 core bindings have no debug
// message callback (GL 4.3), so errors are polled at fixed points instead.
func CheckError(stage string) error {
	var codes []uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		codes = append(codes, code)
		if len(codes) == 16 {
			break
		}
	}
	if len(codes) == 0 {
		return nil
	}
	return fmt.Errorf("%s: GL errors %#x", stage, codes)
}

func (d *Device) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Present() {
	d.window.SwapBuffers()
}
