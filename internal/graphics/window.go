package graphics

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowOptions describe the window to open.
type WindowOptions struct {
	Width, Height int
	Title         string
}

// OpenWindow creates a resizable window with an OpenGL 4.1 core context.
// The context is not made current: the render loop acquires it on its own
// thread. Must be called from the main thread after glfw.Init.
func OpenWindow(opts WindowOptions) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	return window, nil
}
