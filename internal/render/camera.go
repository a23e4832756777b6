package render

import "github.com/go-gl/mathgl/mgl32"

var (
	cameraForward = mgl32.Vec3{0, 0, -1}
	cameraUp      = mgl32.Vec3{0, 1, 0}
)

// Camera handles the view and projection matrices. It only translates;
// orientation is fixed looking down -Z.
type Camera struct {
	AspectRatio float32
	FOV         float32 // vertical, degrees
	NearPlane   float32
	FarPlane    float32
	Position    mgl32.Vec3
}

func NewCamera(width, height int, fov, near, far float32) *Camera {
	c := &Camera{FOV: fov, NearPlane: near, FarPlane: far, AspectRatio: 1}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Degenerate sizes (a minimised
// window) keep the previous ratio.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Move translates the camera.
func (c *Camera) Move(delta mgl32.Vec3) {
	c.Position = c.Position.Add(delta)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(cameraForward), cameraUp)
}
