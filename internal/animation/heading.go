// Package animation provides closed-form paths for the moving scene parts.
package animation

import "math"

// Heading is a position on the ground plane plus an orientation.
type Heading struct {
	X, Z             float32
	Roll, Pitch, Yaw float32
}

const (
	pathSize     = 15.0
	circuitSpeed = 0.8
	lookAhead    = 0.05
)

// SimpleHeading returns the heading along a figure-eight circuit at the
// given elapsed time in seconds. The body banks with the turn, pitches
// forward with its speed and faces along the direction of travel.
func SimpleHeading(elapsed float32) Heading {
	t := float64(elapsed)

	x := pathSize * math.Sin(2*t*circuitSpeed)
	xNext := pathSize * math.Sin(2*(t+lookAhead)*circuitSpeed)
	z := 3 * pathSize * math.Cos(t*circuitSpeed)
	zNext := 3 * pathSize * math.Cos((t+lookAhead)*circuitSpeed)

	dx, dz := xNext-x, zNext-z

	return Heading{
		X:     float32(x),
		Z:     float32(z),
		Roll:  float32(math.Cos(t*circuitSpeed) * 0.5),
		Pitch: float32(-0.175 * math.Hypot(dx, dz)),
		Yaw:   float32(math.Pi + math.Atan2(dx, dz)),
	}
}
