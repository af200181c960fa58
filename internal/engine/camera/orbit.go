package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

const polarEpsilon = 1e-6

// OrbitControls rotate, dolly and pan a camera around a target point.
// Pointer input accumulates into pending deltas; Update applies them.
type OrbitControls struct {
	camera *Perspective

	Target mgl32.Vec3

	// Spherical offset of the camera from the target. Polar is measured
	// from +Y, azimuth around +Y starting at +Z.
	radius  float64
	polar   float64
	azimuth float64

	MinDistance float64
	MaxDistance float64
	MinPolar    float64
	MaxPolar    float64

	RotateSpeed float64
	ZoomSpeed   float64
	PanSpeed    float64

	// Viewport height in pixels; rotation and pan scale with it.
	viewportHeight float64

	pendingAzimuth float64
	pendingPolar   float64
	pendingScale   float64
	pendingPan     mgl32.Vec3
}

// NewOrbitControls derives the orbit from the camera's current position
// and target.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	c := &OrbitControls{
		camera:         cam,
		Target:         cam.Target,
		MinDistance:    0,
		MaxDistance:    gomath.Inf(1),
		MinPolar:       0,
		MaxPolar:       gomath.Pi,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		PanSpeed:       1,
		viewportHeight: 720,
		pendingScale:   1,
	}
	c.syncFromCamera()
	return c
}

func (c *OrbitControls) syncFromCamera() {
	offset := c.camera.Position.Sub(c.Target)
	c.radius = float64(offset.Len())
	if c.radius == 0 {
		c.polar = gomath.Pi / 2
		c.azimuth = 0
		return
	}
	c.azimuth = gomath.Atan2(float64(offset.X()), float64(offset.Z()))
	c.polar = gomath.Acos(clamp(float64(offset.Y())/c.radius, -1, 1))
}

// SetViewport records the viewport height used to scale pointer deltas.
func (c *OrbitControls) SetViewport(width, height int) {
	if height > 0 {
		c.viewportHeight = float64(height)
	}
}

// Distance returns the current camera distance from the target.
func (c *OrbitControls) Distance() float64 {
	return c.radius
}

// Rotate handles a rotate drag of dx, dy pixels. A full viewport-height
// drag turns the camera by one full revolution.
func (c *OrbitControls) Rotate(dx, dy float32) {
	c.pendingAzimuth -= 2 * gomath.Pi * float64(dx) / c.viewportHeight * c.RotateSpeed
	c.pendingPolar -= 2 * gomath.Pi * float64(dy) / c.viewportHeight * c.RotateSpeed
}

// Zoom handles wheel notches. Positive notches dolly in.
func (c *OrbitControls) Zoom(notches float32) {
	if notches == 0 {
		return
	}
	scale := gomath.Pow(0.95, c.ZoomSpeed)
	c.pendingScale *= gomath.Pow(scale, float64(notches))
}

// Pan handles a pan drag of dx, dy pixels, moving the target in the
// camera's view plane so the point under the cursor follows it.
func (c *OrbitControls) Pan(dx, dy float32) {
	view := c.camera.View()
	right := mgl32.Vec3{view.At(0, 0), view.At(0, 1), view.At(0, 2)}
	up := mgl32.Vec3{view.At(1, 0), view.At(1, 1), view.At(1, 2)}

	halfFOV := float64(mgl32.DegToRad(c.camera.FOV)) / 2
	worldPerPixel := 2 * c.radius * gomath.Tan(halfFOV) / c.viewportHeight * c.PanSpeed

	move := right.Mul(float32(-float64(dx) * worldPerPixel)).
		Add(up.Mul(float32(float64(dy) * worldPerPixel)))
	c.pendingPan = c.pendingPan.Add(move)
}

// Update applies pending input and writes the camera position and target.
// Call once per frame.
func (c *OrbitControls) Update() {
	c.azimuth += c.pendingAzimuth
	c.polar += c.pendingPolar
	c.polar = clamp(c.polar, gomath.Max(c.MinPolar, polarEpsilon), gomath.Min(c.MaxPolar, gomath.Pi-polarEpsilon))

	c.radius = clamp(c.radius*c.pendingScale, c.MinDistance, c.MaxDistance)
	c.Target = c.Target.Add(c.pendingPan)

	sinPolar := gomath.Sin(c.polar)
	offset := mgl32.Vec3{
		float32(c.radius * sinPolar * gomath.Sin(c.azimuth)),
		float32(c.radius * gomath.Cos(c.polar)),
		float32(c.radius * sinPolar * gomath.Cos(c.azimuth)),
	}

	c.camera.Target = c.Target
	c.camera.Position = c.Target.Add(offset)

	c.pendingAzimuth = 0
	c.pendingPolar = 0
	c.pendingScale = 1
	c.pendingPan = mgl32.Vec3{}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
