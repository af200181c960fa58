package scene

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Axis names one of the three local rotation axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// ParseAxis accepts "x", "y" or "z" in either case.
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	case "z", "Z":
		return AxisZ, true
	}
	return 0, false
}

// String returns the lowercase axis letter.
func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// EulerMatrix builds Rx * Ry * Rz from XYZ Euler angles.
func EulerMatrix(e mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(e.X()).
		Mul4(mgl32.HomogRotate3DY(e.Y())).
		Mul4(mgl32.HomogRotate3DZ(e.Z()))
}

// EulerFromMatrix extracts XYZ Euler angles from the rotation part of m,
// which must be unscaled.
func EulerFromMatrix(m mgl32.Mat4) mgl32.Vec3 {
	m11, m12, m13 := float64(m.At(0, 0)), float64(m.At(0, 1)), float64(m.At(0, 2))
	m22, m23 := float64(m.At(1, 1)), float64(m.At(1, 2))
	m32, m33 := float64(m.At(2, 1)), float64(m.At(2, 2))

	y := gomath.Asin(clamp(m13, -1, 1))

	var x, z float64
	if gomath.Abs(m13) < 0.9999999 {
		x = gomath.Atan2(-m23, m33)
		z = gomath.Atan2(-m12, m11)
	} else {
		// gimbal lock: fold z into x
		x = gomath.Atan2(m32, m22)
		z = 0
	}
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// EulerFromQuat converts a rotation quaternion to XYZ Euler angles.
func EulerFromQuat(q mgl32.Quat) mgl32.Vec3 {
	return EulerFromMatrix(q.Normalize().Mat4())
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
