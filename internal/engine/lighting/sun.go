// Package lighting provides the light sources the scene shader understands.
package lighting

import "math"

// Ambient is a uniform light reaching every surface equally.
type Ambient struct {
	Color     [3]float32
	Intensity float32
}

// Radiance returns the colour scaled by intensity.
func (a Ambient) Radiance() [3]float32 {
	return [3]float32{a.Color[0] * a.Intensity, a.Color[1] * a.Intensity, a.Color[2] * a.Intensity}
}

// Sun is an optional directional light. A disabled sun contributes nothing.
type Sun struct {
	Enabled   bool
	Longitude float32 // degrees around Y
	Latitude  float32 // degrees above the horizon
	Color     [3]float32
	Intensity float32
}

// Direction returns the unit vector pointing towards the sun.
func (s Sun) Direction() [3]float32 {
	return SunDirection(s.Longitude, s.Latitude)
}

// Radiance returns the colour scaled by intensity, or black when disabled.
func (s Sun) Radiance() [3]float32 {
	if !s.Enabled {
		return [3]float32{}
	}
	return [3]float32{s.Color[0] * s.Intensity, s.Color[1] * s.Intensity, s.Color[2] * s.Intensity}
}

// SunDirection converts longitude/latitude in degrees to a unit direction.
// Longitude rotates around Y, latitude is elevation from the horizon.
func SunDirection(longitude, latitude float32) [3]float32 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	x := float32(math.Cos(latRad) * math.Sin(lonRad))
	y := float32(math.Sin(latRad))
	z := float32(math.Cos(latRad) * math.Cos(lonRad))

	return [3]float32{x, y, z}
}
