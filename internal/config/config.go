// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/armview/internal/anim"
	"github.com/Faultbox/armview/internal/engine/scene"
)

// ErrUnknownMode is returned by Validate for an animation mode other than
// "frame" or "time".
var ErrUnknownMode = errors.New("unknown animation mode")

// ErrUnknownModel is returned by Validate when animation.model names no
// entry of scene.models.
var ErrUnknownModel = errors.New("animation model not in scene.models")

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Scene     SceneConfig     `yaml:"scene"`
	Camera    CameraConfig    `yaml:"camera"`
	Animation AnimationConfig `yaml:"animation"`
	Input     InputConfig     `yaml:"input"`
	Logging   LoggingConfig   `yaml:"logging"`
	Debug     DebugConfig     `yaml:"debug"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// SceneConfig describes the world: background, helpers, lights and models.
type SceneConfig struct {
	AssetDir   string        `yaml:"asset_dir"`
	Background string        `yaml:"background"`
	Grid       GridConfig    `yaml:"grid"`
	Ambient    AmbientConfig `yaml:"ambient"`
	Sun        SunConfig     `yaml:"sun"`
	Models     []ModelConfig `yaml:"models"`
}

// GridConfig is the floor grid helper.
type GridConfig struct {
	Size        float32 `yaml:"size"`
	Divisions   int     `yaml:"divisions"`
	CenterColor string  `yaml:"center_color"`
	Color       string  `yaml:"color"`
}

// AmbientConfig is the uniform light reaching every surface.
type AmbientConfig struct {
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
}

// SunConfig is an optional directional light. Angles are in degrees.
type SunConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Longitude float32 `yaml:"longitude"`
	Latitude  float32 `yaml:"latitude"`
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
}

// ModelConfig places one model file in the world. Rotation is XYZ Euler in
// degrees.
type ModelConfig struct {
	ID       string      `yaml:"id"`
	File     string      `yaml:"file"`
	Scale    float32     `yaml:"scale"`
	Position mgl32.Vec3  `yaml:"position,flow"`
	Rotation mgl32.Vec3  `yaml:"rotation,flow"`
	Joints   []JointPose `yaml:"joints,omitempty"`
}

// JointPose sets a named sub-node's rotation about one axis at load time.
type JointPose struct {
	Name    string  `yaml:"name"`
	Axis    string  `yaml:"axis"`
	Degrees float32 `yaml:"degrees"`
}

// CameraConfig holds the perspective camera and orbit control settings.
type CameraConfig struct {
	FOV         float32    `yaml:"fov"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Position    mgl32.Vec3 `yaml:"position,flow"`
	Target      mgl32.Vec3 `yaml:"target,flow"`
	RotateSpeed float32    `yaml:"rotate_speed"`
	ZoomSpeed   float32    `yaml:"zoom_speed"`
	PanSpeed    float32    `yaml:"pan_speed"`
}

// AnimationConfig selects the animated joint and the sweep parameters.
type AnimationConfig struct {
	Model        string  `yaml:"model"`
	Joint        string  `yaml:"joint"`
	Axis         string  `yaml:"axis"`
	StepDegrees  float64 `yaml:"step_degrees"`
	SweepDegrees float64 `yaml:"sweep_degrees"`
	Mode         string  `yaml:"mode"`
	SpeedDegrees float64 `yaml:"speed_degrees"`
}

// InputConfig holds key bindings (SDL key names) and the on-screen buttons
// toggle.
type InputConfig struct {
	LeftKeys  []string `yaml:"left_keys"`
	RightKeys []string `yaml:"right_keys"`
	Buttons   bool     `yaml:"buttons"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DebugConfig holds developer helpers.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns the stock scene: robot arm, pallet and tablet stand.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "armview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Scene: SceneConfig{
			AssetDir:   "assets",
			Background: "#808080",
			Grid: GridConfig{
				Size:        10,
				Divisions:   10,
				CenterColor: "#000000",
				Color:       "#000000",
			},
			Ambient: AmbientConfig{Color: "#ffffff", Intensity: 1},
			Sun: SunConfig{
				Longitude: 45,
				Latitude:  45,
				Color:     "#ffffff",
				Intensity: 0.5,
			},
			Models: []ModelConfig{
				{
					ID:       "robot",
					File:     "robotarm.glb",
					Scale:    0.4,
					Position: mgl32.Vec3{0, 1.5, 0},
					Joints: []JointPose{
						{Name: "Arm_01", Axis: "x", Degrees: 80},
						{Name: "Arm_02", Axis: "x", Degrees: 170},
						{Name: "Arm_03", Axis: "x", Degrees: 95},
						{Name: "Hand", Axis: "y", Degrees: 90},
					},
				},
				{ID: "pallet", File: "pallet-box.glb", Scale: 1},
				{
					ID:       "tablet",
					File:     "tablet-stand.glb",
					Scale:    0.4,
					Position: mgl32.Vec3{-1, 0, 0.8},
				},
			},
		},
		Camera: CameraConfig{
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			Position:    mgl32.Vec3{0, 0.6, 4},
			RotateSpeed: 1,
			ZoomSpeed:   1,
			PanSpeed:    1,
		},
		Animation: AnimationConfig{
			Model:        "robot",
			Joint:        "Main",
			Axis:         "y",
			StepDegrees:  0.9,
			SweepDegrees: 90,
			Mode:         "frame",
			SpeedDegrees: 54,
		},
		Input: InputConfig{
			LeftKeys:  []string{"Left"},
			RightKeys: []string{"Right"},
			Buttons:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
	}
}

// Validate checks colours, axes, the animation target and mode.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}

	colors := map[string]string{
		"scene.background":        c.Scene.Background,
		"scene.grid.center_color": c.Scene.Grid.CenterColor,
		"scene.grid.color":        c.Scene.Grid.Color,
		"scene.ambient.color":     c.Scene.Ambient.Color,
		"scene.sun.color":         c.Scene.Sun.Color,
	}
	for key, v := range colors {
		if _, err := scene.ParseHexColor(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	seen := make(map[string]bool, len(c.Scene.Models))
	for _, m := range c.Scene.Models {
		if m.ID == "" || m.File == "" {
			return fmt.Errorf("scene.models: id and file are required (got id=%q file=%q)", m.ID, m.File)
		}
		if seen[m.ID] {
			return fmt.Errorf("scene.models: duplicate id %q", m.ID)
		}
		seen[m.ID] = true
		for _, j := range m.Joints {
			if _, ok := scene.ParseAxis(j.Axis); !ok {
				return fmt.Errorf("scene.models[%s].joints[%s]: bad axis %q", m.ID, j.Name, j.Axis)
			}
		}
	}

	if !seen[c.Animation.Model] {
		return fmt.Errorf("animation.model %q: %w", c.Animation.Model, ErrUnknownModel)
	}
	if _, ok := scene.ParseAxis(c.Animation.Axis); !ok {
		return fmt.Errorf("animation.axis: bad axis %q", c.Animation.Axis)
	}
	if _, ok := anim.ParseMode(c.Animation.Mode); !ok {
		return fmt.Errorf("animation.mode %q: %w", c.Animation.Mode, ErrUnknownMode)
	}
	if c.Animation.StepDegrees <= 0 || c.Animation.SweepDegrees <= 0 {
		return fmt.Errorf("animation: step and sweep must be positive")
	}
	return nil
}

// Step returns the per-tick step in radians.
func (a AnimationConfig) Step() float64 { return radians(a.StepDegrees) }

// Sweep returns the sweep angle in radians.
func (a AnimationConfig) Sweep() float64 { return radians(a.SweepDegrees) }

// Speed returns the time-mode angular speed in radians per second.
func (a AnimationConfig) Speed() float64 { return radians(a.SpeedDegrees) }

// Model returns the placement for id, or nil.
func (s SceneConfig) Model(id string) *ModelConfig {
	for i := range s.Models {
		if s.Models[i].ID == id {
			return &s.Models[i]
		}
	}
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
