// Package app owns the window and drives the main loop.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/assets"
	"github.com/Faultbox/armview/internal/config"
	"github.com/Faultbox/armview/internal/engine/debug"
	"github.com/Faultbox/armview/internal/engine/input"
	"github.com/Faultbox/armview/internal/engine/renderer"
	"github.com/Faultbox/armview/internal/engine/window"
	"github.com/Faultbox/armview/internal/logger"
	"github.com/Faultbox/armview/internal/viewer"
)

// App is the running viewer process.
type App struct {
	config   *config.Config
	running  bool
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	assets   *assets.Provider
	viewer   *viewer.Viewer
	shots    *debug.Screenshots
}

// New opens the window and GL context and builds the viewer.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config: cfg,
		log:    logger.Named("app"),
	}
	a.log.Info("initializing",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("asset_dir", cfg.Scene.AssetDir),
		zap.String("step_mode", cfg.Animation.Mode),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must follow the window, since the GL context must exist.
	pw, ph := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: pw, Height: ph})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.assets = assets.NewProvider()
	a.viewer = viewer.New(cfg, a.assets)
	a.shots = debug.NewScreenshots(cfg.Debug.ScreenshotDir, "armview")

	w, h := a.window.GetSize()
	a.viewer.Resize(w, h, pw, ph)

	a.log.Info("initialized")
	return a, nil
}

// Run loops once per display refresh until quit: input, loads, camera,
// animator, draw, swap.
func (a *App) Run() error {
	a.running = true
	a.viewer.Start()

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		if a.viewer.QuitRequested() {
			a.running = false
			break
		}

		a.viewer.Frame(dt)

		a.renderer.Begin(a.viewer.Scene.Background)
		a.renderer.DrawScene(a.viewer.Scene, a.viewer.Camera)
		pw, ph := a.viewer.PointSize()
		a.renderer.DrawOverlay(a.viewer.Overlay(), float32(pw), float32(ph))

		if a.viewer.TakeCaptureRequest() {
			a.capture()
		}

		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Stringer("state", a.viewer.Animator.State()),
				zap.Float64("distance", a.viewer.Controls.Distance()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, e := range a.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			// event sizes are points; the drawable may be larger on HiDPI
			pw, ph := a.window.DrawableSize()
			a.renderer.Resize(pw, ph)
			a.viewer.Resize(e.Width, e.Height, pw, ph)
		case input.EventKeyDown:
			a.viewer.KeyDown(e.Key, e.Repeat)
		case input.EventMouseMove:
			a.viewer.PointerMove(e.X, e.Y, e.DX, e.DY)
		case input.EventMouseDown:
			a.viewer.PointerDown(dragFor(e.Button), e.X, e.Y)
		case input.EventMouseUp:
			a.viewer.PointerUp(dragFor(e.Button), e.X, e.Y)
		case input.EventMouseWheel:
			a.viewer.Wheel(e.Wheel)
		}
	}
}

// dragFor maps buttons the way three.js orbit controls do.
func dragFor(b input.MouseButton) viewer.Drag {
	switch b {
	case input.MouseLeft:
		return viewer.DragRotate
	case input.MouseMiddle:
		return viewer.DragDolly
	case input.MouseRight:
		return viewer.DragPan
	}
	return viewer.DragNone
}

func (a *App) capture() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.Save(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close waits for in-flight decodes, then releases GL and the window.
func (a *App) Close() {
	a.log.Info("closing")

	if a.assets != nil {
		if n := a.assets.Pending(); n > 0 {
			a.log.Debug("waiting for model decodes",
				zap.Int("in_flight", n),
				zap.Int("unsettled", a.viewer.LoadsPending()),
			)
		}
		if n := len(a.assets.Wait()); n > 0 {
			a.log.Debug("discarded unplaced loads", zap.Int("count", n))
		}
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
