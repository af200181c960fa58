// Package viewer holds the armview frame logic: it composes the world
// from loaded models, routes pointer and key input, and advances the
// joint animator once per frame. It has no window or GL dependencies;
// the app package feeds it events and draws what it exposes.
package viewer

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/anim"
	"github.com/Faultbox/armview/internal/assets"
	"github.com/Faultbox/armview/internal/config"
	"github.com/Faultbox/armview/internal/engine/camera"
	"github.com/Faultbox/armview/internal/engine/scene"
	"github.com/Faultbox/armview/internal/hud"
	"github.com/Faultbox/armview/internal/logger"
	"github.com/Faultbox/armview/internal/router"
)

// Reserved key names.
const (
	KeyQuit       = "Escape"
	KeyScreenshot = "F12"
)

// Drag is the camera gesture a pointer button starts.
type Drag int

const (
	DragNone Drag = iota
	DragRotate
	DragPan
	DragDolly
)

// dollyPixelsPerNotch converts vertical dolly drags into wheel notches.
const dollyPixelsPerNotch = 10

// Loader is the asset source the viewer drains each frame.
type Loader interface {
	Load(id, path string) error
	Poll() []assets.Result
}

// Viewer is one running scene.
type Viewer struct {
	cfg *config.Config
	log *zap.Logger

	Scene    *scene.Scene
	Camera   *camera.Perspective
	Controls *camera.OrbitControls
	Animator *anim.Animator
	Router   *router.Router
	HUD      *hud.Panel

	loader   Loader
	composer *Composer

	drag         Drag
	quit         bool
	wantCapture  bool
	pointW       int
	pointH       int
	loadsPending int
}

// New builds the viewer for cfg. Models are not requested until Start.
func New(cfg *config.Config, loader Loader) *Viewer {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		loader: loader,
		pointW: cfg.Window.Width,
		pointH: cfg.Window.Height,
	}

	mode, _ := anim.ParseMode(cfg.Animation.Mode)
	v.Animator = anim.New(
		anim.WithStep(cfg.Animation.Step()),
		anim.WithSweep(cfg.Animation.Sweep()),
		anim.WithMode(mode),
		anim.WithSpeed(cfg.Animation.Speed()),
	)

	v.Scene = BuildScene(cfg.Scene)
	v.log.Debug("scene built",
		zap.Stringer("background", v.Scene.Background),
		zap.Int("grid_vertices", len(v.Scene.Grid)),
		zap.Bool("sun", v.Scene.Sun.Enabled),
	)
	v.composer = NewComposer(v.Scene, v.Animator, cfg.Scene.Models, cfg.Animation)

	cc := cfg.Camera
	v.Camera = camera.NewPerspective(cc.FOV, float32(cfg.Window.Width)/float32(max(cfg.Window.Height, 1)), cc.Near, cc.Far)
	v.Camera.Position = cc.Position
	v.Camera.Target = cc.Target
	v.Controls = camera.NewOrbitControls(v.Camera)
	v.Controls.RotateSpeed = float64(cc.RotateSpeed)
	v.Controls.ZoomSpeed = float64(cc.ZoomSpeed)
	v.Controls.PanSpeed = float64(cc.PanSpeed)
	v.Controls.SetViewport(cfg.Window.Width, cfg.Window.Height)

	bindings := router.Bindings{Left: cfg.Input.LeftKeys, Right: cfg.Input.RightKeys}
	if len(bindings.Left) == 0 && len(bindings.Right) == 0 {
		bindings = router.DefaultBindings()
	}
	v.Router = router.New(v.Animator, bindings)
	if cfg.Input.Buttons {
		v.HUD = hud.NewPanel(hud.DefaultStyle(), cfg.Window.Width, cfg.Window.Height)
	}
	return v
}

// Start requests every configured model. A request that cannot be issued
// is logged and that model is left out.
func (v *Viewer) Start() {
	for _, m := range v.cfg.Scene.Models {
		path := m.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(v.cfg.Scene.AssetDir, path)
		}
		if err := v.loader.Load(m.ID, path); err != nil {
			v.log.Warn("model not requested", zap.String("id", m.ID), zap.Error(err))
			continue
		}
		v.loadsPending++
	}
	v.log.Info("models requested", zap.Int("count", v.loadsPending))
}

// Frame advances one display refresh: settle finished loads, apply camera
// input, then tick the animator.
func (v *Viewer) Frame(dt time.Duration) {
	for _, res := range v.loader.Poll() {
		v.loadsPending--
		v.composer.Place(res)
		if v.loadsPending == 0 {
			v.log.Info("all model loads settled",
				zap.Int("meshes", v.Scene.MeshCount()),
				zap.Bool("animated_joint_bound", v.Animator.Bound()),
			)
		}
	}
	v.Controls.Update()
	v.Animator.Tick(dt)
}

// KeyDown handles a key press by SDL key name. Auto-repeat never
// triggers a sweep.
func (v *Viewer) KeyDown(name string, repeat bool) {
	switch name {
	case KeyQuit:
		v.quit = true
		return
	case KeyScreenshot:
		if !repeat {
			v.wantCapture = true
		}
		return
	}
	if repeat || !v.Router.Bound(name) {
		return
	}
	if v.Router.Key(name) {
		v.log.Debug("sweep started", zap.String("key", name), zap.Stringer("state", v.Animator.State()))
		return
	}
	v.log.Debug("trigger ignored during sweep",
		zap.String("key", name),
		zap.Stringer("state", v.Animator.State()),
		zap.Float64("swept", v.Animator.Accumulated()),
	)
}

// PointerMove handles pointer motion in window points.
func (v *Viewer) PointerMove(x, y, dx, dy float32) {
	if v.HUD != nil {
		v.HUD.PointerMove(x, y)
	}
	switch v.drag {
	case DragRotate:
		v.Controls.Rotate(dx, dy)
	case DragPan:
		v.Controls.Pan(dx, dy)
	case DragDolly:
		v.Controls.Zoom(-dy / dollyPixelsPerNotch)
	}
}

// PointerDown starts a button click or a camera drag. Presses on the
// buttons never reach the camera.
func (v *Viewer) PointerDown(d Drag, x, y float32) {
	if d == DragRotate && v.HUD != nil && v.HUD.PointerDown(x, y) {
		return
	}
	v.drag = d
}

// PointerUp ends a drag or completes a button click.
func (v *Viewer) PointerUp(d Drag, x, y float32) {
	if d == DragRotate && v.HUD != nil {
		if id := v.HUD.PointerUp(x, y); id != hud.ButtonNone {
			if v.Router.Button(id) {
				v.log.Debug("sweep started", zap.Stringer("button", id), zap.Stringer("state", v.Animator.State()))
			}
		}
	}
	if v.drag == d {
		v.drag = DragNone
	}
}

// Wheel handles scroll notches; positive scrolls dolly in.
func (v *Viewer) Wheel(notches float32) {
	v.Controls.Zoom(notches)
}

// Resize follows a window resize. Points drive pointer mapping and the
// button layout; pixels drive the projection aspect.
func (v *Viewer) Resize(pointW, pointH, pixelW, pixelH int) {
	if pointW <= 0 || pointH <= 0 {
		return
	}
	v.pointW, v.pointH = pointW, pointH
	v.Camera.SetViewport(pixelW, pixelH)
	v.Controls.SetViewport(pointW, pointH)
	if v.HUD != nil {
		v.HUD.Layout(pointW, pointH)
	}
}

// Overlay returns the button geometry in window points, or nil when the
// buttons are disabled.
func (v *Viewer) Overlay() []scene.ColorVertex {
	if v.HUD == nil {
		return nil
	}
	return v.HUD.Vertices()
}

// PointSize returns the window size in points.
func (v *Viewer) PointSize() (int, int) {
	return v.pointW, v.pointH
}

// QuitRequested reports whether the quit key was pressed.
func (v *Viewer) QuitRequested() bool {
	return v.quit
}

// TakeCaptureRequest reports and clears a pending screenshot request.
func (v *Viewer) TakeCaptureRequest() bool {
	want := v.wantCapture
	v.wantCapture = false
	return want
}

// LoadsPending returns the number of requested models not yet settled.
func (v *Viewer) LoadsPending() int {
	return v.loadsPending
}

// Composer returns the scene composer.
func (v *Viewer) Composer() *Composer {
	return v.composer
}
