package viewer

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/armview/internal/anim"
	"github.com/Faultbox/armview/internal/assets"
	"github.com/Faultbox/armview/internal/config"
	"github.com/Faultbox/armview/internal/engine/scene"
)

const frame = time.Second / 60

// fakeLoader hands back queued results on the first Poll after Load.
type fakeLoader struct {
	requested map[string]string
	queued    []assets.Result
	fail      map[string]error
	build     func(id string) (*scene.Node, error)
}

func newFakeLoader(build func(id string) (*scene.Node, error)) *fakeLoader {
	return &fakeLoader{requested: map[string]string{}, fail: map[string]error{}, build: build}
}

func (l *fakeLoader) Load(id, path string) error {
	if err := l.fail[id]; err != nil {
		return err
	}
	if _, ok := l.requested[id]; ok {
		return assets.ErrAlreadyRequested
	}
	l.requested[id] = path
	root, err := l.build(id)
	l.queued = append(l.queued, assets.Result{ID: id, Path: path, Root: root, Err: err})
	return nil
}

func (l *fakeLoader) Poll() []assets.Result {
	out := l.queued
	l.queued = nil
	return out
}

// robotArm mirrors the named hierarchy of the robot model.
func robotArm(withMain bool) *scene.Node {
	root := scene.NewNode("robotarm")
	base := scene.NewNode("Base")
	root.Add(base)

	parent := base
	if withMain {
		main := scene.NewNode("Main")
		base.Add(main)
		parent = main
	}
	for _, name := range []string{"Arm_01", "Arm_02", "Arm_03", "Hand"} {
		n := scene.NewNode(name)
		n.Meshes = []*scene.Mesh{{Name: name, Positions: [][3]float32{{0, 0, 0}}, Indices: []uint32{0}}}
		parent.Add(n)
		parent = n
	}
	return root
}

func stockModels(id string) (*scene.Node, error) {
	switch id {
	case "robot":
		return robotArm(true), nil
	default:
		return scene.NewNode(id), nil
	}
}

func near(a, b float64, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func deg(d float64) float64 { return d * math.Pi / 180 }

func TestPlaceAppliesPlacementAndPose(t *testing.T) {
	cfg := config.Default()
	s := BuildScene(cfg.Scene)
	a := anim.New()
	c := NewComposer(s, a, cfg.Scene.Models, cfg.Animation)

	root := c.Place(assets.Result{ID: "robot", Root: robotArm(true)})
	if root == nil {
		t.Fatal("robot not placed")
	}
	if root.Position[1] != 1.5 || root.Scale[0] != 0.4 {
		t.Errorf("placement = pos %v scale %v", root.Position, root.Scale)
	}
	if root.Parent() != s.Root {
		t.Error("placed model must hang off the world root")
	}

	poses := []struct {
		name string
		axis int
		want float64
	}{
		{"Arm_01", 0, deg(80)},
		{"Arm_02", 0, deg(170)},
		{"Arm_03", 0, deg(95)},
		{"Hand", 1, deg(90)},
	}
	for _, p := range poses {
		n := s.FindByName(p.name)
		if n == nil {
			t.Fatalf("%s missing", p.name)
		}
		if got := float64(n.Rotation[p.axis]); !near(got, p.want, 1e-6) {
			t.Errorf("%s rotation[%d] = %v, want %v", p.name, p.axis, got, p.want)
		}
	}

	if !a.Bound() {
		t.Error("animated joint should be bound after placing the robot")
	}
	if c.Placed("robot") != root {
		t.Error("Placed must return the robot root")
	}
}

func TestPlaceSkipsFailedLoad(t *testing.T) {
	cfg := config.Default()
	s := BuildScene(cfg.Scene)
	a := anim.New()
	c := NewComposer(s, a, cfg.Scene.Models, cfg.Animation)

	if got := c.Place(assets.Result{ID: "robot", Err: errors.New("decode robotarm.glb: EOF")}); got != nil {
		t.Error("failed load must not be placed")
	}
	if len(s.Root.Children) != 0 || a.Bound() {
		t.Error("failed load must leave the scene and animator untouched")
	}
	if got := c.Place(assets.Result{ID: "mystery", Root: scene.NewNode("x")}); got != nil {
		t.Error("unknown id must not be placed")
	}
}

func TestPlaceTwiceIsIgnored(t *testing.T) {
	cfg := config.Default()
	s := BuildScene(cfg.Scene)
	c := NewComposer(s, anim.New(), cfg.Scene.Models, cfg.Animation)

	c.Place(assets.Result{ID: "pallet", Root: scene.NewNode("pallet")})
	if c.Place(assets.Result{ID: "pallet", Root: scene.NewNode("pallet")}) != nil {
		t.Error("second placement of the same id must be ignored")
	}
	if len(s.Root.Children) != 1 {
		t.Errorf("world has %d children, want 1", len(s.Root.Children))
	}
}

func TestMissingPoseJointStillRenders(t *testing.T) {
	cfg := config.Default()
	s := BuildScene(cfg.Scene)
	a := anim.New()
	c := NewComposer(s, a, cfg.Scene.Models, cfg.Animation)

	robot := robotArm(true)
	arm2 := robot.FindByName("Arm_02")
	arm2.Name = "Elbow"

	if c.Place(assets.Result{ID: "robot", Root: robot}) == nil {
		t.Fatal("model with a missing posed joint must still be placed")
	}
	if !near(float64(s.FindByName("Arm_03").Rotation[0]), deg(95), 1e-6) {
		t.Error("remaining poses must still apply")
	}
	if arm2.Rotation[0] != 0 {
		t.Error("renamed node must not be posed")
	}
	if !a.Bound() {
		t.Error("Main is present, joint should be bound")
	}
}

func TestBuildScene(t *testing.T) {
	cfg := config.Default()
	s := BuildScene(cfg.Scene)

	if s.Background != scene.ColorFromHex(0x808080) {
		t.Errorf("background = %v", s.Background)
	}
	if s.Ambient.Color != scene.ColorFromHex(0xffffff) {
		t.Errorf("ambient = %v", s.Ambient.Color)
	}
	if len(s.Grid) != 4*(cfg.Scene.Grid.Divisions+1) {
		t.Errorf("grid has %d vertices", len(s.Grid))
	}
}

func startedViewer(t *testing.T, build func(string) (*scene.Node, error)) (*Viewer, *fakeLoader) {
	t.Helper()
	cfg := config.Default()
	cfg.Scene.AssetDir = "models"
	l := newFakeLoader(build)
	v := New(cfg, l)
	v.Start()
	v.Frame(frame)
	return v, l
}

func TestStartRequestsEveryModel(t *testing.T) {
	v, l := startedViewer(t, stockModels)

	want := map[string]string{
		"robot":  filepath.Join("models", "robotarm.glb"),
		"pallet": filepath.Join("models", "pallet-box.glb"),
		"tablet": filepath.Join("models", "tablet-stand.glb"),
	}
	for id, path := range want {
		if l.requested[id] != path {
			t.Errorf("%s requested as %q, want %q", id, l.requested[id], path)
		}
	}
	if v.LoadsPending() != 0 {
		t.Errorf("pending = %d after first frame", v.LoadsPending())
	}
	if len(v.Scene.Root.Children) != 3 {
		t.Errorf("world has %d models, want 3", len(v.Scene.Root.Children))
	}
}

func TestSubsetOfLoadsFails(t *testing.T) {
	v, _ := startedViewer(t, func(id string) (*scene.Node, error) {
		if id == "pallet" {
			return nil, errors.New("decode pallet-box.glb: no such file")
		}
		return stockModels(id)
	})

	if v.Composer().Placed("pallet") != nil {
		t.Error("failed pallet must be absent")
	}
	if v.Composer().Placed("robot") == nil || v.Composer().Placed("tablet") == nil {
		t.Error("robot and tablet must still be placed")
	}
	if !v.Animator.Bound() {
		t.Error("robot joint should be bound")
	}
}

func TestStartSkipsRejectedRequest(t *testing.T) {
	cfg := config.Default()
	l := newFakeLoader(stockModels)
	l.fail["tablet"] = assets.ErrAlreadyRequested
	v := New(cfg, l)
	v.Start()

	if v.LoadsPending() != 2 {
		t.Errorf("pending = %d, want 2", v.LoadsPending())
	}
}

func TestKeySweepEndToEnd(t *testing.T) {
	v, _ := startedViewer(t, stockModels)
	main := v.Scene.FindByName("Main")

	v.KeyDown("Left", false)
	if v.Animator.State() != anim.RotatingLeft {
		t.Fatalf("state = %s, want rotating-left", v.Animator.State())
	}

	// Mid-sweep triggers are dropped.
	v.KeyDown("Right", false)

	frames := 0
	for v.Animator.State() != anim.Idle && frames < 1000 {
		v.Frame(frame)
		frames++
	}
	if frames != 101 {
		t.Errorf("sweep took %d frames, want 101", frames)
	}
	if got := float64(main.Rotation[1]); !near(got, -math.Pi/2, 1e-4) {
		t.Errorf("Main.y = %v, want -pi/2", got)
	}
	if v.Animator.Accumulated() != 0 {
		t.Error("accumulator must reset on completion")
	}
}

func TestRobotLoadFailureKeepsTriggersHarmless(t *testing.T) {
	v, _ := startedViewer(t, func(id string) (*scene.Node, error) {
		if id == "robot" {
			return nil, errors.New("decode robotarm.glb: unexpected EOF")
		}
		return stockModels(id)
	})

	if v.Composer().Placed("robot") != nil {
		t.Fatal("failed robot must be absent")
	}
	if v.Composer().Placed("pallet") == nil || v.Composer().Placed("tablet") == nil {
		t.Error("pallet and tablet must still be placed")
	}
	if v.Animator.Bound() {
		t.Fatal("animator must stay unbound without the robot")
	}

	v.KeyDown("Left", false)
	for i := 0; i < 200; i++ {
		v.Frame(frame)
	}
	if v.Animator.State() != anim.RotatingLeft {
		t.Errorf("state = %s, want rotating-left", v.Animator.State())
	}
	if v.Animator.Accumulated() != 0 {
		t.Errorf("accumulated = %v, want 0", v.Animator.Accumulated())
	}

	// A button press while stuck rotating is ignored like any mid-sweep trigger.
	v.KeyDown("Right", false)
	v.Frame(frame)
	if v.Animator.State() != anim.RotatingLeft {
		t.Errorf("state after Right = %s", v.Animator.State())
	}
}

func TestUnboundJointNeverMoves(t *testing.T) {
	v, _ := startedViewer(t, func(id string) (*scene.Node, error) {
		if id == "robot" {
			return robotArm(false), nil
		}
		return stockModels(id)
	})
	if v.Animator.Bound() {
		t.Fatal("robot without Main must leave the animator unbound")
	}

	v.KeyDown("Right", false)
	before := v.Scene.FindByName("Base").Rotation
	for i := 0; i < 200; i++ {
		v.Frame(frame)
	}
	if v.Animator.State() != anim.RotatingRight {
		t.Errorf("state = %s, want rotating-right to persist", v.Animator.State())
	}
	if v.Animator.Accumulated() != 0 {
		t.Error("no angle may accumulate without a joint")
	}
	if v.Scene.FindByName("Base").Rotation != before {
		t.Error("nothing may rotate without a joint")
	}
}

func TestTimeModeSweepIgnoresFrameRate(t *testing.T) {
	for _, hz := range []int{30, 60, 144} {
		cfg := config.Default()
		cfg.Animation.Mode = "time"
		v := New(cfg, newFakeLoader(stockModels))
		v.Start()
		v.Frame(0)

		main := v.Scene.FindByName("Main")
		dt := time.Second / time.Duration(hz)
		v.KeyDown("Right", false)
		for i := 0; i < 10*hz && v.Animator.State() != anim.Idle; i++ {
			v.Frame(dt)
		}
		got := float64(main.Rotation[1])
		step := cfg.Animation.Speed() * dt.Seconds()
		if got > math.Pi/2+1e-4 || got < math.Pi/2-step-1e-4 {
			t.Errorf("%d Hz: swept %v, want within one step of pi/2", hz, got)
		}
	}
}

func TestReservedKeys(t *testing.T) {
	v, _ := startedViewer(t, stockModels)

	v.KeyDown("Left", true)
	if v.Animator.State() != anim.Idle {
		t.Error("auto-repeat must not start a sweep")
	}

	v.KeyDown(KeyScreenshot, false)
	if !v.TakeCaptureRequest() {
		t.Error("F12 should request a capture")
	}
	if v.TakeCaptureRequest() {
		t.Error("capture request must clear once taken")
	}

	if v.QuitRequested() {
		t.Fatal("quit requested too early")
	}
	v.KeyDown(KeyQuit, false)
	if !v.QuitRequested() {
		t.Error("Escape should request quit")
	}
}

func TestKeyRouting(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want anim.State
	}{
		{"unbound key", []string{"Space"}, anim.Idle},
		{"left", []string{"Left"}, anim.RotatingLeft},
		{"right", []string{"Right"}, anim.RotatingRight},
		{"second trigger ignored", []string{"Right", "Left"}, anim.RotatingRight},
		{"unbound then bound", []string{"Q", "Left"}, anim.RotatingLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := startedViewer(t, stockModels)
			for _, k := range tt.keys {
				v.KeyDown(k, false)
			}
			if got := v.Animator.State(); got != tt.want {
				t.Errorf("state = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestButtonClickStartsSweepWithoutOrbiting(t *testing.T) {
	v, _ := startedViewer(t, stockModels)
	b := v.HUD.Buttons()[1].Bounds
	x, y := b.X+b.W/2, b.Y+b.H/2
	camBefore := v.Camera.Position

	v.PointerDown(DragRotate, x, y)
	v.PointerMove(x+2, y, 2, 0)
	v.PointerUp(DragRotate, x+2, y)
	v.Frame(frame)

	if v.Animator.State() != anim.RotatingRight {
		t.Errorf("state = %s, want rotating-right", v.Animator.State())
	}
	if v.Camera.Position != camBefore {
		t.Error("a press captured by a button must not orbit the camera")
	}
}

func TestDragOrbitsCamera(t *testing.T) {
	v, _ := startedViewer(t, stockModels)
	before := v.Camera.Position
	dist := v.Camera.Position.Sub(v.Camera.Target).Len()

	v.PointerDown(DragRotate, 100, 100)
	v.PointerMove(160, 100, 60, 0)
	v.PointerUp(DragRotate, 160, 100)
	v.Frame(frame)

	if v.Camera.Position == before {
		t.Fatal("rotate drag should move the camera")
	}
	if got := v.Camera.Position.Sub(v.Camera.Target).Len(); !near(float64(got), float64(dist), 1e-4) {
		t.Errorf("orbit changed distance: %v -> %v", dist, got)
	}

	v.PointerMove(200, 100, 40, 0)
	moved := v.Camera.Position
	v.Frame(frame)
	if v.Camera.Position != moved {
		t.Error("motion after release must not orbit")
	}

	v.Wheel(3)
	v.Frame(frame)
	if got := v.Camera.Position.Sub(v.Camera.Target).Len(); got >= dist {
		t.Errorf("wheel up should dolly in: %v -> %v", dist, got)
	}
}

func TestResizeFollowsWindow(t *testing.T) {
	v, _ := startedViewer(t, stockModels)
	before := v.HUD.Buttons()[0].Bounds

	v.Resize(1920, 1080, 3840, 2160)

	if v.HUD.Buttons()[0].Bounds == before {
		t.Error("buttons should re-layout")
	}
	if !near(float64(v.Camera.Aspect), 16.0/9.0, 1e-6) {
		t.Errorf("aspect = %v", v.Camera.Aspect)
	}
	if w, h := v.PointSize(); w != 1920 || h != 1080 {
		t.Errorf("point size = %dx%d", w, h)
	}

	v.Resize(0, 0, 0, 0)
	if w, _ := v.PointSize(); w != 1920 {
		t.Error("a zero-size resize (minimised window) must be ignored")
	}
}

func TestButtonsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Buttons = false
	v := New(cfg, newFakeLoader(stockModels))

	if v.HUD != nil || v.Overlay() != nil {
		t.Error("no overlay expected with buttons disabled")
	}
	v.PointerDown(DragRotate, 640, 680)
	v.PointerUp(DragRotate, 640, 680)
	if v.Animator.State() != anim.Idle {
		t.Error("clicks must not trigger without buttons")
	}
}
