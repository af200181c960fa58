package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/anim"
	"github.com/Faultbox/armview/internal/assets"
	"github.com/Faultbox/armview/internal/config"
	"github.com/Faultbox/armview/internal/engine/debug"
	"github.com/Faultbox/armview/internal/engine/lighting"
	"github.com/Faultbox/armview/internal/engine/scene"
	"github.com/Faultbox/armview/internal/logger"
)

// BuildScene creates the empty world: background, lights and floor grid.
// Colours are expected to be validated already; bad ones fall back to
// black.
func BuildScene(cfg config.SceneConfig) *scene.Scene {
	s := scene.New()
	s.Background = color(cfg.Background)
	s.Ambient = lighting.Ambient{
		Color:     color(cfg.Ambient.Color),
		Intensity: cfg.Ambient.Intensity,
	}
	s.Sun = lighting.Sun{
		Enabled:   cfg.Sun.Enabled,
		Longitude: cfg.Sun.Longitude,
		Latitude:  cfg.Sun.Latitude,
		Color:     color(cfg.Sun.Color),
		Intensity: cfg.Sun.Intensity,
	}
	s.Grid = debug.Grid{
		Size:        cfg.Grid.Size,
		Divisions:   cfg.Grid.Divisions,
		CenterColor: color(cfg.Grid.CenterColor),
		Color:       color(cfg.Grid.Color),
	}.Lines()
	return s
}

func color(hex string) scene.Color {
	c, _ := scene.ParseHexColor(hex)
	return c
}

// Composer places loaded models into the world and binds the animated
// joint to the animator.
type Composer struct {
	scene    *scene.Scene
	animator *anim.Animator
	models   map[string]config.ModelConfig
	target   config.AnimationConfig
	placed   map[string]*scene.Node
	log      *zap.Logger
}

// NewComposer creates a composer for the given placements.
func NewComposer(s *scene.Scene, a *anim.Animator, models []config.ModelConfig, target config.AnimationConfig) *Composer {
	c := &Composer{
		scene:    s,
		animator: a,
		models:   make(map[string]config.ModelConfig, len(models)),
		target:   target,
		placed:   make(map[string]*scene.Node),
		log:      logger.Named("viewer"),
	}
	for _, m := range models {
		c.models[m.ID] = m
	}
	return c
}

// Place adds a successful load to the world and returns its root. Failed
// loads and unknown ids are skipped and return nil; the rest of the scene
// is unaffected.
func (c *Composer) Place(res assets.Result) *scene.Node {
	if res.Err != nil || res.Root == nil {
		c.log.Info("model omitted from scene", zap.String("id", res.ID))
		return nil
	}
	m, ok := c.models[res.ID]
	if !ok {
		c.log.Warn("no placement for model", zap.String("id", res.ID))
		return nil
	}
	if c.Placed(res.ID) != nil {
		c.log.Warn("model already placed", zap.String("id", res.ID))
		return nil
	}
	root := res.Root
	if root.Parent() != nil {
		c.log.Warn("model root already attached elsewhere", zap.String("id", res.ID))
		return nil
	}
	root.Position = m.Position
	root.Rotation = mgl32.Vec3{
		mgl32.DegToRad(m.Rotation[0]),
		mgl32.DegToRad(m.Rotation[1]),
		mgl32.DegToRad(m.Rotation[2]),
	}
	if m.Scale != 0 {
		root.SetScale(m.Scale)
	}

	for _, pose := range m.Joints {
		axis, _ := scene.ParseAxis(pose.Axis)
		j := scene.ResolveJoint(root, pose.Name, axis)
		if j == nil {
			c.log.Warn("joint not found, pose skipped",
				zap.String("model", m.ID), zap.String("joint", pose.Name))
			continue
		}
		j.SetAngle(mgl32.DegToRad(pose.Degrees))
		c.log.Debug("joint posed",
			zap.String("model", m.ID), zap.String("joint", pose.Name), zap.Float32("angle", j.Angle()))
	}

	if m.ID == c.target.Model {
		c.bind(root)
	}

	c.scene.Add(root)
	c.placed[m.ID] = root
	c.log.Info("model placed",
		zap.String("id", m.ID),
		zap.Int("meshes", countMeshes(root)),
	)
	return root
}

// bind resolves the animated joint once. A missing node leaves the
// animator unbound, so triggers change state but nothing moves.
func (c *Composer) bind(root *scene.Node) {
	axis, _ := scene.ParseAxis(c.target.Axis)
	j := scene.ResolveJoint(root, c.target.Joint, axis)
	if j == nil {
		c.log.Warn("animated joint not found, sweeps disabled",
			zap.String("model", c.target.Model), zap.String("joint", c.target.Joint))
		return
	}
	c.animator.Bind(j)
	c.log.Debug("animated joint bound",
		zap.String("joint", c.target.Joint), zap.Stringer("axis", axis))
}

// Placed returns the root of a placed model, or nil.
func (c *Composer) Placed(id string) *scene.Node {
	return c.placed[id]
}

func countMeshes(n *scene.Node) int {
	count := 0
	n.Walk(func(n *scene.Node) bool {
		count += len(n.Meshes)
		return true
	})
	return count
}
