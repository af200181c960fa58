package scene

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func nearVec(a, b mgl32.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

// buildRobot returns a small hierarchy shaped like the robot arm model.
func buildRobot() *Node {
	root := NewNode("Scene")
	main := NewNode("Main")
	arm1 := NewNode("Arm_01")
	arm2 := NewNode("Arm_02")
	hand := NewNode("Hand")
	root.Add(main)
	main.Add(arm1)
	arm1.Add(arm2)
	arm2.Add(hand)
	return root
}

func TestFindByName(t *testing.T) {
	root := buildRobot()

	for _, name := range []string{"Scene", "Main", "Arm_01", "Arm_02", "Hand"} {
		if n := root.FindByName(name); n == nil || n.Name != name {
			t.Errorf("FindByName(%q) = %v", name, n)
		}
	}
	if n := root.FindByName("IK"); n != nil {
		t.Errorf("expected nil for missing node, got %v", n.Name)
	}
}

func TestFindByNameReturnsFirstPreOrder(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	dupDeep := NewNode("dup")
	dupShallow := NewNode("dup")
	a.Add(dupDeep)
	root.Add(a, dupShallow)

	if got := root.FindByName("dup"); got != dupDeep {
		t.Error("expected the depth-first match under the first child")
	}
}

func TestAddReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.Add(c)
	b.Add(c)

	if len(a.Children) != 0 {
		t.Errorf("expected c detached from a, a has %d children", len(a.Children))
	}
	if c.Parent() != b {
		t.Error("expected c parented to b")
	}
	a.Add(a, nil)
	if len(a.Children) != 0 {
		t.Error("self and nil children must be ignored")
	}
}

func TestLocalMatrixTransformsPoint(t *testing.T) {
	n := NewNode("n")
	n.SetScale(0.4)
	n.Position = mgl32.Vec3{0, 1.5, 0}
	n.Rotation = mgl32.Vec3{0, gomath.Pi / 2, 0}

	p := n.LocalMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	// scale to 0.4, rotate +90° about Y (x -> -z), translate up 1.5
	want := mgl32.Vec3{0, 1.5, -0.4}
	if !nearVec(p.Vec3(), want) {
		t.Errorf("transformed point = %v, want %v", p.Vec3(), want)
	}
}

func TestWorldMatrixComposesParents(t *testing.T) {
	parent := NewNode("parent")
	parent.Position = mgl32.Vec3{1, 0, 0}
	parent.SetScale(2)
	child := NewNode("child")
	child.Position = mgl32.Vec3{0, 1, 0}
	parent.Add(child)

	p := child.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !nearVec(p.Vec3(), mgl32.Vec3{1, 2, 0}) {
		t.Errorf("child origin in world = %v, want {1 2 0}", p.Vec3())
	}
}

func TestTraverseSkipsHiddenSubtree(t *testing.T) {
	root := buildRobot()
	root.FindByName("Arm_01").Visible = false

	var seen []string
	root.Traverse(mgl32.Ident4(), func(n *Node, _ mgl32.Mat4) {
		seen = append(seen, n.Name)
	})
	if len(seen) != 2 || seen[0] != "Scene" || seen[1] != "Main" {
		t.Errorf("visited %v, want [Scene Main]", seen)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	tests := []mgl32.Vec3{
		{0, 0, 0},
		{0.3, 0.2, 0.1},
		{-1.2, 0.7, 2.5},
		{mgl32.DegToRad(80), 0, 0},
		{0, mgl32.DegToRad(90) - 0.2, 0},
	}

	for _, e := range tests {
		q := mgl32.Mat4ToQuat(EulerMatrix(e))
		got := EulerFromQuat(q)
		if !nearVec(got, e) {
			t.Errorf("EulerFromQuat(EulerMatrix(%v)) = %v", e, got)
		}
	}
}

func TestEulerFromQuatAxisRotation(t *testing.T) {
	q := mgl32.QuatRotate(gomath.Pi/2, mgl32.Vec3{0, 1, 0})
	got := EulerFromQuat(q)
	if !nearVec(got, mgl32.Vec3{0, gomath.Pi / 2, 0}) {
		t.Errorf("euler = %v, want {0 pi/2 0}", got)
	}
}

func TestJointRotate(t *testing.T) {
	root := buildRobot()
	j := ResolveJoint(root, "Main", AxisY)
	if j == nil {
		t.Fatal("expected Main to resolve")
	}
	j.Rotate(-gomath.Pi / 200)
	j.Rotate(-gomath.Pi / 200)

	main := root.FindByName("Main")
	if !near(main.Rotation.Y(), -gomath.Pi/100) {
		t.Errorf("Main rotation.y = %f, want %f", main.Rotation.Y(), -gomath.Pi/100)
	}
	if main.Rotation.X() != 0 || main.Rotation.Z() != 0 {
		t.Errorf("joint touched other axes: %v", main.Rotation)
	}
	if !near(j.Angle(), main.Rotation.Y()) {
		t.Error("Angle disagrees with node rotation")
	}
}

func TestResolveJointMissing(t *testing.T) {
	if j := ResolveJoint(buildRobot(), "Nope", AxisY); j != nil {
		t.Error("expected nil joint for missing node")
	}
	if j := ResolveJoint(nil, "Main", AxisY); j != nil {
		t.Error("expected nil joint for nil root")
	}
}

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]Axis{"x": AxisX, "Y": AxisY, "z": AxisZ} {
		got, ok := ParseAxis(in)
		if !ok || got != want {
			t.Errorf("ParseAxis(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseAxis("w"); ok {
		t.Error("expected w to be rejected")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		err  bool
	}{
		{"#808080", Color{128.0 / 255, 128.0 / 255, 128.0 / 255}, false},
		{"0xffffff", Color{1, 1, 1}, false},
		{"000000", Color{0, 0, 0}, false},
		{"#fff", Color{}, true},
		{"#gggggg", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.err {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("expected ErrInvalidColor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != "#"+tt.in[len(tt.in)-6:] {
				t.Errorf("String() = %s", got.String())
			}
		})
	}
}

func TestMeshComputeNormals(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, -1}},
		Indices:   []uint32{0, 1, 2},
	}
	m.ComputeNormals()
	for i, n := range m.Normals {
		if !nearVec(n, mgl32.Vec3{0, 1, 0}) {
			t.Errorf("normal %d = %v, want +Y", i, n)
		}
	}

	lo, hi := m.Bounds()
	if lo != [3]float32{0, 0, -1} || hi != [3]float32{1, 0, 0} {
		t.Errorf("bounds = %v..%v", lo, hi)
	}
}

func TestSceneDrawAndCount(t *testing.T) {
	s := New()
	robot := buildRobot()
	robot.FindByName("Main").Meshes = []*Mesh{{Name: "base"}}
	robot.FindByName("Hand").Meshes = []*Mesh{{Name: "hand"}, {Name: "finger"}}
	s.Add(robot)

	if s.MeshCount() != 3 {
		t.Errorf("MeshCount = %d, want 3", s.MeshCount())
	}

	drawn := 0
	s.Draw(func(*Mesh, mgl32.Mat4) { drawn++ })
	if drawn != 3 {
		t.Errorf("drew %d meshes, want 3", drawn)
	}
	if s.FindByName("Hand") == nil {
		t.Error("expected world lookup to reach model nodes")
	}
}
