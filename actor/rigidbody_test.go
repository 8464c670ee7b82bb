package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBodyType_Constants(t *testing.T) {
	if BodyTypeDynamic != 0 {
		t.Errorf("BodyTypeDynamic = %d, want 0", BodyTypeDynamic)
	}
	if BodyTypeStatic != 1 {
		t.Errorf("BodyTypeStatic = %d, want 1", BodyTypeStatic)
	}
}

func TestNewRigidBody(t *testing.T) {
	transform := Transform{Position: mgl64.Vec3{1, 2, 3}}
	rb := NewRigidBody(transform, &Sphere{Radius: 1}, BodyTypeDynamic)

	if rb.Handle.IsZero() {
		t.Error("NewRigidBody() should assign a handle")
	}
	if rb.Membership != DefaultGroup || rb.CollideWith != AllGroups {
		t.Errorf("groups = %b/%b, want %b/%b", rb.Membership, rb.CollideWith, DefaultGroup, AllGroups)
	}
	// A zero rotation is replaced by the identity
	if rb.Transform.Rotation != mgl64.QuatIdent() || rb.Transform.InverseRotation != mgl64.QuatIdent() {
		t.Errorf("Rotation = %v, InverseRotation = %v, want identity", rb.Transform.Rotation, rb.Transform.InverseRotation)
	}

	expected := AABB{Min: mgl64.Vec3{0, 1, 2}, Max: mgl64.Vec3{2, 3, 4}}
	if rb.GetAABB() != expected {
		t.Errorf("GetAABB() = %v, want %v", rb.GetAABB(), expected)
	}

	other := NewRigidBody(transform, &Sphere{Radius: 1}, BodyTypeDynamic)
	if other.Handle == rb.Handle {
		t.Error("handles should be unique")
	}
}

func TestRigidBodySetPosition(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, BodyTypeDynamic)
	rb.SetPosition(mgl64.Vec3{10, 0, 0})

	if !rb.GetAABB().ContainsPoint(mgl64.Vec3{10, 0, 0}) || rb.GetAABB().ContainsPoint(mgl64.Vec3{0, 0, 0}) {
		t.Errorf("AABB not refreshed after SetPosition: %v", rb.GetAABB())
	}
}

func TestRigidBodyIsUnbounded(t *testing.T) {
	tests := []struct {
		name     string
		shape    ShapeInterface
		expected bool
	}{
		{"sphere", &Sphere{Radius: 1}, false},
		{"box", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, false},
		{"mesh", &Mesh{}, false},
		{"plane", &Plane{Normal: mgl64.Vec3{0, 1, 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRigidBody(NewTransform(), tt.shape, BodyTypeStatic)
			if rb.IsUnbounded() != tt.expected {
				t.Errorf("IsUnbounded() = %v, want %v", rb.IsUnbounded(), tt.expected)
			}
		})
	}
}

func TestRigidBodyIntersectRay_Transformed(t *testing.T) {
	// Box rotated 90° around Z: its long Y axis lies along X
	rb := NewRigidBody(
		NewTransformAt(mgl64.Vec3{0, 5, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})),
		&Box{HalfExtents: mgl64.Vec3{1, 4, 1}},
		BodyTypeStatic,
	)

	hit, ok := rb.IntersectRay(NewRay(mgl64.Vec3{-10, 5, 0}, mgl64.Vec3{10, 5, 0}))
	if !ok {
		t.Fatal("expected a hit")
	}
	if !floatEqual(hit.Distance, 6, 1e-9) {
		t.Errorf("Distance = %v, want 6", hit.Distance)
	}
	if !vec3Equal(hit.Point, mgl64.Vec3{-4, 5, 0}, 1e-9) {
		t.Errorf("Point = %v, want (-4, 5, 0)", hit.Point)
	}
	if !vec3Equal(hit.Normal, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("Normal = %v, want (-1, 0, 0)", hit.Normal)
	}
	if hit.Instance != -1 || hit.Triangle != -1 {
		t.Errorf("Instance = %d, Triangle = %d, want -1, -1", hit.Instance, hit.Triangle)
	}

	// Short of the box
	if _, ok := rb.IntersectRay(NewRay(mgl64.Vec3{-10, 5, 0}, mgl64.Vec3{-5, 5, 0})); ok {
		t.Error("segment ending before the box should miss")
	}
}

func TestRigidBodyIntersectRay_Degenerate(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeStatic)

	if _, ok := rb.IntersectRay(NewRay(mgl64.Vec3{}, mgl64.Vec3{})); ok {
		t.Error("a zero-length ray should never hit")
	}
}

func TestRigidBodyIntersectRay_Instanced(t *testing.T) {
	instances := []Transform{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{5, 0, 0}},
		{Position: mgl64.Vec3{10, 0, 0}},
	}
	rb := NewInstancedRigidBody(
		Transform{Position: mgl64.Vec3{0, 0, 2}},
		&Sphere{Radius: 1},
		BodyTypeStatic,
		instances,
	)

	if !rb.IsInstanced() {
		t.Fatal("IsInstanced() = false")
	}

	expectedAABB := AABB{Min: mgl64.Vec3{-1, -1, 1}, Max: mgl64.Vec3{11, 1, 3}}
	if !vec3Equal(rb.GetAABB().Min, expectedAABB.Min, 1e-9) || !vec3Equal(rb.GetAABB().Max, expectedAABB.Max, 1e-9) {
		t.Errorf("GetAABB() = %v, want %v", rb.GetAABB(), expectedAABB)
	}

	tests := []struct {
		name     string
		from, to mgl64.Vec3
		instance int
		distance float64
	}{
		{"middle instance from above", mgl64.Vec3{5, 10, 2}, mgl64.Vec3{5, -10, 2}, 1, 9},
		{"nearest instance along X", mgl64.Vec3{20, 0, 2}, mgl64.Vec3{-20, 0, 2}, 2, 9},
		{"first instance from -X", mgl64.Vec3{-20, 0, 2}, mgl64.Vec3{20, 0, 2}, 0, 19},
		{"between instances", mgl64.Vec3{2.5, 10, 2}, mgl64.Vec3{2.5, -10, 2}, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := rb.IntersectRay(NewRay(tt.from, tt.to))
			if ok != (tt.instance >= 0) {
				t.Fatalf("hit = %v, want %v", ok, tt.instance >= 0)
			}
			if !ok {
				return
			}
			if hit.Instance != tt.instance {
				t.Errorf("Instance = %d, want %d", hit.Instance, tt.instance)
			}
			if !floatEqual(hit.Distance, tt.distance, 1e-9) {
				t.Errorf("Distance = %v, want %v", hit.Distance, tt.distance)
			}
		})
	}
}

func TestTransformCompose(t *testing.T) {
	parent := NewTransformAt(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))
	child := NewTransformAt(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent())

	world := parent.Compose(child)

	// +X rotated 90° around Y becomes -Z
	if !vec3Equal(world.Position, mgl64.Vec3{1, 0, -1}, 1e-9) {
		t.Errorf("Position = %v, want (1, 0, -1)", world.Position)
	}

	p := mgl64.Vec3{3, 4, 5}
	if !vec3Equal(world.ToLocal(world.ToWorld(p)), p, 1e-9) {
		t.Error("ToLocal is not the inverse of ToWorld")
	}
}
