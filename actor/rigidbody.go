package actor

import (
	"github.com/akmonengine/raycast"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are moved by the simulation between queries
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies never move (e.g., ground, walls)
	BodyTypeStatic
)

const (
	// DefaultGroup is the membership given to new bodies
	DefaultGroup uint32 = 1
	// AllGroups lets a body be hit by rays of any group
	AllGroups uint32 = ^uint32(0)
)

// RigidBody represents a rigid body as seen by ray queries
type RigidBody struct {
	// Handle identifies the body in query results
	Handle raycast.Handle

	// Spatial properties
	Transform Transform
	BodyType  BodyType // Dynamic or Static

	// Collision groups this body belongs to
	Membership uint32
	// Collision groups whose rays may hit this body
	CollideWith uint32

	// Instances turns the body into instanced geometry: the shape is placed
	// once per instance, each transform being relative to Transform
	Instances []Transform

	// Collision shape
	Shape ShapeInterface

	aabb AABB
}

// NewRigidBody creates a new rigid body with the given properties
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType) *RigidBody {
	rb := &RigidBody{
		Handle:      raycast.NewHandle(),
		Transform:   transform.Normalized(),
		BodyType:    bodyType,
		Membership:  DefaultGroup,
		CollideWith: AllGroups,
		Shape:       shape,
	}
	rb.ComputeAABB()

	return rb
}

// NewInstancedRigidBody creates a body placing shape at every instance transform
func NewInstancedRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, instances []Transform) *RigidBody {
	rb := NewRigidBody(transform, shape, bodyType)
	rb.Instances = make([]Transform, len(instances))
	for i, instance := range instances {
		rb.Instances[i] = instance.Normalized()
	}
	rb.ComputeAABB()

	return rb
}

// SetTransform moves the body and refreshes its AABB
func (rb *RigidBody) SetTransform(transform Transform) {
	rb.Transform = transform.Normalized()
	rb.ComputeAABB()
}

func (rb *RigidBody) SetPosition(position mgl64.Vec3) {
	rb.Transform.Position = position
	rb.ComputeAABB()
}

// ComputeAABB refreshes the cached bounds from the transform and instances
func (rb *RigidBody) ComputeAABB() {
	if !rb.IsInstanced() {
		rb.aabb = rb.Shape.Bounds(rb.Transform)
		return
	}

	rb.aabb = rb.Shape.Bounds(rb.InstanceTransform(0))
	for i := 1; i < len(rb.Instances); i++ {
		rb.aabb = rb.aabb.Union(rb.Shape.Bounds(rb.InstanceTransform(i)))
	}
}

func (rb *RigidBody) GetAABB() AABB {
	return rb.aabb
}

// IsUnbounded reports whether the body extends infinitely (planes), in which
// case a spatial index cannot hold it
func (rb *RigidBody) IsUnbounded() bool {
	_, ok := rb.Shape.(*Plane)
	return ok
}

func (rb *RigidBody) IsInstanced() bool {
	return len(rb.Instances) > 0
}

// InstanceTransform returns the world transform of instance i
func (rb *RigidBody) InstanceTransform(i int) Transform {
	return rb.Transform.Compose(rb.Instances[i].Normalized())
}

// IntersectRay returns the nearest hit of a world-space ray with the body,
// over all its instances
func (rb *RigidBody) IntersectRay(ray Ray) (Hit, bool) {
	if ray.IsDegenerate() {
		return Hit{}, false
	}
	if !rb.IsInstanced() {
		return rb.intersectAt(ray, rb.Transform, -1)
	}

	var best Hit
	found := false
	for i := range rb.Instances {
		hit, ok := rb.intersectAt(ray, rb.InstanceTransform(i), i)
		if ok && (!found || hit.Distance < best.Distance) {
			best = hit
			found = true
		}
	}

	return best, found
}

func (rb *RigidBody) intersectAt(ray Ray, transform Transform, instance int) (Hit, bool) {
	hit, ok := rb.Shape.IntersectRay(ray.ToLocal(transform))
	if !ok {
		return Hit{}, false
	}

	// Back to world space
	hit.Point = ray.At(hit.Distance)
	hit.Normal = transform.ToWorldDirection(hit.Normal).Normalize()
	hit.Instance = instance

	return hit, true
}
