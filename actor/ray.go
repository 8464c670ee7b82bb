package actor

import "github.com/go-gl/mathgl/mgl64"

// rayEpsilon is the threshold under which a direction component or a
// determinant is treated as zero
const rayEpsilon = 1e-12

// Ray is a finite segment with a normalized direction.
// Distances along a Ray are in world units, not fractions of the segment.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Length    float64
}

// NewRay creates the ray going from -> to. A degenerate segment has a zero
// direction and a zero length, and never hits anything.
func NewRay(from, to mgl64.Vec3) Ray {
	delta := to.Sub(from)
	length := delta.Len()
	if length < rayEpsilon {
		return Ray{Origin: from}
	}

	return Ray{
		Origin:    from,
		Direction: delta.Mul(1.0 / length),
		Length:    length,
	}
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// End returns the far end of the segment
func (r Ray) End() mgl64.Vec3 {
	return r.At(r.Length)
}

// ToLocal expresses the ray in the local space of transform.
// Rotations preserve length, so distances stay comparable.
func (r Ray) ToLocal(transform Transform) Ray {
	return Ray{
		Origin:    transform.ToLocal(r.Origin),
		Direction: transform.ToLocalDirection(r.Direction),
		Length:    r.Length,
	}
}

func (r Ray) IsDegenerate() bool {
	return r.Length == 0
}

// Hit describes where a ray meets a body, in world space.
type Hit struct {
	Distance float64
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	// Triangle is the mesh triangle index, -1 if the shape is not a mesh
	Triangle int
	// Instance is the index in RigidBody.Instances, -1 if the body is not instanced
	Instance int
}

// faceRay flips the normal so it points against the ray direction
func faceRay(normal, direction mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(direction) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
