package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrInvalidMesh = errors.New("invalid mesh")

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	// Bounds calculates the axis-aligned bounding box for the shape
	// at the given transform
	Bounds(transform Transform) AABB
	// IntersectRay tests a ray expressed in the shape's local space.
	// The returned hit is in local space too.
	IntersectRay(ray Ray) (Hit, bool)
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) corners() []mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	return []mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) Bounds(transform Transform) AABB {
	return pointsAABB(b.corners(), transform)
}

// IntersectRay runs the slab test in box space, keeping track of the axis
// through which the ray enters (or leaves, when it starts inside)
func (b *Box) IntersectRay(ray Ray) (Hit, bool) {
	tEnter := math.Inf(-1)
	tExit := math.Inf(1)
	enterAxis, exitAxis := -1, -1

	for i := 0; i < 3; i++ {
		d := ray.Direction[i]
		o := ray.Origin[i]
		h := b.HalfExtents[i]

		if math.Abs(d) < rayEpsilon {
			if o < -h || o > h {
				return Hit{}, false
			}
			continue
		}

		t1 := (-h - o) / d
		t2 := (h - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tEnter {
			tEnter = t1
			enterAxis = i
		}
		if t2 < tExit {
			tExit = t2
			exitAxis = i
		}
		if tEnter > tExit {
			return Hit{}, false
		}
	}

	if tExit < 0 {
		return Hit{}, false
	}

	var normal mgl64.Vec3
	t := tEnter
	if t >= 0 && enterAxis >= 0 {
		normal[enterAxis] = -math.Copysign(1, ray.Direction[enterAxis])
	} else if exitAxis >= 0 {
		// Origin inside the box: report the exit face
		t = tExit
		normal[exitAxis] = math.Copysign(1, ray.Direction[exitAxis])
	} else {
		return Hit{}, false
	}

	if t > ray.Length {
		return Hit{}, false
	}

	return Hit{Distance: t, Point: ray.At(t), Normal: normal, Triangle: -1, Instance: -1}, true
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

// Bounds calculates the axis-aligned bounding box for the sphere
func (s *Sphere) Bounds(transform Transform) AABB {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	return AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) IntersectRay(ray Ray) (Hit, bool) {
	// Direction is unit length, so the quadratic has a = 1
	b := ray.Origin.Dot(ray.Direction)
	c := ray.Origin.Dot(ray.Origin) - s.Radius*s.Radius

	discriminant := b*b - c
	if discriminant < 0 {
		return Hit{}, false
	}

	sq := math.Sqrt(discriminant)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > ray.Length {
		return Hit{}, false
	}

	point := ray.At(t)
	normal := point.Normalize()
	if s.Radius == 0 {
		normal = ray.Direction.Mul(-1)
	}

	return Hit{Distance: t, Point: point, Normal: normal, Triangle: -1, Instance: -1}, true
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
}

func (p *Plane) Bounds(transform Transform) AABB {
	const thickness = 1.0 // detection thickness below the plane
	const infinity = 1e10

	normal := transform.ToWorldDirection(p.Normal)

	// Point on the plane closest to the origin
	planePoint := normal.Mul(-p.Distance)

	// Create base bounds with thickness along the normal
	min := planePoint.Sub(normal.Mul(thickness)).Add(transform.Position)
	max := planePoint.Add(transform.Position)
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}

	// For axes not aligned with the normal, extend to infinity
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) < 1.0 {
			min[i] = -infinity
			max[i] = infinity
		}
	}

	return AABB{Min: min, Max: max}
}

// IntersectRay hits the plane from either side; the normal faces the ray
func (p *Plane) IntersectRay(ray Ray) (Hit, bool) {
	denom := p.Normal.Dot(ray.Direction)
	if math.Abs(denom) < rayEpsilon {
		return Hit{}, false
	}

	t := -(p.Normal.Dot(ray.Origin) + p.Distance) / denom
	if t < 0 || t > ray.Length {
		return Hit{}, false
	}

	return Hit{
		Distance: t,
		Point:    ray.At(t),
		Normal:   faceRay(p.Normal, ray.Direction),
		Triangle: -1,
		Instance: -1,
	}, true
}

// Mesh is a triangle soup. Every three entries of Indices form a triangle
// whose index (i / 3) is reported on hits.
type Mesh struct {
	Vertices []mgl64.Vec3
	Indices  []int
}

// NewMesh checks that indices describe whole triangles within vertices
func NewMesh(vertices []mgl64.Vec3, indices []int) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d at position %d out of range [0, %d)", ErrInvalidMesh, idx, i, len(vertices))
		}
	}

	return &Mesh{Vertices: vertices, Indices: indices}, nil
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) Triangle(i int) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		m.Vertices[m.Indices[3*i]],
		m.Vertices[m.Indices[3*i+1]],
		m.Vertices[m.Indices[3*i+2]],
	}
}

func (m *Mesh) Bounds(transform Transform) AABB {
	return pointsAABB(m.Vertices, transform)
}

// IntersectRay returns the nearest triangle hit
func (m *Mesh) IntersectRay(ray Ray) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false

	for i := range m.TriangleCount() {
		t, normal, ok := intersectTriangle(ray, m.Triangle(i))
		if !ok || t >= best.Distance {
			continue
		}

		best = Hit{
			Distance: t,
			Point:    ray.At(t),
			Normal:   faceRay(normal, ray.Direction),
			Triangle: i,
			Instance: -1,
		}
		found = true
	}

	return best, found
}

// intersectTriangle implements Möller–Trumbore, both faces count
func intersectTriangle(ray Ray, triangle [3]mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	edge1 := triangle[1].Sub(triangle[0])
	edge2 := triangle[2].Sub(triangle[0])
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if math.Abs(a) < rayEpsilon {
		return 0, mgl64.Vec3{}, false // parallel, or degenerate triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(triangle[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, mgl64.Vec3{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, mgl64.Vec3{}, false
	}

	t := f * edge2.Dot(q)
	if t < 0 || t > ray.Length {
		return 0, mgl64.Vec3{}, false
	}

	return t, edge1.Cross(edge2).Normalize(), true
}
