package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Union returns the smallest AABB containing both boxes
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{
			math.Min(a.Min[0], other.Min[0]),
			math.Min(a.Min[1], other.Min[1]),
			math.Min(a.Min[2], other.Min[2]),
		},
		Max: mgl64.Vec3{
			math.Max(a.Max[0], other.Max[0]),
			math.Max(a.Max[1], other.Max[1]),
			math.Max(a.Max[2], other.Max[2]),
		},
	}
}

// IntersectRay runs the slab test against the ray and returns the distance at
// which the ray enters the box, clamped to 0 when the origin is inside.
func (a AABB) IntersectRay(ray Ray) (float64, bool) {
	tMin := 0.0
	tMax := ray.Length

	for i := 0; i < 3; i++ {
		if math.Abs(ray.Direction[i]) < rayEpsilon {
			// Parallel to the slab: the origin must lie between the planes
			if ray.Origin[i] < a.Min[i] || ray.Origin[i] > a.Max[i] {
				return 0, false
			}
			continue
		}

		inv := 1.0 / ray.Direction[i]
		t1 := (a.Min[i] - ray.Origin[i]) * inv
		t2 := (a.Max[i] - ray.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	return tMin, true
}

// pointsAABB returns the AABB of the points after transform
func pointsAABB(points []mgl64.Vec3, transform Transform) AABB {
	if len(points) == 0 {
		return AABB{Min: transform.Position, Max: transform.Position}
	}

	worldPoint := transform.ToWorld(points[0])
	min := worldPoint
	max := worldPoint

	for _, p := range points[1:] {
		worldPoint = transform.ToWorld(p)

		min[0] = math.Min(min[0], worldPoint[0])
		min[1] = math.Min(min[1], worldPoint[1])
		min[2] = math.Min(min[2], worldPoint[2])

		max[0] = math.Max(max[0], worldPoint[0])
		max[1] = math.Max(max[1], worldPoint[1])
		max[2] = math.Max(max[2], worldPoint[2])
	}

	return AABB{Min: min, Max: max}
}
