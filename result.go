package raycast

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap/zapcore"
)

// NoTriangle is reported by TriangleIndex when the hit geometry is not a mesh
// or the triangle is unknown.
const NoTriangle = -1

// Result records the nearest hit of a single ray cast.
//
// A Result is meant to be reused across many casts: call Reset or ResetRay
// before each one. The setters never clear HasHit, so a Result that is not
// reset between casts can report a previous hit.
//
// The zero value is the empty state. A Result has no locking; goroutines
// casting concurrently must each own their Result.
type Result struct {
	hasHit      bool
	hitDistance float64

	hitNormalWorld mgl64.Vec3
	hitPointWorld  mgl64.Vec3
	rayFromWorld   mgl64.Vec3
	rayToWorld     mgl64.Vec3

	// triangle index + 1, so the zero value means NoTriangle
	triangle int

	body    Handle
	hasBody bool

	bodyIndex    int
	hasBodyIndex bool
}

func NewResult() *Result {
	return &Result{}
}

// SetHitData records a hit with no triangle information.
// The hit distance is left untouched, see SetHitDistance and CalculateHitDistance.
func (r *Result) SetHitData(normal, point mgl64.Vec3) {
	r.SetHitTriangle(normal, point, NoTriangle)
}

// SetHitTriangle records a hit on the given triangle of a mesh.
//
// Negative indices are not stored as given: any of them is recorded as
// NoTriangle, so TriangleIndex has a single "not applicable" value.
func (r *Result) SetHitTriangle(normal, point mgl64.Vec3, triangleIndex int) {
	r.hitNormalWorld = normal
	r.hitPointWorld = point
	r.triangle = max(triangleIndex, NoTriangle) + 1
	r.hasHit = true
}

// SetHitDistance sets the hit distance whether or not a hit was recorded.
func (r *Result) SetHitDistance(distance float64) {
	r.hitDistance = distance
}

// CalculateHitDistance sets the hit distance to the distance between the ray
// origin and the hit point.
func (r *Result) CalculateHitDistance() {
	r.hitDistance = r.rayFromWorld.Sub(r.hitPointWorld).Len()
}

// SetBody records the body that was hit.
func (r *Result) SetBody(body Handle) {
	r.body = body
	r.hasBody = true
}

// SetBodyIndex records which instance of an instanced body was hit.
func (r *Result) SetBodyIndex(index int) {
	r.bodyIndex = index
	r.hasBodyIndex = true
}

// Reset returns the result to the empty state with both ray endpoints at the origin.
func (r *Result) Reset() {
	r.ResetRay(mgl64.Vec3{}, mgl64.Vec3{})
}

// ResetRay returns the result to the empty state for a ray from -> to.
func (r *Result) ResetRay(from, to mgl64.Vec3) {
	*r = Result{
		rayFromWorld: from,
		rayToWorld:   to,
	}
}

func (r *Result) HasHit() bool {
	return r.hasHit
}

func (r *Result) HitDistance() float64 {
	return r.hitDistance
}

func (r *Result) HitNormalWorld() mgl64.Vec3 {
	return r.hitNormalWorld
}

func (r *Result) HitPointWorld() mgl64.Vec3 {
	return r.hitPointWorld
}

func (r *Result) RayFromWorld() mgl64.Vec3 {
	return r.rayFromWorld
}

func (r *Result) RayToWorld() mgl64.Vec3 {
	return r.rayToWorld
}

// TriangleIndex returns the index of the hit triangle, or NoTriangle.
func (r *Result) TriangleIndex() int {
	return r.triangle - 1
}

// Body returns the handle of the hit body, if any.
func (r *Result) Body() (Handle, bool) {
	return r.body, r.hasBody
}

// BodyIndex returns the instance index within the hit body, if the body is instanced.
func (r *Result) BodyIndex() (int, bool) {
	return r.bodyIndex, r.hasBodyIndex
}

func (r *Result) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("hasHit", r.hasHit)
	enc.AddString("from", vecString(r.rayFromWorld))
	enc.AddString("to", vecString(r.rayToWorld))
	// SetHitDistance is valid without a hit
	enc.AddFloat64("distance", r.hitDistance)
	if !r.hasHit {
		return nil
	}
	enc.AddString("point", vecString(r.hitPointWorld))
	enc.AddString("normal", vecString(r.hitNormalWorld))
	if idx := r.TriangleIndex(); idx != NoTriangle {
		enc.AddInt("triangle", idx)
	}
	if r.hasBody {
		enc.AddString("body", r.body.String())
	}
	if r.hasBodyIndex {
		enc.AddInt("bodyIndex", r.bodyIndex)
	}
	return nil
}

func vecString(v mgl64.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
