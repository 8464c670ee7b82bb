package raycast

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func assertEmpty(t *testing.T, r *Result, from, to mgl64.Vec3) {
	t.Helper()

	assert.False(t, r.HasHit())
	assert.Equal(t, 0.0, r.HitDistance())
	assert.Equal(t, mgl64.Vec3{}, r.HitNormalWorld())
	assert.Equal(t, mgl64.Vec3{}, r.HitPointWorld())
	assert.Equal(t, NoTriangle, r.TriangleIndex())
	assert.Equal(t, from, r.RayFromWorld())
	assert.Equal(t, to, r.RayToWorld())

	_, ok := r.Body()
	assert.False(t, ok, "body should be unset")
	_, ok = r.BodyIndex()
	assert.False(t, ok, "body index should be unset")
}

func hitResult() *Result {
	r := NewResult()
	r.ResetRay(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{9, 9, 9})
	r.SetHitTriangle(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{2, 2, 2}, 4)
	r.SetHitDistance(12)
	r.SetBody(NewHandle())
	r.SetBodyIndex(3)
	return r
}

func TestResultZeroValueIsEmpty(t *testing.T) {
	var r Result
	assertEmpty(t, &r, mgl64.Vec3{}, mgl64.Vec3{})
}

func TestResultReset(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
	}{
		{"fresh", NewResult()},
		{"after hit", hitResult()},
		{"distance only", func() *Result {
			r := NewResult()
			r.SetHitDistance(3)
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.result.Reset()
			assertEmpty(t, tt.result, mgl64.Vec3{}, mgl64.Vec3{})

			// Reset twice gives the same state
			tt.result.Reset()
			assertEmpty(t, tt.result, mgl64.Vec3{}, mgl64.Vec3{})
		})
	}
}

func TestResultResetRay(t *testing.T) {
	r := hitResult()
	from := mgl64.Vec3{1, 2, 3}
	to := mgl64.Vec3{4, 5, 6}

	r.ResetRay(from, to)

	assertEmpty(t, r, from, to)
}

func TestResultSetHitData(t *testing.T) {
	r := NewResult()
	r.Reset()

	r.SetHitData(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{5, 0, 5})

	assert.True(t, r.HasHit())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, r.HitNormalWorld())
	assert.Equal(t, mgl64.Vec3{5, 0, 5}, r.HitPointWorld())
	assert.Equal(t, NoTriangle, r.TriangleIndex())
	assert.Equal(t, 0.0, r.HitDistance(), "SetHitData must not touch the distance")
}

func TestResultTriangleIndex(t *testing.T) {
	n := mgl64.Vec3{0, 1, 0}
	p := mgl64.Vec3{1, 0, 1}

	tests := []struct {
		name     string
		set      func(r *Result)
		expected int
	}{
		{"default", func(r *Result) { r.SetHitData(n, p) }, NoTriangle},
		{"explicit", func(r *Result) { r.SetHitTriangle(n, p, 7) }, 7},
		{"zero", func(r *Result) { r.SetHitTriangle(n, p, 0) }, 0},
		{"explicit not applicable", func(r *Result) { r.SetHitTriangle(n, p, NoTriangle) }, NoTriangle},
		{"negative", func(r *Result) { r.SetHitTriangle(n, p, -12) }, NoTriangle},
		{"overwritten by default", func(r *Result) {
			r.SetHitTriangle(n, p, 7)
			r.SetHitData(n, p)
		}, NoTriangle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult()
			tt.set(r)
			assert.Equal(t, tt.expected, r.TriangleIndex())
		})
	}
}

func TestResultCalculateHitDistance(t *testing.T) {
	r := NewResult()
	r.ResetRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
	r.SetHitData(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{3, 4, 0})

	r.CalculateHitDistance()
	assert.InDelta(t, 5.0, r.HitDistance(), 1e-12)

	// Overwrites a distance set earlier
	r.SetHitDistance(42)
	r.CalculateHitDistance()
	assert.InDelta(t, 5.0, r.HitDistance(), 1e-12)
}

func TestResultCalculateHitDistanceWithoutHit(t *testing.T) {
	r := NewResult()
	r.ResetRay(mgl64.Vec3{0, 3, 4}, mgl64.Vec3{1, 1, 1})

	r.CalculateHitDistance()

	assert.False(t, r.HasHit())
	assert.InDelta(t, 5.0, r.HitDistance(), 1e-12)
}

func TestResultSetHitDistanceIndependentOfHit(t *testing.T) {
	r := NewResult()

	r.SetHitDistance(-2.5)
	assert.False(t, r.HasHit())
	assert.Equal(t, -2.5, r.HitDistance())

	r.SetHitData(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 2, 3})
	assert.Equal(t, -2.5, r.HitDistance())
}

func TestResultSettersDoNotClearHit(t *testing.T) {
	r := NewResult()
	r.SetHitData(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 2, 3})

	// A new cast without a reset keeps the stale flag
	r.SetHitDistance(1)
	assert.True(t, r.HasHit())
}

func TestResultCopiesVectors(t *testing.T) {
	r := NewResult()
	from := mgl64.Vec3{1, 2, 3}
	to := mgl64.Vec3{4, 5, 6}
	normal := mgl64.Vec3{0, 1, 0}
	point := mgl64.Vec3{5, 0, 5}

	r.ResetRay(from, to)
	r.SetHitData(normal, point)

	from[0], to[1], normal[1], point[2] = 100, 100, 100, 100

	assert.Equal(t, mgl64.Vec3{1, 2, 3}, r.RayFromWorld())
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, r.RayToWorld())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, r.HitNormalWorld())
	assert.Equal(t, mgl64.Vec3{5, 0, 5}, r.HitPointWorld())

	// Accessors return copies too
	p := r.HitPointWorld()
	p[0] = -1
	assert.Equal(t, mgl64.Vec3{5, 0, 5}, r.HitPointWorld())
}

func TestResultBody(t *testing.T) {
	r := NewResult()
	h := NewHandle()

	r.SetBody(h)
	r.SetBodyIndex(0)

	body, ok := r.Body()
	require.True(t, ok)
	assert.Equal(t, h, body)

	index, ok := r.BodyIndex()
	require.True(t, ok)
	assert.Equal(t, 0, index)

	r.Reset()
	_, ok = r.Body()
	assert.False(t, ok)
	_, ok = r.BodyIndex()
	assert.False(t, ok)
}

func TestResultMarshalLogObject(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, hitResult().MarshalLogObject(enc))

	assert.Equal(t, true, enc.Fields["hasHit"])
	assert.Equal(t, 12.0, enc.Fields["distance"])
	assert.Equal(t, 4, enc.Fields["triangle"])
	assert.Equal(t, 3, enc.Fields["bodyIndex"])
	assert.Equal(t, "(2, 2, 2)", enc.Fields["point"])

	enc = zapcore.NewMapObjectEncoder()
	require.NoError(t, NewResult().MarshalLogObject(enc))
	assert.Equal(t, false, enc.Fields["hasHit"])
	assert.Equal(t, 0.0, enc.Fields["distance"])
	assert.NotContains(t, enc.Fields, "point")
}

func TestResultMarshalLogObjectDistanceOnly(t *testing.T) {
	r := NewResult()
	r.SetHitDistance(7.5)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, r.MarshalLogObject(enc))
	assert.Equal(t, false, enc.Fields["hasHit"])
	assert.Equal(t, 7.5, enc.Fields["distance"])
}
