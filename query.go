// Package raycast defines the data exchanged between a physics backend and the
// code that issues ray casts against it.
//
// A caller describes the collision filter with a Query, hands a Result to the
// backend, and reads the nearest hit back from the Result once the backend
// returns. The package performs no intersection work itself: see the world
// package for a backend that fills a Result.
package raycast

import "go.uber.org/zap/zapcore"

// Mask is an optional collision-group bitmask.
// The zero Mask is absent, which is not the same as a present mask of 0.
type Mask struct {
	bits  uint32
	valid bool
}

// MaskOf returns a present mask holding bits.
func MaskOf(bits uint32) Mask {
	return Mask{bits: bits, valid: true}
}

// Get returns the bits and whether the mask is present.
func (m Mask) Get() (uint32, bool) {
	return m.bits, m.valid
}

func (m Mask) IsSet() bool {
	return m.valid
}

// Query carries the collision filter of a ray cast.
// Absent masks impose no filtering on their axis.
type Query struct {
	// Membership lists the groups the ray belongs to
	Membership Mask
	// CollideWith lists the groups the ray may hit
	CollideWith Mask
}

func (q Query) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if bits, ok := q.Membership.Get(); ok {
		enc.AddUint32("membership", bits)
	}
	if bits, ok := q.CollideWith.Get(); ok {
		enc.AddUint32("collideWith", bits)
	}
	return nil
}
