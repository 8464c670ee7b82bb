package world

import (
	"github.com/akmonengine/raycast"
	"github.com/akmonengine/raycast/actor"
)

// Accepts reports whether a ray filtered by query may hit body.
//
// A present CollideWith mask requires the body to belong to one of its groups,
// and a present Membership mask requires the body to accept one of the ray's
// groups. Absent masks impose nothing, while a present mask of 0 rejects
// every body.
func Accepts(query raycast.Query, body *actor.RigidBody) bool {
	if collideWith, ok := query.CollideWith.Get(); ok && body.Membership&collideWith == 0 {
		return false
	}
	if membership, ok := query.Membership.Get(); ok && body.CollideWith&membership == 0 {
		return false
	}
	return true
}
