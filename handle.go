package raycast

import "github.com/google/uuid"

// Handle identifies a physics body without owning it.
// Resolving a Handle is the backend's job; a handle whose body was removed
// resolves to nothing rather than to a stale body.
type Handle struct {
	ID uuid.UUID
}

// NewHandle returns a handle with a fresh random identity.
func NewHandle() Handle {
	return Handle{ID: uuid.New()}
}

func (h Handle) IsZero() bool {
	return h.ID == uuid.Nil
}

func (h Handle) String() string {
	return h.ID.String()
}
