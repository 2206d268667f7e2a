package feed

import (
	"strings"

	"github.com/google/uuid"
)

// Event is one item of the feed. It is implemented only by SystemStatus and
// Operation; use As to match on the variant.
type Event interface {
	isEvent()
}

// SystemStatus is an operational message for managers.
type SystemStatus struct {
	Message string
}

// Operation is a business operation with an amount and a visibility level.
type Operation struct {
	ID     uuid.UUID
	Amount int
	Level  Visibility
}

func (SystemStatus) isEvent() {}
func (Operation) isEvent() {}

// Visibility controls which roles may see an Operation.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Role is the viewer's role.
type Role string

const (
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// ParseRole maps a case-insensitive name to a Role. Anything other than
// "manager" is a viewer.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleManager)) {
		return RoleManager
	}
	return RoleViewer
}

// As reports whether e is the variant V and returns it.
func As[V Event](e Event) (V, bool) {
	v, ok := e.(V)
	return v, ok
}
