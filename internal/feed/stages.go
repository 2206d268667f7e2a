package feed

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/iteratee"
)

// Secure lets managers see every event. Other roles only see public
// operations.
func Secure(role Role) iteratee.Enumeratee[Event, Event] {
	return iteratee.Collect(func(e Event) (Event, bool) {
		if role == RoleManager {
			return e, true
		}
		if op, ok := As[Operation](e); ok && op.Level == VisibilityPublic {
			return op, true
		}
		return nil, false
	})
}

// InBounds keeps statuses and the operations with lower < amount < upper.
func InBounds(lower, upper int) iteratee.Enumeratee[Event, Event] {
	return iteratee.Collect(func(e Event) (Event, bool) {
		op, ok := As[Operation](e)
		if !ok {
			return e, true
		}
		return op, op.Amount > lower && op.Amount < upper
	})
}

type statusJSON struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type operationJSON struct {
	Type       string     `json:"type"`
	Amount     int        `json:"amount"`
	Visibility Visibility `json:"visibility"`
}

// Marshal renders e as a JSON object tagged with its type.
func Marshal(e Event) ([]byte, error) {
	switch v := e.(type) {
	case SystemStatus:
		return json.Marshal(statusJSON{Type: "status", Message: v.Message})
	case Operation:
		return json.Marshal(operationJSON{Type: "operation", Amount: v.Amount, Visibility: v.Level})
	default:
		return nil, errors.Internal(fmt.Errorf("unknown event %T", v))
	}
}

// AsJSON renders every event with Marshal. An event Marshal cannot render is
// dropped.
func AsJSON() iteratee.Enumeratee[Event, []byte] {
	return iteratee.Collect(func(e Event) ([]byte, bool) {
		b, err := Marshal(e)
		return b, err == nil
	})
}

// View is the per-viewer pipeline: Secure, then InBounds, then AsJSON.
func View(role Role, lower, upper int) iteratee.Enumeratee[Event, []byte] {
	return iteratee.Compose(iteratee.Compose(Secure(role), InBounds(lower, upper)), AsJSON())
}
