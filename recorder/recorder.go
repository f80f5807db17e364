package recorder

import (
	"context"

	"github.com/compazz/funds"
)

// Recorder persists committed events for offline analysis. It is attached to
// the engine as a listener, so a failing recorder never rolls back an operation.
type Recorder interface {
	funds.Listener
	ListEvents(ctx context.Context, name string, limit int) ([]*funds.Event, error)
	Close() error
}
