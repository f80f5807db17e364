package recorder

import (
	"context"

	"github.com/compazz/funds"
)

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) HandleEvent(_ context.Context, _ *funds.Event) error { return nil }
func (n *NoopRecorder) ListEvents(_ context.Context, _ string, _ int) ([]*funds.Event, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
