package recorder

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/compazz/funds"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, name string, at time.Time) *funds.Event {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"name": name})
	require.NoError(t, err)

	return &funds.Event{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: at,
		Payload:   payload,
	}
}

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()

	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	base := time.Unix(1_700_000_000, 0)
	created := newEvent(t, "FundCreated", base)
	joined := newEvent(t, "MemberJoined", base.Add(time.Second))

	require.NoError(t, rec.HandleEvent(ctx, created))
	require.NoError(t, rec.HandleEvent(ctx, joined))
	require.NoError(t, rec.HandleEvent(ctx, joined), "redelivery is ignored")

	all, err := rec.ListEvents(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, joined.ID, all[0].ID, "newest first")
	assert.True(t, created.CreatedAt.Equal(all[1].CreatedAt))
	assert.JSONEq(t, string(created.Payload), string(all[1].Payload))

	only, err := rec.ListEvents(ctx, "FundCreated", 10)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, created.ID, only[0].ID)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()

	assert.NoError(t, rec.HandleEvent(context.Background(), &funds.Event{}))

	events, err := rec.ListEvents(context.Background(), "", 10)
	assert.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, rec.Close())
}
