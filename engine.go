package funds

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

type Options struct {
	ProgramID        solana.PublicKey
	PlatformTreasury solana.PublicKey
	// MaxVotingDuration bounds proposal windows; zero leaves them unbounded.
	MaxVotingDuration time.Duration
	AllowAirdrop      bool
	Clock             func() time.Time
}

// Engine runs the governance operations. Every mutating call is a single
// badger read-write transaction: it commits all of its reads, writes, transfers
// and its event, or none of them.
type Engine struct {
	db        *badger.DB
	derive    Deriver
	opts      Options
	now       func() time.Time
	listeners []Listener
}

func NewEngine(db *badger.DB, opts Options, listeners ...Listener) *Engine {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Engine{
		db:        db,
		derive:    Deriver{ProgramID: opts.ProgramID},
		opts:      opts,
		now:       now,
		listeners: listeners,
	}
}

// Deriver exposes the address scheme so callers can predict record addresses.
func (e *Engine) Deriver() Deriver {
	return e.derive
}

func (e *Engine) PlatformTreasury() solana.PublicKey {
	return e.opts.PlatformTreasury
}

// tx is the mutation scope of a single operation.
type tx struct {
	*badger.Txn
	now    time.Time
	events []*Event
}

func (t *tx) emit(p Payload) error {
	evt, err := newEvent(t.now, p)
	if err != nil {
		return err
	}

	if err := saveEvent(t.Txn, evt); err != nil {
		return err
	}

	t.events = append(t.events, evt)
	return nil
}

func (e *Engine) update(ctx context.Context, fn func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{
		Txn: e.db.NewTransaction(true),
		now: e.now(),
	}
	defer t.Discard()

	if err := fn(t); err != nil {
		return translateTxnError(err)
	}

	if err := t.Commit(); err != nil {
		return translateTxnError(err)
	}

	e.dispatch(ctx, t.events)
	return nil
}

func (e *Engine) view(fn func(txn *badger.Txn) error) error {
	return e.db.View(fn)
}

func (e *Engine) dispatch(ctx context.Context, events []*Event) {
	for _, evt := range events {
		for _, l := range e.listeners {
			if err := l.HandleEvent(ctx, evt); err != nil {
				slog.Error("dispatch event failed", "name", evt.Name, "id", evt.ID, slog.Any("err", err))
			}
		}
	}
}

// ListEvents returns committed events at or after since, oldest first.
func (e *Engine) ListEvents(since time.Time, limit int) ([]*Event, error) {
	var events []*Event
	err := e.view(func(txn *badger.Txn) error {
		var err error
		events, err = listEvents(txn, since, limit)
		return err
	})

	return events, err
}
