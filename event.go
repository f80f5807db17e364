package funds

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Payload is the body of a state-change record.
type Payload interface {
	EventName() string
}

type FundCreated struct {
	Fund        solana.PublicKey `json:"fund"`
	Authority   solana.PublicKey `json:"authority"`
	Name        string           `json:"name"`
	GroupRef    string           `json:"group_ref"`
	PlatformFee uint64           `json:"platform_fee"`
}

type MemberJoined struct {
	Fund         solana.PublicKey `json:"fund"`
	Member       solana.PublicKey `json:"member"`
	Amount       uint64           `json:"amount"`
	PlatformFee  uint64           `json:"platform_fee"`
	GroupUserRef uint64           `json:"group_user_ref"`
}

type TradeProposalCreated struct {
	Fund       solana.PublicKey `json:"fund"`
	Proposal   solana.PublicKey `json:"proposal"`
	Proposer   solana.PublicKey `json:"proposer"`
	ProposalID uint64           `json:"proposal_id"`
	Action     TradeAction      `json:"action"`
	Amount     string           `json:"amount"`
	Token      string           `json:"token"`
}

type VoteCast struct {
	Proposal     solana.PublicKey `json:"proposal"`
	Voter        solana.PublicKey `json:"voter"`
	Vote         bool             `json:"vote"`
	VotesFor     uint32           `json:"votes_for"`
	VotesAgainst uint32           `json:"votes_against"`
}

type ProposalExecuted struct {
	Fund         solana.PublicKey `json:"fund"`
	Proposal     solana.PublicKey `json:"proposal"`
	Action       TradeAction      `json:"action"`
	Amount       string           `json:"amount"`
	Token        string           `json:"token"`
	VotesFor     uint32           `json:"votes_for"`
	VotesAgainst uint32           `json:"votes_against"`
}

type ProposalRejected struct {
	Fund         solana.PublicKey `json:"fund"`
	Proposal     solana.PublicKey `json:"proposal"`
	VotesFor     uint32           `json:"votes_for"`
	VotesAgainst uint32           `json:"votes_against"`
}

type FundsWithdrawn struct {
	Fund   solana.PublicKey `json:"fund"`
	Member solana.PublicKey `json:"member"`
	Amount uint64           `json:"amount"`
}

type SuccessFeeCollected struct {
	Fund         solana.PublicKey `json:"fund"`
	ProfitAmount uint64           `json:"profit_amount"`
	FeeAmount    uint64           `json:"fee_amount"`
}

func (FundCreated) EventName() string          { return "FundCreated" }
func (MemberJoined) EventName() string         { return "MemberJoined" }
func (TradeProposalCreated) EventName() string { return "TradeProposalCreated" }
func (VoteCast) EventName() string             { return "VoteCast" }
func (ProposalExecuted) EventName() string     { return "ProposalExecuted" }
func (ProposalRejected) EventName() string     { return "ProposalRejected" }
func (FundsWithdrawn) EventName() string       { return "FundsWithdrawn" }
func (SuccessFeeCollected) EventName() string  { return "SuccessFeeCollected" }

// Event is an append-only record of one committed operation.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Listener receives events after their transaction commits. Delivery is
// fire-and-forget: errors are logged by the caller and never roll anything back.
type Listener interface {
	HandleEvent(ctx context.Context, evt *Event) error
}

type ListenerFunc func(ctx context.Context, evt *Event) error

func (f ListenerFunc) HandleEvent(ctx context.Context, evt *Event) error {
	return f(ctx, evt)
}

// EventHistory answers name-filtered event queries, newest first.
type EventHistory interface {
	ListEvents(ctx context.Context, name string, limit int) ([]*Event, error)
}

// LogListener writes every event to slog.
func LogListener() Listener {
	return ListenerFunc(func(_ context.Context, evt *Event) error {
		slog.Info("event", "name", evt.Name, "id", evt.ID, "payload", string(evt.Payload))
		return nil
	})
}

func newEvent(now time.Time, p Payload) (*Event, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Name:      p.EventName(),
		CreatedAt: now,
		Payload:   b,
	}, nil
}

// saveEvent keys events by (time, id) so writers never contend on a shared sequence.
func saveEvent(txn *badger.Txn, evt *Event) error {
	key := buildIndexKey(eventPrefix, evt.CreatedAt.UnixNano(), evt.ID)
	return setRecord(txn, key, evt)
}

func listEvents(txn *badger.Txn, since time.Time, limit int) ([]*Event, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchSize = limit
	it := txn.NewIterator(opts)
	defer it.Close()

	start := eventPrefix
	if !since.IsZero() {
		start = buildIndexKey(eventPrefix, since.UnixNano())
	}

	var events []*Event
	for it.Seek(start); it.ValidForPrefix(eventPrefix) && len(events) < limit; it.Next() {
		var evt Event
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &evt)
		}); err != nil {
			return nil, err
		}

		events = append(events, &evt)
	}

	return events, nil
}
