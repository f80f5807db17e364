package funds

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	*Engine
	clock    *testClock
	treasury solana.PublicKey
	events   *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []*Event
}

func (l *eventLog) HandleEvent(_ context.Context, evt *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
	return nil
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.events))
	for _, evt := range l.events {
		names = append(names, evt.Name)
	}

	return names
}

func (l *eventLog) last() *Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == 0 {
		return nil
	}

	return l.events[len(l.events)-1]
}

// ListEvents lets the log stand in for a recorder.
func (l *eventLog) ListEvents(_ context.Context, name string, limit int) ([]*Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var events []*Event
	for i := len(l.events) - 1; i >= 0 && len(events) < limit; i-- {
		if evt := l.events[i]; evt.Name == name {
			events = append(events, evt)
		}
	}

	return events, nil
}

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	env := &testEnv{
		clock:    clock,
		treasury: newKey(),
		events:   &eventLog{},
	}

	o := Options{
		ProgramID:        newKey(),
		PlatformTreasury: env.treasury,
		AllowAirdrop:     true,
		Clock:            clock.Now,
	}

	for _, fn := range opts {
		fn(&o)
	}

	env.Engine = NewEngine(openTestDB(t), o, env.events)
	return env
}

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// funded returns a fresh key holding lamports.
func (env *testEnv) funded(t *testing.T, lamports uint64) solana.PublicKey {
	t.Helper()

	key := newKey()
	_, err := env.Airdrop(context.Background(), key, lamports)
	require.NoError(t, err)

	return key
}

func (env *testEnv) lamports(t *testing.T, account solana.PublicKey) uint64 {
	t.Helper()

	b, err := env.Balance(account)
	require.NoError(t, err)

	return b.Lamports
}

func (env *testEnv) vault(t *testing.T, fund solana.PublicKey) solana.PublicKey {
	t.Helper()

	vault, err := env.VaultAddress(fund)
	require.NoError(t, err)

	return vault
}

func (env *testEnv) createFund(t *testing.T, maxMembers uint32, minContribution uint64) (*Fund, solana.PublicKey) {
	t.Helper()

	authority := env.funded(t, CreationFee)
	fund, err := env.CreateFund(context.Background(), CreateFundInput{
		Signer:          authority,
		Name:            "alpha",
		Description:     "blue chips",
		Strategy:        "momentum",
		GroupRef:        "-100123",
		MinContribution: minContribution,
		MaxMembers:      maxMembers,
		ManagementFee:   200,
		PerformanceFee:  2000,
	})
	require.NoError(t, err)

	return fund, authority
}

// join funds a new participant with amount and deposits all of it.
func (env *testEnv) join(t *testing.T, fund solana.PublicKey, amount uint64) solana.PublicKey {
	t.Helper()

	participant := env.funded(t, amount)
	_, err := env.JoinFund(context.Background(), JoinFundInput{
		Signer: participant,
		Fund:   fund,
		Amount: amount,
	})
	require.NoError(t, err)

	return participant
}

func (env *testEnv) propose(t *testing.T, fund, proposer solana.PublicKey, d time.Duration) *Proposal {
	t.Helper()

	p, err := env.CreateTradeProposal(context.Background(), CreateTradeProposalInput{
		Signer:         proposer,
		Fund:           fund,
		Action:         TradeActionBuy,
		Amount:         "10",
		Token:          "SOL",
		Reasoning:      "breakout",
		VotingDuration: d,
	})
	require.NoError(t, err)

	return p
}

func (env *testEnv) castVote(t *testing.T, proposal, voter solana.PublicKey, support bool) {
	t.Helper()

	_, err := env.VoteOnProposal(context.Background(), VoteInput{
		Signer:   voter,
		Proposal: proposal,
		Support:  support,
	})
	require.NoError(t, err)
}

func (env *testEnv) mustFund(t *testing.T, addr solana.PublicKey) *Fund {
	t.Helper()

	fund, err := env.FindFund(addr)
	require.NoError(t, err)

	return fund
}

func (env *testEnv) sumContributions(t *testing.T, fund solana.PublicKey) uint64 {
	t.Helper()

	members, err := env.ListMembers(fund, 1000)
	require.NoError(t, err)

	var sum uint64
	for _, m := range members {
		sum += m.Contribution
	}

	return sum
}
