package funds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsFollowCommits(t *testing.T) {
	env := newTestEnv(t)
	fund, _ := env.createFund(t, 10, 0)
	env.clock.Advance(time.Second)
	proposer := env.join(t, fund.Address, 10_000)
	env.clock.Advance(time.Second)
	p := env.propose(t, fund.Address, proposer, time.Hour)
	env.clock.Advance(time.Second)
	env.castVote(t, p.Address, proposer, true)

	env.clock.Advance(time.Hour)
	_, err := env.ExecuteProposal(context.Background(), p.Address)
	require.NoError(t, err)

	want := []string{"FundCreated", "MemberJoined", "TradeProposalCreated", "VoteCast", "ProposalRejected"}
	assert.Equal(t, want, env.events.names())

	stored, err := env.ListEvents(time.Time{}, 100)
	require.NoError(t, err)
	require.Len(t, stored, len(want))
	for i, evt := range stored {
		assert.Equal(t, want[i], evt.Name)
	}

	recent, err := env.ListEvents(env.clock.Now(), 100)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "ProposalRejected", recent[0].Name)
}

func TestFailedOperationEmitsNothing(t *testing.T) {
	env := newTestEnv(t)
	fund, _ := env.createFund(t, 10, 1_000)
	before := env.events.names()

	participant := env.funded(t, 100)
	_, err := env.JoinFund(context.Background(), JoinFundInput{Signer: participant, Fund: fund.Address, Amount: 100})
	require.ErrorIs(t, err, ErrInsufficientContribution)

	assert.Equal(t, before, env.events.names())

	stored, err := env.ListEvents(time.Time{}, 100)
	require.NoError(t, err)
	assert.Len(t, stored, len(before))
}

func TestListenerErrorDoesNotFailOperation(t *testing.T) {
	env := newTestEnv(t)
	env.listeners = append(env.listeners, ListenerFunc(func(context.Context, *Event) error {
		return errors.New("listener down")
	}))

	fund, _ := env.createFund(t, 10, 0)
	env.join(t, fund.Address, 1_000)

	assert.Equal(t, uint32(1), env.mustFund(t, fund.Address).MemberCount)
}
