package funds

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tallies(t *testing.T, env *testEnv, proposal *Proposal) (yes, no, total uint32) {
	t.Helper()

	p, err := env.FindProposal(proposal.Address)
	require.NoError(t, err)
	require.Equal(t, p.TotalVotes, p.VotesFor+p.VotesAgainst)

	return p.VotesFor, p.VotesAgainst, p.TotalVotes
}

func TestVoteChangeRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	fund, _ := env.createFund(t, 10, 0)
	proposer := env.join(t, fund.Address, 10_000)
	p := env.propose(t, fund.Address, proposer, time.Hour)

	other := env.join(t, fund.Address, 1_000)
	env.castVote(t, p.Address, other, false)

	env.castVote(t, p.Address, proposer, true)
	yes, no, total := tallies(t, env, p)
	assert.Equal(t, [3]uint32{1, 1, 2}, [3]uint32{yes, no, total})

	env.castVote(t, p.Address, proposer, false)
	yes, no, total = tallies(t, env, p)
	assert.Equal(t, [3]uint32{0, 2, 2}, [3]uint32{yes, no, total})

	env.castVote(t, p.Address, proposer, true)
	yes, no, total = tallies(t, env, p)
	assert.Equal(t, [3]uint32{1, 1, 2}, [3]uint32{yes, no, total})

	// repeating the same vote changes nothing
	env.castVote(t, p.Address, proposer, true)
	yes, no, total = tallies(t, env, p)
	assert.Equal(t, [3]uint32{1, 1, 2}, [3]uint32{yes, no, total})

	var cast VoteCast
	require.NoError(t, unmarshalRecord(env.events.last().Payload, &cast))
	assert.Equal(t, uint32(1), cast.VotesFor)
	assert.Equal(t, uint32(1), cast.VotesAgainst)
	assert.True(t, cast.Vote)
}

func TestVoteRecord(t *testing.T) {
	env := newTestEnv(t)
	fund, _ := env.createFund(t, 10, 0)
	proposer := env.join(t, fund.Address, 10_000)
	p := env.propose(t, fund.Address, proposer, time.Hour)

	_, found, err := env.FindVote(p.Address, proposer)
	require.NoError(t, err)
	assert.False(t, found, "absent until the first vote")

	env.clock.Advance(time.Minute)
	env.castVote(t, p.Address, proposer, true)

	vote, found, err := env.FindVote(p.Address, proposer)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, vote.Support)
	assert.True(t, env.clock.Now().Equal(vote.VotedAt))

	addr, _, err := env.Deriver().Vote(p.Address, proposer)
	require.NoError(t, err)
	assert.Equal(t, addr, vote.Address)

	votes, err := env.ListVotes(p.Address, 10)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestVoteRequiresCurrentMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fund, _ := env.createFund(t, 10, 0)
	proposer := env.join(t, fund.Address, 10_000)
	p := env.propose(t, fund.Address, proposer, time.Hour)

	_, err := env.VoteOnProposal(ctx, VoteInput{Signer: newKey(), Proposal: p.Address, Support: true})
	assert.ErrorIs(t, err, ErrNotAMember)

	// membership in another fund does not count
	otherFund, _ := env.createFund(t, 10, 0)
	outsider := env.join(t, otherFund.Address, 1_000)
	_, err = env.VoteOnProposal(ctx, VoteInput{Signer: outsider, Proposal: p.Address, Support: true})
	assert.ErrorIs(t, err, ErrNotAMember)

	_, _, total := tallies(t, env, p)
	assert.Zero(t, total)
}

func TestVoteTimeGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fund, _ := env.createFund(t, 10, 0)
	proposer := env.join(t, fund.Address, 10_000)
	p := env.propose(t, fund.Address, proposer, time.Hour)

	env.clock.Advance(time.Hour - time.Nanosecond)
	env.castVote(t, p.Address, proposer, true)

	env.clock.Advance(time.Nanosecond)
	_, err := env.VoteOnProposal(ctx, VoteInput{Signer: proposer, Proposal: p.Address, Support: false})
	assert.ErrorIs(t, err, ErrVotingEnded, "voting_ends_at is exclusive")

	_, err = env.ExecuteProposal(ctx, p.Address)
	require.NoError(t, err)

	_, err = env.VoteOnProposal(ctx, VoteInput{Signer: proposer, Proposal: p.Address, Support: false})
	assert.ErrorIs(t, err, ErrVotingEnded, "the clock is checked before execution")

	yes, no, _ := tallies(t, env, p)
	assert.Equal(t, uint32(1), yes)
	assert.Zero(t, no)
}
