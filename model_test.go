package funds

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTradeAction(t *testing.T) {
	for s, want := range map[string]TradeAction{
		"buy":  TradeActionBuy,
		"Sell": TradeActionSell,
		"SWAP": TradeActionSwap,
		"hold": TradeActionHold,
	} {
		got, err := ParseTradeAction(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got)
	}

	_, err := ParseTradeAction("short")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTradeActionJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Action TradeAction `json:"action"`
	}{TradeActionSwap})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"swap"}`, string(b))

	var v struct {
		Action TradeAction `json:"action"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"action":"sell"}`), &v))
	assert.Equal(t, TradeActionSell, v.Action)

	assert.Error(t, json.Unmarshal([]byte(`{"action":"lend"}`), &v))
}

func TestProposalState(t *testing.T) {
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	p := &Proposal{VotingEndsAt: end}

	assert.Equal(t, ProposalOpen, p.State(end.Add(-time.Nanosecond)))
	assert.Equal(t, ProposalClosed, p.State(end))
	assert.Equal(t, ProposalClosed, p.State(end.Add(time.Hour)))

	p.Executed = true
	assert.Equal(t, ProposalSettled, p.State(end.Add(-time.Hour)))
	assert.Equal(t, "settled", p.State(end).String())
}

func TestMemberIsCurrent(t *testing.T) {
	var m *Member
	assert.False(t, m.IsCurrent())
	assert.False(t, (&Member{}).IsCurrent())
	assert.True(t, (&Member{Contribution: 1}).IsCurrent())
}
