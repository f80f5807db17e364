package funds

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

type TradeAction uint8

const (
	TradeActionBuy TradeAction = iota
	TradeActionSell
	TradeActionSwap
	TradeActionHold
)

var tradeActionNames = [...]string{"buy", "sell", "swap", "hold"}

func (a TradeAction) String() string {
	if int(a) < len(tradeActionNames) {
		return tradeActionNames[a]
	}

	return fmt.Sprintf("TradeAction(%d)", uint8(a))
}

func ParseTradeAction(s string) (TradeAction, error) {
	for i, name := range tradeActionNames {
		if strings.EqualFold(s, name) {
			return TradeAction(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown trade action %q", ErrInvalidArgument, s)
}

func (a TradeAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *TradeAction) UnmarshalText(b []byte) error {
	v, err := ParseTradeAction(string(b))
	if err != nil {
		return err
	}

	*a = v
	return nil
}

type Fund struct {
	Address         solana.PublicKey `json:"address"`
	Authority       solana.PublicKey `json:"authority"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Strategy        string           `json:"strategy"`
	GroupRef        string           `json:"group_ref"`
	MinContribution uint64           `json:"min_contribution"`
	MaxMembers      uint32           `json:"max_members"`
	ManagementFee   uint16           `json:"management_fee"`  // bps, informational
	PerformanceFee  uint16           `json:"performance_fee"` // bps, informational
	TotalDeposits   uint64           `json:"total_deposits"`
	MemberCount     uint32           `json:"member_count"`
	ProposalCount   uint64           `json:"proposal_count"`
	CreatedAt       time.Time        `json:"created_at"`
	IsActive        bool             `json:"is_active"`
	Bump            uint8            `json:"bump"`
}

type Member struct {
	Address      solana.PublicKey `json:"address"`
	Fund         solana.PublicKey `json:"fund"`
	Authority    solana.PublicKey `json:"authority"`
	Contribution uint64           `json:"contribution"`
	GroupUserRef uint64           `json:"group_user_ref"`
	JoinedAt     time.Time        `json:"joined_at"`
	Bump         uint8            `json:"bump"`
}

// IsCurrent reports whether the member holds a stake. Records are kept after a
// full withdrawal, so existence alone does not grant voting rights.
func (m *Member) IsCurrent() bool {
	return m != nil && m.Contribution > 0
}

type ProposalState uint8

const (
	ProposalOpen ProposalState = iota + 1
	ProposalClosed
	ProposalSettled
)

func (s ProposalState) String() string {
	switch s {
	case ProposalOpen:
		return "open"
	case ProposalClosed:
		return "closed"
	case ProposalSettled:
		return "settled"
	default:
		return "unspecified"
	}
}

func (s ProposalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ProposalState) UnmarshalText(b []byte) error {
	for _, v := range []ProposalState{ProposalOpen, ProposalClosed, ProposalSettled} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}

	return fmt.Errorf("%w: unknown proposal state %q", ErrInvalidArgument, b)
}

type Proposal struct {
	Address      solana.PublicKey `json:"address"`
	Fund         solana.PublicKey `json:"fund"`
	Proposer     solana.PublicKey `json:"proposer"`
	GroupUserRef uint64           `json:"group_user_ref"`
	ProposalID   uint64           `json:"proposal_id"`
	Action       TradeAction      `json:"action"`
	Amount       string           `json:"amount"`
	Token        string           `json:"token"`
	Reasoning    string           `json:"reasoning"`
	VotesFor     uint32           `json:"votes_for"`
	VotesAgainst uint32           `json:"votes_against"`
	TotalVotes   uint32           `json:"total_votes"`
	CreatedAt    time.Time        `json:"created_at"`
	VotingEndsAt time.Time        `json:"voting_ends_at"`
	Executed     bool             `json:"executed"`
	Passed       bool             `json:"passed"`
	Bump         uint8            `json:"bump"`
}

// State evaluates the lifecycle position at now; closing is lazy.
func (p *Proposal) State(now time.Time) ProposalState {
	switch {
	case p.Executed:
		return ProposalSettled
	case now.Before(p.VotingEndsAt):
		return ProposalOpen
	default:
		return ProposalClosed
	}
}

type Vote struct {
	Address      solana.PublicKey `json:"address"`
	Proposal     solana.PublicKey `json:"proposal"`
	Voter        solana.PublicKey `json:"voter"`
	GroupUserRef uint64           `json:"group_user_ref"`
	Support      bool             `json:"vote"`
	VotedAt      time.Time        `json:"voted_at"`
	Bump         uint8            `json:"bump"`
}
