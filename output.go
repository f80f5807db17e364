package funds

import (
	"time"

	"github.com/gagliardetto/solana-go"
	g "github.com/pandodao/generic"
	"github.com/shopspring/decimal"
)

type FundView struct {
	*Fund
	Vault              solana.PublicKey `json:"vault"`
	MinContributionSOL decimal.Decimal  `json:"min_contribution_sol"`
	TotalDepositsSOL   decimal.Decimal  `json:"total_deposits_sol"`
}

type MemberView struct {
	*Member
	ContributionSOL decimal.Decimal `json:"contribution_sol"`
}

type ProposalView struct {
	*Proposal
	State ProposalState `json:"state"`
}

func (e *Engine) fundView(fund *Fund) *FundView {
	return &FundView{
		Fund:               fund,
		Vault:              g.Try(e.VaultAddress(fund.Address)),
		MinContributionSOL: lamportsToSOL(fund.MinContribution),
		TotalDepositsSOL:   lamportsToSOL(fund.TotalDeposits),
	}
}

func memberView(member *Member) *MemberView {
	return &MemberView{
		Member:          member,
		ContributionSOL: lamportsToSOL(member.Contribution),
	}
}

func proposalView(proposal *Proposal, now time.Time) *ProposalView {
	return &ProposalView{
		Proposal: proposal,
		State:    proposal.State(now),
	}
}
