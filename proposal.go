package funds

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

type CreateTradeProposalInput struct {
	Signer         solana.PublicKey
	Fund           solana.PublicKey
	Action         TradeAction
	Amount         string
	Token          string
	Reasoning      string
	VotingDuration time.Duration
}

func (e *Engine) CreateTradeProposal(ctx context.Context, input CreateTradeProposalInput) (*Proposal, error) {
	if err := checkAll(
		signerPresent(input.Signer),
		maxBytes("amount", input.Amount, MaxAmountLength),
		maxBytes("token", input.Token, MaxTokenLength),
		maxBytes("reasoning", input.Reasoning, MaxReasoningLength),
		votingDuration(input.VotingDuration, e.opts.MaxVotingDuration),
	); err != nil {
		return nil, err
	}

	memberAddr, _, err := e.derive.Member(input.Fund, input.Signer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var proposal *Proposal
	err = e.update(ctx, func(t *tx) error {
		fund, err := mustFindFund(t.Txn, input.Fund)
		if err != nil {
			return err
		}

		member, _, err := findMember(t.Txn, memberAddr)
		if err != nil {
			return err
		}

		if err := checkAll(
			fundActive(fund),
			currentMember(member),
		); err != nil {
			return err
		}

		addr, bump, err := e.derive.Proposal(fund.Address, fund.ProposalCount)
		if err != nil {
			return err
		}

		id, err := addU64(fund.ProposalCount, 1)
		if err != nil {
			return err
		}

		fund.ProposalCount = id
		proposal = &Proposal{
			Address:      addr,
			Fund:         fund.Address,
			Proposer:     input.Signer,
			GroupUserRef: member.GroupUserRef,
			ProposalID:   id,
			Action:       input.Action,
			Amount:       input.Amount,
			Token:        input.Token,
			Reasoning:    input.Reasoning,
			CreatedAt:    t.now,
			VotingEndsAt: t.now.Add(input.VotingDuration),
			Bump:         bump,
		}

		if err := saveProposal(t.Txn, proposal); err != nil {
			return err
		}

		if err := indexProposal(t.Txn, proposal); err != nil {
			return err
		}

		if err := saveFund(t.Txn, fund); err != nil {
			return err
		}

		return t.emit(TradeProposalCreated{
			Fund:       fund.Address,
			Proposal:   proposal.Address,
			Proposer:   proposal.Proposer,
			ProposalID: proposal.ProposalID,
			Action:     proposal.Action,
			Amount:     proposal.Amount,
			Token:      proposal.Token,
		})
	})

	if err != nil {
		return nil, err
	}

	return proposal, nil
}

// ExecuteProposal settles a closed proposal exactly once. Anyone may call it;
// it records the outcome and moves no value.
func (e *Engine) ExecuteProposal(ctx context.Context, addr solana.PublicKey) (*Proposal, error) {
	var proposal *Proposal
	err := e.update(ctx, func(t *tx) error {
		var err error
		if proposal, err = mustFindProposal(t.Txn, addr); err != nil {
			return err
		}

		if err := checkAll(
			notExecuted(proposal),
			votingClosed(proposal, t.now),
		); err != nil {
			return err
		}

		proposal.Executed = true
		proposal.Passed = proposal.VotesFor > proposal.VotesAgainst && proposal.TotalVotes >= Quorum

		if err := saveProposal(t.Txn, proposal); err != nil {
			return err
		}

		if !proposal.Passed {
			return t.emit(ProposalRejected{
				Fund:         proposal.Fund,
				Proposal:     proposal.Address,
				VotesFor:     proposal.VotesFor,
				VotesAgainst: proposal.VotesAgainst,
			})
		}

		return t.emit(ProposalExecuted{
			Fund:         proposal.Fund,
			Proposal:     proposal.Address,
			Action:       proposal.Action,
			Amount:       proposal.Amount,
			Token:        proposal.Token,
			VotesFor:     proposal.VotesFor,
			VotesAgainst: proposal.VotesAgainst,
		})
	})

	if err != nil {
		return nil, err
	}

	return proposal, nil
}

func (e *Engine) FindProposal(addr solana.PublicKey) (*Proposal, error) {
	var proposal *Proposal
	err := e.view(func(txn *badger.Txn) error {
		var err error
		proposal, err = mustFindProposal(txn, addr)
		return err
	})

	return proposal, err
}

// ListProposals returns the fund's proposals in index key order.
func (e *Engine) ListProposals(fund solana.PublicKey, limit int) ([]*Proposal, error) {
	var proposals []*Proposal
	err := e.view(func(txn *badger.Txn) error {
		if _, err := mustFindFund(txn, fund); err != nil {
			return err
		}

		var err error
		proposals, err = listIndexed[Proposal](txn, buildIndexKey(proposalIndexPrefix, fund), proposalPrefix, limit)
		return err
	})

	return proposals, err
}

// listClosedProposals scans every proposal and returns those whose voting
// window has ended without execution.
func (e *Engine) listClosedProposals(now time.Time) ([]*Proposal, error) {
	var closed []*Proposal
	err := e.view(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(proposalPrefix); it.ValidForPrefix(proposalPrefix); it.Next() {
			var p Proposal
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalRecord(val, &p)
			}); err != nil {
				return err
			}

			if p.State(now) == ProposalClosed {
				closed = append(closed, &p)
			}
		}

		return nil
	})

	return closed, err
}
