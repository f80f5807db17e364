package funds

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

type VoteInput struct {
	Signer   solana.PublicKey
	Proposal solana.PublicKey
	Support  bool
}

// VoteOnProposal records or changes the signer's vote. A change reverses the
// previously counted bucket, so total_votes counts voters, not calls.
func (e *Engine) VoteOnProposal(ctx context.Context, input VoteInput) (*Vote, error) {
	if err := checkAll(signerPresent(input.Signer)); err != nil {
		return nil, err
	}

	addr, bump, err := e.derive.Vote(input.Proposal, input.Signer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var vote *Vote
	err = e.update(ctx, func(t *tx) error {
		proposal, err := mustFindProposal(t.Txn, input.Proposal)
		if err != nil {
			return err
		}

		memberAddr, _, err := e.derive.Member(proposal.Fund, input.Signer)
		if err != nil {
			return err
		}

		member, _, err := findMember(t.Txn, memberAddr)
		if err != nil {
			return err
		}

		if err := checkAll(
			currentMember(member),
			votingOpen(proposal, t.now),
			notExecuted(proposal),
		); err != nil {
			return err
		}

		prev, found, err := findVote(t.Txn, addr)
		if err != nil {
			return err
		}

		if found {
			if prev.Support {
				proposal.VotesFor--
			} else {
				proposal.VotesAgainst--
			}

			vote = prev
		} else {
			if proposal.TotalVotes, err = incU32(proposal.TotalVotes); err != nil {
				return err
			}

			vote = &Vote{
				Address:  addr,
				Proposal: proposal.Address,
				Voter:    input.Signer,
				Bump:     bump,
			}

			if err := indexVote(t.Txn, vote); err != nil {
				return err
			}
		}

		if input.Support {
			proposal.VotesFor, err = incU32(proposal.VotesFor)
		} else {
			proposal.VotesAgainst, err = incU32(proposal.VotesAgainst)
		}

		if err != nil {
			return err
		}

		vote.Support = input.Support
		vote.GroupUserRef = member.GroupUserRef
		vote.VotedAt = t.now

		if err := saveVote(t.Txn, vote); err != nil {
			return err
		}

		if err := saveProposal(t.Txn, proposal); err != nil {
			return err
		}

		return t.emit(VoteCast{
			Proposal:     proposal.Address,
			Voter:        input.Signer,
			Vote:         input.Support,
			VotesFor:     proposal.VotesFor,
			VotesAgainst: proposal.VotesAgainst,
		})
	})

	if err != nil {
		return nil, err
	}

	return vote, nil
}

// FindVote reports found=false when voter never voted on proposal.
func (e *Engine) FindVote(proposal, voter solana.PublicKey) (*Vote, bool, error) {
	addr, _, err := e.derive.Vote(proposal, voter)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var (
		vote  *Vote
		found bool
	)

	err = e.view(func(txn *badger.Txn) error {
		var err error
		vote, found, err = findVote(txn, addr)
		return err
	})

	return vote, found, err
}

func (e *Engine) ListVotes(proposal solana.PublicKey, limit int) ([]*Vote, error) {
	var votes []*Vote
	err := e.view(func(txn *badger.Txn) error {
		if _, err := mustFindProposal(txn, proposal); err != nil {
			return err
		}

		var err error
		votes, err = listIndexed[Vote](txn, buildIndexKey(voteIndexPrefix, proposal), votePrefix, limit)
		return err
	})

	return votes, err
}
