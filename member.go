package funds

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

type JoinFundInput struct {
	Signer       solana.PublicKey
	Fund         solana.PublicKey
	Amount       uint64
	GroupUserRef uint64
}

// JoinFund deposits Amount into the fund on behalf of the signer, creating the
// member record on the first deposit. The platform keeps TransactionFee and the
// rest is credited to the fund vault and the member's contribution.
func (e *Engine) JoinFund(ctx context.Context, input JoinFundInput) (*Member, error) {
	addr, bump, err := e.derive.Member(input.Fund, input.Signer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	vault, _, err := e.derive.Vault(input.Fund)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var member *Member
	err = e.update(ctx, func(t *tx) error {
		fund, err := mustFindFund(t.Txn, input.Fund)
		if err != nil {
			return err
		}

		existing, found, err := findMember(t.Txn, addr)
		if err != nil {
			return err
		}

		if err := checkAll(
			signerPresent(input.Signer),
			fundActive(fund),
			minContribution(fund, input.Amount),
			seatAvailable(fund),
		); err != nil {
			return err
		}

		fee, net := SplitDeposit(input.Amount)
		if err := transfer(t.Txn, input.Signer, e.opts.PlatformTreasury, fee); err != nil {
			return err
		}

		if err := transfer(t.Txn, input.Signer, vault, net); err != nil {
			return err
		}

		member = existing
		if !found {
			member = &Member{
				Address:   addr,
				Fund:      fund.Address,
				Authority: input.Signer,
				Bump:      bump,
			}

			if err := indexMember(t.Txn, member); err != nil {
				return err
			}
		}

		if !member.IsCurrent() && net > 0 {
			if fund.MemberCount, err = incU32(fund.MemberCount); err != nil {
				return err
			}

			member.JoinedAt = t.now
		}

		if member.Contribution, err = addU64(member.Contribution, net); err != nil {
			return err
		}

		if fund.TotalDeposits, err = addU64(fund.TotalDeposits, net); err != nil {
			return err
		}

		member.GroupUserRef = input.GroupUserRef

		if err := saveMember(t.Txn, member); err != nil {
			return err
		}

		if err := saveFund(t.Txn, fund); err != nil {
			return err
		}

		return t.emit(MemberJoined{
			Fund:         fund.Address,
			Member:       input.Signer,
			Amount:       net,
			PlatformFee:  fee,
			GroupUserRef: input.GroupUserRef,
		})
	})

	if err != nil {
		return nil, err
	}

	return member, nil
}

// FindMember reports found=false when the participant never deposited into fund.
func (e *Engine) FindMember(fund, participant solana.PublicKey) (*Member, bool, error) {
	addr, _, err := e.derive.Member(fund, participant)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var (
		member *Member
		found  bool
	)

	err = e.view(func(txn *badger.Txn) error {
		var err error
		member, found, err = findMember(txn, addr)
		return err
	})

	return member, found, err
}

// ListMembers returns the fund's members ordered by participant key, including
// those who withdrew everything.
func (e *Engine) ListMembers(fund solana.PublicKey, limit int) ([]*Member, error) {
	var members []*Member
	err := e.view(func(txn *badger.Txn) error {
		if _, err := mustFindFund(txn, fund); err != nil {
			return err
		}

		var err error
		members, err = listIndexed[Member](txn, buildIndexKey(memberIndexPrefix, fund), memberPrefix, limit)
		return err
	})

	return members, err
}
