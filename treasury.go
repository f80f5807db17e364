package funds

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

type CollectSuccessFeeInput struct {
	Signer       solana.PublicKey
	Fund         solana.PublicKey
	ProfitAmount uint64
}

// CollectSuccessFee moves SuccessFee(ProfitAmount) from the fund vault to the
// platform treasury. The profit figure is reported by the fund authority and
// taken as given.
func (e *Engine) CollectSuccessFee(ctx context.Context, input CollectSuccessFeeInput) (uint64, error) {
	vault, _, err := e.derive.Vault(input.Fund)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	fee := SuccessFee(input.ProfitAmount)
	err = e.update(ctx, func(t *tx) error {
		fund, err := mustFindFund(t.Txn, input.Fund)
		if err != nil {
			return err
		}

		if err := checkAll(
			signerPresent(input.Signer),
			signerIs(input.Signer, fund.Authority),
		); err != nil {
			return err
		}

		if err := transfer(t.Txn, vault, e.opts.PlatformTreasury, fee); err != nil {
			return err
		}

		return t.emit(SuccessFeeCollected{
			Fund:         fund.Address,
			ProfitAmount: input.ProfitAmount,
			FeeAmount:    fee,
		})
	})

	if err != nil {
		return 0, err
	}

	return fee, nil
}

type WithdrawFundsInput struct {
	Signer solana.PublicKey
	Fund   solana.PublicKey
	Amount uint64
}

// WithdrawFunds pays Amount from the fund vault back to the signer's wallet and
// keeps the fund aggregates equal to the sum of member contributions.
func (e *Engine) WithdrawFunds(ctx context.Context, input WithdrawFundsInput) (*Member, error) {
	memberAddr, _, err := e.derive.Member(input.Fund, input.Signer)
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

		if member, _, err = findMember(t.Txn, memberAddr); err != nil {
			return err
		}

		if err := checkAll(
			signerPresent(input.Signer),
			withinContribution(member, input.Amount),
		); err != nil {
			return err
		}

		if err := transfer(t.Txn, vault, input.Signer, input.Amount); err != nil {
			return err
		}

		wasCurrent := member.IsCurrent()
		member.Contribution -= input.Amount
		fund.TotalDeposits -= input.Amount
		if wasCurrent && !member.IsCurrent() {
			fund.MemberCount--
		}

		if err := saveMember(t.Txn, member); err != nil {
			return err
		}

		if err := saveFund(t.Txn, fund); err != nil {
			return err
		}

		return t.emit(FundsWithdrawn{
			Fund:   fund.Address,
			Member: input.Signer,
			Amount: input.Amount,
		})
	})

	if err != nil {
		return nil, err
	}

	return member, nil
}

// Balance reads the lamports held by account.
func (e *Engine) Balance(account solana.PublicKey) (*Balance, error) {
	var lamports uint64
	err := e.view(func(txn *badger.Txn) error {
		var err error
		lamports, err = getBalance(txn, account)
		return err
	})

	if err != nil {
		return nil, err
	}

	return NewBalance(account, lamports), nil
}

// Airdrop mints lamports into account. It stands in for the external chain in
// development and is refused unless enabled in Options.
func (e *Engine) Airdrop(ctx context.Context, account solana.PublicKey, amount uint64) (*Balance, error) {
	if !e.opts.AllowAirdrop {
		return nil, fmt.Errorf("%w: airdrop disabled", ErrUnauthorized)
	}

	if err := checkAll(signerPresent(account)); err != nil {
		return nil, err
	}

	var lamports uint64
	err := e.update(ctx, func(t *tx) error {
		var err error
		lamports, err = credit(t.Txn, account, amount)
		return err
	})

	if err != nil {
		return nil, err
	}

	return NewBalance(account, lamports), nil
}
