package funds

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

// Persisted field limits, in bytes.
const (
	MaxNameLength        = 32
	MaxDescriptionLength = 200
	MaxStrategyLength    = 50
	MaxGroupRefLength    = 50
	MaxAmountLength      = 50
	MaxTokenLength       = 20
	MaxReasoningLength   = 500
)

type CreateFundInput struct {
	Signer          solana.PublicKey
	Name            string
	Description     string
	Strategy        string
	GroupRef        string
	MinContribution uint64
	MaxMembers      uint32
	ManagementFee   uint16
	PerformanceFee  uint16
}

// CreateFund registers a fund at derive("fund", signer, name) and charges the
// creator the platform creation fee.
func (e *Engine) CreateFund(ctx context.Context, input CreateFundInput) (*Fund, error) {
	if err := checkAll(
		signerPresent(input.Signer),
		maxBytes("name", input.Name, MaxNameLength),
		maxBytes("description", input.Description, MaxDescriptionLength),
		maxBytes("strategy", input.Strategy, MaxStrategyLength),
		maxBytes("group_ref", input.GroupRef, MaxGroupRefLength),
	); err != nil {
		return nil, err
	}

	addr, bump, err := e.derive.Fund(input.Signer, input.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var fund *Fund
	err = e.update(ctx, func(t *tx) error {
		_, exists, err := findFund(t.Txn, addr)
		if err != nil {
			return err
		}

		if exists {
			return fmt.Errorf("%w: %s", ErrFundExists, addr)
		}

		if err := transfer(t.Txn, input.Signer, e.opts.PlatformTreasury, CreationFee); err != nil {
			return err
		}

		fund = &Fund{
			Address:         addr,
			Authority:       input.Signer,
			Name:            input.Name,
			Description:     input.Description,
			Strategy:        input.Strategy,
			GroupRef:        input.GroupRef,
			MinContribution: input.MinContribution,
			MaxMembers:      input.MaxMembers,
			ManagementFee:   input.ManagementFee,
			PerformanceFee:  input.PerformanceFee,
			CreatedAt:       t.now,
			IsActive:        true,
			Bump:            bump,
		}

		if err := saveFund(t.Txn, fund); err != nil {
			return err
		}

		if err := indexFund(t.Txn, fund); err != nil {
			return err
		}

		return t.emit(FundCreated{
			Fund:        fund.Address,
			Authority:   fund.Authority,
			Name:        fund.Name,
			GroupRef:    fund.GroupRef,
			PlatformFee: CreationFee,
		})
	})

	if err != nil {
		return nil, err
	}

	return fund, nil
}

func (e *Engine) FindFund(addr solana.PublicKey) (*Fund, error) {
	var fund *Fund
	err := e.view(func(txn *badger.Txn) error {
		var err error
		fund, err = mustFindFund(txn, addr)
		return err
	})

	return fund, err
}

// ListFunds returns funds in creation order.
func (e *Engine) ListFunds(limit int) ([]*Fund, error) {
	var funds []*Fund
	err := e.view(func(txn *badger.Txn) error {
		var err error
		funds, err = listIndexed[Fund](txn, fundIndexPrefix, fundPrefix, limit)
		return err
	})

	return funds, err
}
