package funds

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// CreationFee is charged to a fund's creator, 0.1 SOL.
	CreationFee uint64 = 100_000_000

	// TransactionFeeBps is the platform cut of every deposit (0.2%).
	TransactionFeeBps uint64 = 20
	// SuccessFeePercent is the platform cut of reported profit (1%).
	SuccessFeePercent uint64 = 1

	// Quorum is the minimum number of votes a proposal needs to pass.
	Quorum uint32 = 3

	bpsDenominator = 10_000
)

// TransactionFee returns floor(amount*20/10000) without overflowing for any amount.
func TransactionFee(amount uint64) uint64 {
	q, r := amount/bpsDenominator, amount%bpsDenominator
	return q*TransactionFeeBps + r*TransactionFeeBps/bpsDenominator
}

// SplitDeposit returns the platform fee and the net amount credited to the fund.
func SplitDeposit(amount uint64) (fee, net uint64) {
	fee = TransactionFee(amount)
	return fee, amount - fee
}

// SuccessFee returns floor(profit/100).
func SuccessFee(profit uint64) uint64 {
	return profit/100*SuccessFeePercent + profit%100*SuccessFeePercent/100
}

func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}

	return sum, nil
}

func incU32(v uint32) (uint32, error) {
	if v == math.MaxUint32 {
		return 0, fmt.Errorf("%w: uint32 counter", ErrOverflow)
	}

	return v + 1, nil
}
