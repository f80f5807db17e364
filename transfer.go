package funds

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

// transfer atomically moves lamports between two balances within txn. It fails
// with ErrInsufficientFunds when from cannot cover amount, leaving txn to be discarded.
func transfer(txn *badger.Txn, from, to solana.PublicKey, amount uint64) error {
	if amount == 0 || from.Equals(to) {
		return nil
	}

	fromBalance, err := getBalance(txn, from)
	if err != nil {
		return err
	}

	if fromBalance < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, from, fromBalance, amount)
	}

	toBalance, err := getBalance(txn, to)
	if err != nil {
		return err
	}

	credited, err := addU64(toBalance, amount)
	if err != nil {
		return err
	}

	if err := setBalance(txn, from, fromBalance-amount); err != nil {
		return err
	}

	return setBalance(txn, to, credited)
}

// credit mints lamports into account. Only the airdrop path uses it; the
// governance operations move value exclusively through transfer.
func credit(txn *badger.Txn, account solana.PublicKey, amount uint64) (uint64, error) {
	balance, err := getBalance(txn, account)
	if err != nil {
		return 0, err
	}

	balance, err = addU64(balance, amount)
	if err != nil {
		return 0, err
	}

	return balance, setBalance(txn, account, balance)
}
