package funds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type Balance struct {
	Account  solana.PublicKey `json:"account"`
	Lamports uint64           `json:"lamports"`
	SOL      decimal.Decimal  `json:"sol"`
}

func NewBalance(account solana.PublicKey, lamports uint64) *Balance {
	return &Balance{
		Account:  account,
		Lamports: lamports,
		SOL:      lamportsToSOL(lamports),
	}
}

func lamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
}

func getBalance(txn *badger.Txn, account solana.PublicKey) (uint64, error) {
	item, err := txn.Get(buildIndexKey(balancePrefix, account))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}

		return 0, err
	}

	var lamports uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt balance for %s", account)
		}

		lamports = binary.BigEndian.Uint64(val)
		return nil
	})

	return lamports, err
}

func setBalance(txn *badger.Txn, account solana.PublicKey, lamports uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], lamports)
	return txn.Set(buildIndexKey(balancePrefix, account), b[:])
}
