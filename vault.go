package funds

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Vault is the pooled account of a fund next to the contributions it owes.
// Lamports exceeds TotalDeposits by whatever profit has landed in the vault
// and falls short by collected success fees.
type Vault struct {
	Fund          solana.PublicKey `json:"fund"`
	Address       solana.PublicKey `json:"address"`
	Lamports      uint64           `json:"lamports"`
	SOL           decimal.Decimal  `json:"sol"`
	TotalDeposits uint64           `json:"total_deposits"`
}

// VaultAddress returns the account holding the fund's pooled deposits.
func (e *Engine) VaultAddress(fund solana.PublicKey) (solana.PublicKey, error) {
	vault, _, err := e.derive.Vault(fund)
	return vault, err
}

func (e *Engine) FundVault(addr solana.PublicKey) (*Vault, error) {
	vault, err := e.VaultAddress(addr)
	if err != nil {
		return nil, err
	}

	v := &Vault{Fund: addr, Address: vault}
	err = e.view(func(txn *badger.Txn) error {
		fund, err := mustFindFund(txn, addr)
		if err != nil {
			return err
		}

		v.TotalDeposits = fund.TotalDeposits
		v.Lamports, err = getBalance(txn, vault)
		return err
	})

	if err != nil {
		return nil, err
	}

	v.SOL = lamportsToSOL(v.Lamports)
	return v, nil
}
