package funds

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed tags of every program-derived record address.
const (
	seedFund     = "fund"
	seedVault    = "vault"
	seedMember   = "member"
	seedProposal = "proposal"
	seedVote     = "vote"
)

// Deriver maps (domain tag, parent keys, disambiguator) to record addresses.
// Addresses are deterministic, so clients can predict them without an index scan.
type Deriver struct {
	ProgramID solana.PublicKey
}

func (d Deriver) derive(seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive %q: %w", seeds[0], err)
	}

	return addr, bump, nil
}

func (d Deriver) Fund(authority solana.PublicKey, name string) (solana.PublicKey, uint8, error) {
	return d.derive([]byte(seedFund), authority.Bytes(), []byte(name))
}

func (d Deriver) Vault(fund solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive([]byte(seedVault), fund.Bytes())
}

func (d Deriver) Member(fund, participant solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive([]byte(seedMember), fund.Bytes(), participant.Bytes())
}

// Proposal derives the slot from the fund's proposal count before it is
// incremented, the value a client reads from the fund record.
func (d Deriver) Proposal(fund solana.PublicKey, count uint64) (solana.PublicKey, uint8, error) {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], count)
	return d.derive([]byte(seedProposal), fund.Bytes(), le[:])
}

func (d Deriver) Vote(proposal, voter solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive([]byte(seedVote), proposal.Bytes(), voter.Bytes())
}
