package funds

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
)

// getRecord loads the JSON record under key. found is false when the key is absent.
func getRecord[T any](txn *badger.Txn, key []byte) (rec *T, found bool, err error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var v T
	if err := item.Value(func(val []byte) error {
		return unmarshalRecord(val, &v)
	}); err != nil {
		return nil, false, err
	}

	return &v, true, nil
}

func unmarshalRecord(val []byte, v any) error {
	return json.Unmarshal(val, v)
}

func setRecord(txn *badger.Txn, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return txn.SetEntry(badger.NewEntry(key, b))
}

// listIndexed walks an index prefix whose values are record addresses and
// loads each record from recordPrefix.
func listIndexed[T any](txn *badger.Txn, index, recordPrefix []byte, limit int) ([]*T, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchSize = limit
	it := txn.NewIterator(opts)
	defer it.Close()

	var records []*T
	for it.Seek(index); it.ValidForPrefix(index) && len(records) < limit; it.Next() {
		var addr solana.PublicKey
		if err := it.Item().Value(func(val []byte) error {
			addr = solana.PublicKeyFromBytes(val)
			return nil
		}); err != nil {
			return nil, err
		}

		rec, found, err := getRecord[T](txn, buildIndexKey(recordPrefix, addr))
		if err != nil {
			return nil, err
		}

		if found {
			records = append(records, rec)
		}
	}

	return records, nil
}

func findFund(txn *badger.Txn, addr solana.PublicKey) (*Fund, bool, error) {
	return getRecord[Fund](txn, buildIndexKey(fundPrefix, addr))
}

// mustFindFund is findFund with absence reported as ErrNotFound.
func mustFindFund(txn *badger.Txn, addr solana.PublicKey) (*Fund, error) {
	fund, found, err := findFund(txn, addr)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, notFound("fund", addr)
	}

	return fund, nil
}

func saveFund(txn *badger.Txn, fund *Fund) error {
	return setRecord(txn, buildIndexKey(fundPrefix, fund.Address), fund)
}

func indexFund(txn *badger.Txn, fund *Fund) error {
	key := buildIndexKey(fundIndexPrefix, fund.CreatedAt.UnixNano(), fund.Address)
	return txn.Set(key, fund.Address.Bytes())
}

func findMember(txn *badger.Txn, addr solana.PublicKey) (*Member, bool, error) {
	return getRecord[Member](txn, buildIndexKey(memberPrefix, addr))
}

func saveMember(txn *badger.Txn, member *Member) error {
	return setRecord(txn, buildIndexKey(memberPrefix, member.Address), member)
}

func indexMember(txn *badger.Txn, member *Member) error {
	key := buildIndexKey(memberIndexPrefix, member.Fund, member.Authority)
	return txn.Set(key, member.Address.Bytes())
}

func findProposal(txn *badger.Txn, addr solana.PublicKey) (*Proposal, bool, error) {
	return getRecord[Proposal](txn, buildIndexKey(proposalPrefix, addr))
}

func mustFindProposal(txn *badger.Txn, addr solana.PublicKey) (*Proposal, error) {
	proposal, found, err := findProposal(txn, addr)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, notFound("proposal", addr)
	}

	return proposal, nil
}

func saveProposal(txn *badger.Txn, proposal *Proposal) error {
	return setRecord(txn, buildIndexKey(proposalPrefix, proposal.Address), proposal)
}

func indexProposal(txn *badger.Txn, proposal *Proposal) error {
	key := buildIndexKey(proposalIndexPrefix, proposal.Fund, proposal.ProposalID)
	return txn.Set(key, proposal.Address.Bytes())
}

func findVote(txn *badger.Txn, addr solana.PublicKey) (*Vote, bool, error) {
	return getRecord[Vote](txn, buildIndexKey(votePrefix, addr))
}

func saveVote(txn *badger.Txn, vote *Vote) error {
	return setRecord(txn, buildIndexKey(votePrefix, vote.Address), vote)
}

func indexVote(txn *badger.Txn, vote *Vote) error {
	key := buildIndexKey(voteIndexPrefix, vote.Proposal, vote.Voter)
	return txn.Set(key, vote.Address.Bytes())
}
