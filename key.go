package funds

import (
	"github.com/pandodao/mtg/mtgpack"
)

var (
	fundPrefix     = []byte("f:")
	memberPrefix   = []byte("m:")
	proposalPrefix = []byte("p:")
	votePrefix     = []byte("v:")
	balancePrefix  = []byte("b:")
	eventPrefix    = []byte("e:")

	// secondary indexes, values are record addresses
	fundIndexPrefix     = []byte("if:")
	memberIndexPrefix   = []byte("im:")
	proposalIndexPrefix = []byte("ip:")
	voteIndexPrefix     = []byte("iv:")
)

func buildIndexKey(prefix []byte, values ...any) []byte {
	enc := mtgpack.NewEncoder()
	if err := enc.EncodeValues(values...); err != nil {
		panic(err)
	}

	b := enc.Bytes()
	key := make([]byte, 0, len(prefix)+len(b))
	key = append(key, prefix...)
	return append(key, b...)
}
