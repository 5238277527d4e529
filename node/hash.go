package node

import (
	"encoding/binary"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// HashClaims commits to the full ordered claims vector of a node: each
// claim's id and height_valid, concatenated in list order, then hashed.
// Because Claims is always kept sorted per I2 before this is called, the
// result is a pure function of the node's claim set (spec.md §4.1).
func HashClaims(claims Claims) chainhash.Hash {
	if len(claims) == 0 {
		return chainhash.HashH(nil)
	}
	buf := make([]byte, 0, len(claims)*(IDSize+4))
	for _, c := range claims {
		buf = append(buf, c.ID[:]...)
		var heightValid [4]byte
		binary.BigEndian.PutUint32(heightValid[:], uint32(c.HeightValid))
		buf = append(buf, heightValid[:]...)
	}
	return chainhash.HashH(buf)
}
