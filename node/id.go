package node

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
)

// IDSize is the length in bytes of a ClaimID, matching the conventional
// 20-byte hash160-style identifier used for both claims and supports.
const IDSize = 20

// ClaimID identifies a claim or a support by the transaction output that
// created it. It is stable across activation, spends, and reorgs: the
// same OutPoint always derives the same ClaimID.
type ClaimID [IDSize]byte

// DeriveID computes the identifier for a claim or support from the
// outpoint of its originating transaction output, following the same
// ripemd160(sha256(x)) "hash160" construction exccutil.Hash160 uses for
// address hashes, applied here to the output's hash and index instead of
// a public key or script.
func DeriveID(op wire.OutPoint) ClaimID {
	buf := make([]byte, chainhash.HashSize+4)
	copy(buf, op.Hash[:])
	binary.LittleEndian.PutUint32(buf[chainhash.HashSize:], op.Index)

	sum := chainhash.HashB(buf)
	r := ripemd160.New()
	r.Write(sum)

	var id ClaimID
	copy(id[:], r.Sum(nil))
	return id
}

// String returns the reversed hex encoding conventionally used to display
// claim ids (the same little-endian-display convention chainhash.Hash
// uses for block/tx hashes).
func (id ClaimID) String() string {
	reversed := make([]byte, IDSize)
	for i := 0; i < IDSize; i++ {
		reversed[i] = id[IDSize-1-i]
	}
	return hex.EncodeToString(reversed)
}

// Less gives ClaimID a total order, used as the final tiebreaker in the
// claims-within-a-node ordering rule (spec I2).
func (id ClaimID) Less(other ClaimID) bool {
	for i := 0; i < IDSize; i++ {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// IsZero reports whether id is the zero value, used to detect an
// unpopulated SupportedClaimID.
func (id ClaimID) IsZero() bool {
	return id == ClaimID{}
}
