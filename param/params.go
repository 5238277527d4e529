// Package param holds the chain parameters the claim trie is configured
// against. Earlier revisions of this package kept these as process-wide
// globals; they are now threaded explicitly into the constructors that need
// them so multiple tries (e.g. mainnet and a test fixture) can coexist in
// the same process.
package param

import "math"

// Params bundles every consensus-relevant constant the claim trie needs in
// order to reproduce the same Merkle root as every other implementation
// fed the same sequence of blocks.
type Params struct {
	// ActivationDelayFactor is the divisor applied to the age of the
	// controlling claim when computing a challenger's activation delay.
	ActivationDelayFactor int32

	// ActivationMaxDelay caps the activation delay a new claim or support
	// can be assigned, regardless of how long the name has been held.
	ActivationMaxDelay int32

	// ExpirationTime is the number of blocks a claim remains active after
	// it activates, absent a spend or reorg.
	ExpirationTime int32

	// NormalizationForkHeight is the height at which name comparison
	// switches from raw byte equality to Unicode NFC-normalized,
	// case-folded equality. MaxNormalizationHeight disables the fork.
	NormalizationForkHeight int32
}

// MaxNormalizationHeight disables the normalization fork: every height is
// below it, so names are always compared byte-for-byte.
const MaxNormalizationHeight = math.MaxInt32

// EmptyTrieHashHex is the hex form of the Merkle root of a trie with no
// claims, the spec's distinguished genesis value.
var EmptyTrieHashHex = "0000000000000000000000000000000000000000000000000000000000000001"

// Mainnet returns the parameter set matching the production chain.
func Mainnet() Params {
	return Params{
		ActivationDelayFactor:   32,
		ActivationMaxDelay:      4032,
		ExpirationTime:          262974, // roughly one year at the chain's block spacing
		NormalizationForkHeight: 496_891,
	}
}

// Regtest returns a parameter set with normalization disabled and a short
// expiration window, convenient for tests that need small, legible numbers.
func Regtest() Params {
	return Params{
		ActivationDelayFactor:   32,
		ActivationMaxDelay:      4032,
		ExpirationTime:          200,
		NormalizationForkHeight: MaxNormalizationHeight,
	}
}

// ActivationDelay returns the number of blocks a new claim or support on a
// name must wait before it activates, given the height at which it was
// claimed and, if the name is already controlled, the height_valid of the
// current controlling claim. A zero controllingHeightValid with
// hasController false means the name is currently unclaimed.
func (p Params) ActivationDelay(height, controllingHeightValid int32, hasController bool) int32 {
	if !hasController {
		return 0
	}
	age := height - controllingHeightValid
	if age < 0 {
		age = 0
	}
	delay := age / p.ActivationDelayFactor
	if delay > p.ActivationMaxDelay {
		return p.ActivationMaxDelay
	}
	return delay
}
