// Package normalization implements the name-comparison fork described in
// SPEC_FULL.md's supplemented feature 1: below a configured height, names
// are compared byte-for-byte; at and above it, they are Unicode
// NFC-normalized and case-folded first, so visually identical names
// collapse onto the same trie entry. This mirrors the normalization
// switch the LBRYFoundation-lbcd reference claimtrie package performs at
// its own hash-fork height, generalized to a configurable height here
// instead of a single hardcoded mainnet constant.
package normalization

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var caseFolder = cases.Fold()

// NormalizeIfNecessary returns name unchanged if height is below
// forkHeight, and its NFC-normalized, case-folded form otherwise.
func NormalizeIfNecessary(name []byte, height, forkHeight int32) []byte {
	if height < forkHeight {
		return name
	}
	return Normalize(name)
}

// Normalize applies Unicode case folding followed by NFC normalization,
// unconditionally.
func Normalize(name []byte) []byte {
	folded := caseFolder.Bytes(name)
	return norm.NFC.Bytes(folded)
}
