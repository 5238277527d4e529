// Package config defines the claim trie's configuration surface. It
// carries no process-wide state or CLI parsing of its own (spec.md §6:
// "no CLI or environment variables belong to the core") but is shaped
// with the struct tags a host binary's go-flags parser expects, the same
// convention the teacher's cmd/exccd config.go uses.
package config

import "github.com/lbryio/claimtrie/param"

// Config bundles everything New needs to build a ClaimTrie.
type Config struct {
	DataDir string `long:"datadir" description:"Directory to store claim trie data in"`

	// RamTrie selects an in-memory node store instead of the
	// leveldb-backed one, trading durability for speed; useful for
	// tests and short-lived fixtures.
	RamTrie bool `long:"ramtrie" description:"Keep the node store entirely in memory"`

	NodeRepoPath string `long:"noderepopath" description:"Subdirectory of datadir holding the node store" default:"nodes"`

	// TemporalRepoPath names the subdirectory holding the persisted
	// activation/expiration queue tables (spec.md §6's "two height-indexed
	// tables for the queues"). Unused when RamTrie is set: the queues then
	// live purely in memory, rebuilt by replaying blocks from genesis.
	TemporalRepoPath string `long:"temporalrepopath" description:"Subdirectory of datadir holding the persisted activation/expiration queues" default:"queues"`

	Params param.Params
}

// Default returns a Config with mainnet parameters and on-disk storage
// rooted at dir.
func Default(dir string) Config {
	return Config{
		DataDir:          dir,
		NodeRepoPath:     "nodes",
		TemporalRepoPath: "queues",
		Params:           param.Mainnet(),
	}
}
