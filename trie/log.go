package trie

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package-wide logger used by trie.
func UseLogger(logger slog.Logger) {
	log = logger
}
