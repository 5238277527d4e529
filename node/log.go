package node

import "github.com/decred/slog"

// log is the package-local logger, following the same disabled-by-default
// convention every Decred/btcsuite package uses: silent until a host
// binary calls UseLogger with a configured backend.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by node.
func UseLogger(logger slog.Logger) {
	log = logger
}
