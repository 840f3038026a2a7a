package must

import (
	"io"
	"os"

	"github.com/sentinelfs/sentinelfs/pkg/logging"
)

// Close closes c, logging (and swallowing) any resulting error. Used on
// every descriptor exit path — success, I/O error, or detection rejection —
// where a close failure must not override the operation's primary result.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes name, logging (and swallowing) any resulting error. Used
// to clean up a partially written backup or staging file after a failed
// copy, per the advisory failure semantics of the JIT backup manager.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}
