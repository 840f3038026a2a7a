package logging

import (
	"log"
	"os"
)

func init() {
	// Diagnostics are a free-form stream on standard error, not a stable or
	// machine-parseable interface, and carry no timestamp/file prefix of
	// their own (the Logger prefix already identifies the source).
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}
