package sentinel

import "sync/atomic"

// Counters holds the three process-wide, monotonically non-decreasing
// counters described by the data model: total writes seen, writes blocked
// by detection, and backups created. All fields are mutated exclusively
// through atomic operations so that Counters can be embedded in Context and
// shared freely across concurrently invoked filesystem operations, per the
// re-architecture guidance to thread counters through a context value
// rather than holding them as package-level globals.
type Counters struct {
	totalWrites    uint64
	blockedWrites  uint64
	backupsCreated uint64
}

// RecordWrite increments the total write counter.
func (c *Counters) RecordWrite() {
	atomic.AddUint64(&c.totalWrites, 1)
}

// RecordBlocked increments the blocked write counter. Callers must only
// call this after RecordWrite for the same write, preserving the invariant
// blocked_writes <= total_writes.
func (c *Counters) RecordBlocked() {
	atomic.AddUint64(&c.blockedWrites, 1)
}

// RecordBackup increments the backups-created counter.
func (c *Counters) RecordBackup() {
	atomic.AddUint64(&c.backupsCreated, 1)
}

// Snapshot returns a relaxed-ordering read of all three counters, suitable
// for the shutdown summary report.
func (c *Counters) Snapshot() (total, blocked, backups uint64) {
	return atomic.LoadUint64(&c.totalWrites),
		atomic.LoadUint64(&c.blockedWrites),
		atomic.LoadUint64(&c.backupsCreated)
}
