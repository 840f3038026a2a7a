package sentinel

import (
	"sync"
	"testing"
)

func TestCountersSnapshotInitiallyZero(t *testing.T) {
	var c Counters
	total, blocked, backups := c.Snapshot()
	if total != 0 || blocked != 0 || backups != 0 {
		t.Fatalf("expected all counters to start at zero, got %d/%d/%d", total, blocked, backups)
	}
}

func TestCountersBlockedNeverExceedsTotal(t *testing.T) {
	var c Counters
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.RecordWrite()
			if i%3 == 0 {
				c.RecordBlocked()
			}
		}(i)
	}
	wg.Wait()

	total, blocked, _ := c.Snapshot()
	if blocked > total {
		t.Fatalf("invariant violated: blocked_writes (%d) > total_writes (%d)", blocked, total)
	}
	if total != 100 {
		t.Fatalf("expected 100 total writes, got %d", total)
	}
}

func TestCountersRecordBackup(t *testing.T) {
	var c Counters
	c.RecordBackup()
	c.RecordBackup()
	_, _, backups := c.Snapshot()
	if backups != 2 {
		t.Fatalf("expected 2 backups recorded, got %d", backups)
	}
}
