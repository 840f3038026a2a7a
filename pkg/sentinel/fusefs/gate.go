// Package fusefs implements the Write Gate & Filesystem Façade component: a
// go-fuse v2 filesystem tree that passes every client operation through to
// concrete paths under a storage root, classifying write payloads along the
// way.
package fusefs

import (
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"

	"github.com/sentinelfs/sentinelfs/pkg/must"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel/entropy"
)

// evaluate runs the classification stage of the write gate — §4.C followed
// by §4.B — without performing any I/O. It is kept separate from the rest
// of the write path so that the detection policy can be tested directly
// against arbitrary buffers.
func evaluate(ctx *sentinel.Context, buf []byte) (allow bool, measuredEntropy float64) {
	if ctx.Classifier.IsSafe(buf) {
		return true, 0
	}

	measuredEntropy = entropy.Shannon(buf)
	if measuredEntropy > entropy.Threshold {
		return false, measuredEntropy
	}
	return true, measuredEntropy
}

// HandleWrite implements the write gate algorithm against a concrete path:
// on the first write of a session (offset == 0) it attempts a JIT backup;
// it always records the write in the total-writes counter; it classifies
// and, if necessary, measures the entropy of the payload; and it either
// forwards the write to the underlying storage or rejects it with an I/O
// error.
//
// This function contains the entire decision algorithm and is independent
// of the FUSE bindings, so it can be exercised directly against a temporary
// directory in tests without mounting a filesystem.
func HandleWrite(ctx *sentinel.Context, concretePath string, buf []byte, offset int64) (uint32, syscall.Errno) {
	if offset == 0 {
		result, err := ctx.Backup.IfNeeded(concretePath)
		if err != nil {
			// A backup failure is advisory: log it and proceed with the
			// pending write regardless.
			ctx.Logger.Warnf("backup failed for %s: %s", concretePath, err.Error())
		} else if result.Created {
			ctx.Counters.RecordBackup()
		}
	}

	ctx.Counters.RecordWrite()

	allow, measuredEntropy := evaluate(ctx, buf)
	if !allow {
		ctx.Counters.RecordBlocked()
		ctx.Logger.Printf("ransomware detected: %s (entropy %.4f bits/byte)", concretePath, measuredEntropy)
		return 0, syscall.EIO
	}

	return forwardWrite(ctx, concretePath, buf, offset)
}

// forwardWrite performs the actual positioned write against the underlying
// storage, releasing the file descriptor on every exit path.
func forwardWrite(ctx *sentinel.Context, concretePath string, buf []byte, offset int64) (uint32, syscall.Errno) {
	file, err := os.OpenFile(concretePath, os.O_WRONLY, 0)
	if err != nil {
		return 0, fs.ToErrno(err)
	}
	defer must.Close(file, ctx.Logger)

	n, err := file.WriteAt(buf, offset)
	if err != nil {
		return uint32(n), fs.ToErrno(err)
	}
	return uint32(n), 0
}
