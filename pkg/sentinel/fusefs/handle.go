package fusefs

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/sentinelfs/sentinelfs/pkg/must"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel"
)

// sentinelHandle is the open-file object returned by Open and Create. It
// carries only the concrete path — not an already-open descriptor — because
// the write gate algorithm re-opens the file for every write (see
// forwardWrite), matching the reference design's "open; write; close" write
// handler rather than holding a long-lived descriptor across writes.
type sentinelHandle struct {
	ctx  *sentinel.Context
	path string
}

var (
	_ fs.FileReader   = (*sentinelHandle)(nil)
	_ fs.FileWriter   = (*sentinelHandle)(nil)
	_ fs.FileFlusher  = (*sentinelHandle)(nil)
	_ fs.FileReleaser = (*sentinelHandle)(nil)
)

func newHandle(ctx *sentinel.Context, path string) *sentinelHandle {
	return &sentinelHandle{ctx: ctx, path: path}
}

// Read implements the "read" operation: opens read-only, performs a
// positioned read for the requested length at the requested offset, closes.
func (h *sentinelHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	file, err := os.Open(h.path)
	if err != nil {
		return nil, fs.ToErrno(err)
	}
	defer must.Close(file, h.ctx.Logger)

	n, err := file.ReadAt(dest, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fs.ToErrno(err)
	}
	return fuse.ReadResultData(dest[:n]), 0
}

// Write implements the "write" operation by delegating to the write gate
// algorithm (HandleWrite), the central decision point of the façade.
func (h *sentinelHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	return HandleWrite(h.ctx, h.path, data, off)
}

// Flush is a no-op: every write in this façade is already synchronously
// committed to the underlying storage by HandleWrite.
func (h *sentinelHandle) Flush(ctx context.Context) syscall.Errno {
	return 0
}

// Release is a no-op: sentinelHandle holds no open descriptor between
// operations.
func (h *sentinelHandle) Release(ctx context.Context) syscall.Errno {
	return 0
}
