package fusefs

import (
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// fillAttr populates a FUSE attribute struct from an os.FileInfo, preferring
// the underlying syscall.Stat_t (available on all POSIX platforms this
// façade targets) for fields os.FileInfo does not expose directly.
func fillAttr(out *fuse.Attr, info os.FileInfo) {
	out.Mode = uint32(info.Mode().Perm())
	switch {
	case info.IsDir():
		out.Mode |= syscall.S_IFDIR
	case info.Mode()&os.ModeSymlink != 0:
		out.Mode |= syscall.S_IFLNK
	default:
		out.Mode |= syscall.S_IFREG
	}
	out.Size = uint64(info.Size())

	mtime := info.ModTime()
	out.SetTimes(nil, &mtime, nil)

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		out.Ino = stat.Ino
		out.Nlink = uint32(stat.Nlink)
		out.Uid = stat.Uid
		out.Gid = stat.Gid
		out.Blocks = uint64(stat.Blocks)
	}
}
