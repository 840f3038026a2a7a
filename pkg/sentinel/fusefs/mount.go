package fusefs

import (
	"fmt"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/sentinelfs/sentinelfs/pkg/sentinel"
)

// MountOptions carries the subset of FUSE mount options this façade
// interprets from the command line, per the "additional transport flags"
// contract: anything not recognized here is passed straight through in
// RawOptions.
type MountOptions struct {
	// AllowOther corresponds to "-o allow_other".
	AllowOther bool
	// Debug corresponds to "-d" / "--debug".
	Debug bool
	// FsName corresponds to "--fsname=NAME"; defaults to "sentinelfs" when
	// empty.
	FsName string
	// RawOptions are any remaining transport flags forwarded verbatim to
	// fusermount.
	RawOptions []string
}

// Mount mounts the façade tree rooted at ctx.StorageRoot at mountPoint and
// returns the running *fuse.Server, which is already serving requests in the
// background. The caller is responsible for waiting on it (Wait) and for
// calling Unmount.
func Mount(ctx *sentinel.Context, mountPoint string, opts MountOptions) (*fuse.Server, error) {
	fsName := opts.FsName
	if fsName == "" {
		fsName = "sentinelfs"
	}

	server, err := gofuse.Mount(mountPoint, Root(ctx), &gofuse.Options{
		MountOptions: fuse.MountOptions{
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug,
			FsName:     fsName,
			Name:       "sentinelfs",
			Options:    opts.RawOptions,
		},
		// Every Open() on this façade returns FOPEN_DIRECT_IO, which
		// disables kernel page-cache involvement for file content so that a
		// blocked write can never be masked by a stale cached read.
	})
	if err != nil {
		return nil, fmt.Errorf("unable to mount at %s: %w", mountPoint, err)
	}
	return server, nil
}
