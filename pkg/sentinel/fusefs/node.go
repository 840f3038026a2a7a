package fusefs

import (
	"context"
	"os"
	"path/filepath"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/sentinelfs/sentinelfs/pkg/must"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel/pathtrans"
)

// sentinelNode is a single entry (file or directory) in the mounted tree.
// It holds no cached concrete path: every operation recomputes its concrete
// path by walking the inode chain back to the root and re-running the Path
// Translator, so that the write gate's "classified from scratch on every
// write" property holds even under kernel dentry caching.
type sentinelNode struct {
	fs.Inode

	// ctx is the global process context. Static, safe for concurrent reads.
	ctx *sentinel.Context
}

var (
	_ fs.NodeGetattrer = (*sentinelNode)(nil)
	_ fs.NodeSetattrer = (*sentinelNode)(nil)
	_ fs.NodeLookuper  = (*sentinelNode)(nil)
	_ fs.NodeReaddirer = (*sentinelNode)(nil)
	_ fs.NodeOpener    = (*sentinelNode)(nil)
	_ fs.NodeCreater   = (*sentinelNode)(nil)
	_ fs.NodeMkdirer   = (*sentinelNode)(nil)
	_ fs.NodeUnlinker  = (*sentinelNode)(nil)
	_ fs.NodeRmdirer   = (*sentinelNode)(nil)
	_ fs.NodeRenamer   = (*sentinelNode)(nil)
)

// Root constructs the root node of the façade tree for the given context.
func Root(ctx *sentinel.Context) fs.InodeEmbedder {
	return &sentinelNode{ctx: ctx}
}

// concretePath translates this node's virtual path (derived from its
// position in the inode tree) to a concrete path under the storage root.
func (n *sentinelNode) concretePath() (string, error) {
	virtual := "/" + n.Path(nil)
	return pathtrans.Translate(n.ctx.StorageRoot, virtual)
}

// childConcretePath translates the virtual path of a prospective child
// entry named name.
func (n *sentinelNode) childConcretePath(name string) (string, error) {
	virtual := "/" + filepath.Join(n.Path(nil), name)
	return pathtrans.Translate(n.ctx.StorageRoot, virtual)
}

// newChild wraps a freshly discovered or created entry as a façade node,
// registering it in the inode tree with a stable attribute derived from its
// file mode.
func (n *sentinelNode) newChild(ctx context.Context, info os.FileInfo) *fs.Inode {
	mode := uint32(fuse.S_IFREG)
	if info.IsDir() {
		mode = fuse.S_IFDIR
	}
	child := &sentinelNode{ctx: n.ctx}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: mode})
}

// Getattr implements the "stat" operation via lstat on the concrete path.
func (n *sentinelNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	concrete, err := n.concretePath()
	if err != nil {
		return fs.ToErrno(err)
	}

	info, err := os.Lstat(concrete)
	if err != nil {
		return fs.ToErrno(err)
	}
	fillAttr(&out.Attr, info)
	return 0
}

// Setattr implements "change mode / owner" and "truncate" against the
// concrete path.
func (n *sentinelNode) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	concrete, err := n.concretePath()
	if err != nil {
		return fs.ToErrno(err)
	}

	if size, ok := in.GetSize(); ok {
		if err := os.Truncate(concrete, int64(size)); err != nil {
			return fs.ToErrno(err)
		}
	}
	if mode, ok := in.GetMode(); ok {
		if err := os.Chmod(concrete, os.FileMode(mode&0o7777)); err != nil {
			return fs.ToErrno(err)
		}
	}
	uid, hasUID := in.GetUID()
	gid, hasGID := in.GetGID()
	if hasUID || hasGID {
		chownUID, chownGID := -1, -1
		if hasUID {
			chownUID = int(uid)
		}
		if hasGID {
			chownGID = int(gid)
		}
		if err := os.Chown(concrete, chownUID, chownGID); err != nil {
			return fs.ToErrno(err)
		}
	}

	info, err := os.Lstat(concrete)
	if err != nil {
		return fs.ToErrno(err)
	}
	fillAttr(&out.Attr, info)
	return 0
}

// Lookup implements directory-entry resolution, translating the child's
// virtual path and stat-ing it on the underlying storage.
func (n *sentinelNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	concrete, err := n.childConcretePath(name)
	if err != nil {
		return nil, fs.ToErrno(err)
	}

	info, err := os.Lstat(concrete)
	if err != nil {
		return nil, fs.ToErrno(err)
	}

	fillAttr(&out.Attr, info)
	return n.newChild(ctx, info), 0
}

// Readdir implements "list directory": it opens the concrete directory and
// yields each entry's name and the minimal attribute set (file kind)
// sufficient to identify it.
func (n *sentinelNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	concrete, err := n.concretePath()
	if err != nil {
		return nil, fs.ToErrno(err)
	}

	entries, err := os.ReadDir(concrete)
	if err != nil {
		return nil, fs.ToErrno(err)
	}

	dirEntries := make([]fuse.DirEntry, 0, len(entries))
	for _, entry := range entries {
		mode := uint32(fuse.S_IFREG)
		if entry.IsDir() {
			mode = fuse.S_IFDIR
		}
		dirEntries = append(dirEntries, fuse.DirEntry{
			Name: entry.Name(),
			Mode: mode,
		})
	}
	return fs.NewListDirStream(dirEntries), 0
}

// Open implements the "open" operation: it serves only as a permission
// probe, opening the concrete path with the requested mode and immediately
// closing it.
func (n *sentinelNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	concrete, err := n.concretePath()
	if err != nil {
		return nil, 0, fs.ToErrno(err)
	}

	probe, err := os.OpenFile(concrete, int(flags), 0)
	if err != nil {
		return nil, 0, fs.ToErrno(err)
	}
	must.Close(probe, n.ctx.Logger)

	return newHandle(n.ctx, concrete), fuse.FOPEN_DIRECT_IO, 0
}

// Create implements "create": a new empty regular file with the requested
// mode.
func (n *sentinelNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	concrete, err := n.childConcretePath(name)
	if err != nil {
		return nil, nil, 0, fs.ToErrno(err)
	}

	file, err := os.OpenFile(concrete, int(flags)|os.O_CREATE, os.FileMode(mode&0o7777))
	if err != nil {
		return nil, nil, 0, fs.ToErrno(err)
	}
	must.Close(file, n.ctx.Logger)

	info, err := os.Lstat(concrete)
	if err != nil {
		return nil, nil, 0, fs.ToErrno(err)
	}
	fillAttr(&out.Attr, info)

	return n.newChild(ctx, info), newHandle(n.ctx, concrete), 0, 0
}

// Mkdir implements "make directory".
func (n *sentinelNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	concrete, err := n.childConcretePath(name)
	if err != nil {
		return nil, fs.ToErrno(err)
	}

	if err := os.Mkdir(concrete, os.FileMode(mode&0o7777)); err != nil {
		return nil, fs.ToErrno(err)
	}

	info, err := os.Lstat(concrete)
	if err != nil {
		return nil, fs.ToErrno(err)
	}
	fillAttr(&out.Attr, info)

	return n.newChild(ctx, info), 0
}

// Unlink implements "unlink": removes a regular file.
func (n *sentinelNode) Unlink(ctx context.Context, name string) syscall.Errno {
	concrete, err := n.childConcretePath(name)
	if err != nil {
		return fs.ToErrno(err)
	}
	if err := os.Remove(concrete); err != nil {
		return fs.ToErrno(err)
	}
	return 0
}

// Rmdir implements "remove directory": removes an empty directory.
func (n *sentinelNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	concrete, err := n.childConcretePath(name)
	if err != nil {
		return fs.ToErrno(err)
	}
	if err := os.Remove(concrete); err != nil {
		return fs.ToErrno(err)
	}
	return 0
}

// Rename implements "rename" from source to destination concrete paths.
// Any rename-flag bits are ignored, per the reference design.
func (n *sentinelNode) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	source, err := n.childConcretePath(name)
	if err != nil {
		return fs.ToErrno(err)
	}

	destinationParent, ok := newParent.(*sentinelNode)
	if !ok {
		return syscall.EINVAL
	}
	destination, err := destinationParent.childConcretePath(newName)
	if err != nil {
		return fs.ToErrno(err)
	}

	if err := os.Rename(source, destination); err != nil {
		return fs.ToErrno(err)
	}
	return 0
}
