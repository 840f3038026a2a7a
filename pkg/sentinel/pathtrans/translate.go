// Package pathtrans implements the Path Translator component: mapping a
// virtual path, as seen by clients of the mount, to a concrete path under
// the storage root.
package pathtrans

import (
	"strings"
	"syscall"
)

// MaxPathLength is the maximum length, in bytes, allowed for a translated
// concrete path. This matches the reference implementation's MAX_PATH value.
const MaxPathLength = 4096

// ErrPathTooLong is returned by Translate when the concatenation of the
// storage root and the virtual path would exceed MaxPathLength. It is the
// ENAMETOOLONG errno, so the façade reports it to clients unchanged.
var ErrPathTooLong error = syscall.ENAMETOOLONG

// Translate maps a virtual path (always rooted at "/") to a concrete path
// under root by simple concatenation. It performs no normalization, no
// symlink resolution, and no ".." sanitization — the underlying storage is
// expected to enforce its own containment, per the reference design.
func Translate(root, virtual string) (string, error) {
	concrete := root + virtual
	if len(concrete) > MaxPathLength {
		return "", ErrPathTooLong
	}
	return concrete, nil
}

// Contains reports whether concrete lies within root, based solely on a
// prefix check of the translated path (no symlink resolution). It is a
// helper for checking containment; nothing in the façade calls it.
func Contains(root, concrete string) bool {
	if concrete == root {
		return true
	}
	return strings.HasPrefix(concrete, root+"/")
}
