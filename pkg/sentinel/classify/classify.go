// Package classify implements the Content Classifier component: inferring a
// media-type label for a byte buffer and answering a safe-list query.
package classify

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sentinelfs/sentinelfs/pkg/logging"
)

// safeMediaTypes is the set of media-type strings that, matched exactly
// (after parameter stripping), cause a write to bypass the entropy check.
var safeMediaTypes = map[string]bool{
	"application/pdf":           true,
	"application/x-executable":  true,
	"application/x-sharedlib":   true,
	"application/x-shellscript": true,
}

// shebang is the byte sequence that acts as a failsafe classification for
// shell wrappers, independent of the classifier's own verdict.
var shebang = []byte{0x23, 0x21} // "#!"

// Classifier infers media types for write payloads and answers safe-list
// queries. Detection is performed by github.com/gabriel-vasile/mimetype,
// whose Detect function is pure and stateless: it holds no descriptor or
// native handle and is safe for unsynchronized concurrent use, so Classifier
// requires no internal locking around the detection call.
type Classifier struct {
	// logger is used to report classifier failures. Static, safe for
	// concurrent reads.
	logger *logging.Logger
}

// New creates a Classifier that reports failures through logger.
func New(logger *logging.Logger) *Classifier {
	return &Classifier{logger: logger.Sublogger("classify")}
}

// IsSafe reports whether buf's content is on the safe-list: a media type
// beginning with "text/", one of a small set of exact media types, or a
// buffer beginning with a "#!" shebang. A classifier failure is treated as
// unsafe and short-circuits without consulting the shebang failsafe, per the
// "unsafe by default" failure contract.
func (c *Classifier) IsSafe(buf []byte) bool {
	mediaType, err := c.detect(buf)
	if err != nil {
		c.logger.Warnf("classifier failure: %s", err.Error())
		return false
	}

	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	if safeMediaTypes[mediaType] {
		return true
	}
	if hasShebang(buf) {
		return true
	}
	return false
}

// hasShebang reports whether buf begins with the literal byte sequence
// 0x23 0x21 ("#!").
func hasShebang(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == shebang[0] && buf[1] == shebang[1]
}

// detect queries the underlying classifier for buf's media type, stripping
// any trailing parameters (e.g. "; charset=utf-8") the library may append.
// mimetype.Detect never returns a nil result in practice, but the nil check
// below keeps the classifier-failure path reachable and exercised should the
// detection backend ever be swapped for one with a fallible interface (e.g.
// an external libmagic binding).
func (c *Classifier) detect(buf []byte) (string, error) {
	mt := mimetype.Detect(buf)
	if mt == nil {
		return "", errors.New("classifier returned no result")
	}

	mediaType := mt.String()
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType, nil
}
