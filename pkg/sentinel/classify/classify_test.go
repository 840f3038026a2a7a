package classify

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sentinelfs/sentinelfs/pkg/logging"
)

func newTestClassifier() *Classifier {
	return New(logging.NewLogger(logging.LevelDisabled))
}

func TestIsSafeText(t *testing.T) {
	c := newTestClassifier()
	if !c.IsSafe([]byte("hello, this is plain ASCII text content.\n")) {
		t.Fatal("expected plain text to be classified as safe")
	}
}

func TestIsSafePDF(t *testing.T) {
	c := newTestClassifier()
	buf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x01}, 64)...)
	if !c.IsSafe(buf) {
		t.Fatal("expected a PDF header to be classified as safe")
	}
}

func TestIsSafeShebangFailsafe(t *testing.T) {
	c := newTestClassifier()
	buf := append([]byte("#!/*"), randomish(4092)...)
	if !c.IsSafe(buf) {
		t.Fatal("expected a #! prefix to be classified as safe regardless of subsequent bytes")
	}
}

func TestIsSafeRejectsOpaqueBinary(t *testing.T) {
	c := newTestClassifier()
	if c.IsSafe(randomish(4096)) {
		t.Fatal("expected uniform random binary content to not be on the safe-list")
	}
}

func TestHasShebangRequiresTwoBytes(t *testing.T) {
	if hasShebang([]byte{0x23}) {
		t.Fatal("expected single-byte buffer to not match the shebang failsafe")
	}
	if !hasShebang([]byte{0x23, 0x21}) {
		t.Fatal("expected exact two-byte shebang to match")
	}
}

func TestIsSafeTable(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		name string
		buf  []byte
	}{
		{"plain-text", []byte("plain ASCII content\n")},
		{"pdf-header", append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x02}, 32)...)},
		{"shebang", append([]byte("#!/bin/sh\n"), bytes.Repeat([]byte{0x03}, 32)...)},
		{"opaque-binary", randomish(2048)},
	}

	got := make(map[string]bool, len(cases))
	for _, c2 := range cases {
		got[c2.name] = c.IsSafe(c2.buf)
	}

	want := map[string]bool{
		"plain-text":    true,
		"pdf-header":    true,
		"shebang":       true,
		"opaque-binary": false,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("safe-list classification mismatch (-want +got):\n%s", diff)
	}
}

// randomish returns a deterministic, high-entropy-looking buffer without
// depending on a real random source (buffer content only needs to avoid
// incidental matches with recognizable file formats here).
func randomish(n int) []byte {
	buf := make([]byte, n)
	state := uint32(0x9E3779B9)
	for i := range buf {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		buf[i] = byte(state)
	}
	return buf
}
