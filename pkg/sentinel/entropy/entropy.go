// Package entropy implements the Entropy Estimator component: Shannon
// entropy computation over byte buffers.
package entropy

import "math"

// Threshold is the entropy, in bits per byte, strictly above which a write
// is considered probable ransomware output (subject to the safe-list of the
// classify package taking precedence).
const Threshold = 7.5

// MaxEntropy is the maximum possible value returned by Shannon, the log2 of
// the 256-value byte alphabet.
const MaxEntropy = 8.0

// Shannon computes the Shannon entropy of buf in bits per byte:
//
//	H = -Σ (count_i / n) * log2(count_i / n)
//
// over the empirical distribution of byte values in buf. It returns 0 for an
// empty buffer. The frequency table is a fixed 256-slot array, so this
// function performs no heap allocation.
func Shannon(buf []byte) float64 {
	if len(buf) == 0 {
		return 0.0
	}

	var counts [256]int
	for _, b := range buf {
		counts[b]++
	}

	n := float64(len(buf))
	var h float64
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		h -= p * math.Log2(p)
	}
	return h
}
