// Package ct holds the constant-time helpers used wherever a decision
// depends on secret material.
package ct

import (
	"crypto/subtle"

	"github.com/katzenpost/hpqc/util"
)

// Compare returns 1 if a and b have equal contents and 0 otherwise. The time
// taken depends on the lengths but not on the contents.
func Compare(a, b []byte) int {
	return subtle.ConstantTimeCompare(a, b)
}

// Move overwrites dst with src when b is 1 and leaves dst unchanged when b is
// 0. b must be 0 or 1 and the slices must have equal length.
func Move(dst, src []byte, b int) {
	subtle.ConstantTimeCopy(b, dst, src)
}

// Select returns x if b is 1 and y if b is 0.
func Select(b int, x, y uint32) uint32 {
	mask := -uint32(b & 1)
	return y ^ (mask & (x ^ y))
}

// LessThan returns 1 if x < y and 0 otherwise, for x, y < 2^31.
func LessThan(x, y uint32) int {
	return int((x - y) >> 31)
}

// Zero wipes b.
func Zero(b []byte) {
	util.ExplicitBzero(b)
}
