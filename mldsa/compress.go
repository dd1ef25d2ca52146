package mldsa

import "github.com/KarpelesLab/pqc/internal/ct"

// power2Round decomposes r into (r1, r0) such that r = r1 * 2^d + r0 mod q,
// with r0 in (-2^(d-1), 2^(d-1)] stored modulo q.
// Implements FIPS 204 Algorithm 35.
func power2Round(r fieldElement) (r1, r0 fieldElement) {
	const half = 1 << (d - 1)
	hi := uint32(r) >> d
	lo := uint32(r) - hi<<d

	// carry is 1 when lo > half, in which case r0 = lo - 2^d and r1 = hi + 1.
	carry := uint32(ct.LessThan(half, lo))
	r1 = fieldElement(hi + carry)
	r0 = fieldSub(fieldElement(lo), fieldElement(carry<<d))
	return r1, r0
}

// highBits extracts the high-order bits of r after decomposition by 2*gamma2.
// Implements FIPS 204 Algorithm 37 (HighBits).
func highBits(r fieldElement, gamma2 uint32) uint32 {
	r1 := int32((r + 127) >> 7)

	if gamma2 == gamma2QMinus1Div32 {
		// ((ceil(r / 128) * 1025 + 2^21) / 2^22) mod 16
		r1 = (r1*1025 + (1 << 21)) >> 22
		return uint32(r1) & 15
	}
	r1 = (r1*11275 + (1 << 23)) >> 24
	// r1 == 44 wraps to 0
	r1 ^= ((43 - r1) >> 31) & r1
	return uint32(r1)
}

// decompose splits r into (r1, r0) where r = r1 * 2*gamma2 + r0 with r0
// centered.
// Implements FIPS 204 Algorithm 36.
func decompose(r fieldElement, gamma2 uint32) (r1 uint32, r0 int32) {
	r1 = highBits(r, gamma2)
	r0 = int32(r) - int32(r1)*int32(gamma2)*2
	r0 -= ((int32(qMinus1Div2) - r0) >> 31) & q
	return r1, r0
}

// makeHint returns 1 if adding z to r changes its high bits.
// Implements FIPS 204 Algorithm 39.
func makeHint(z, r fieldElement, gamma2 uint32) fieldElement {
	if highBits(fieldAdd(r, z), gamma2) != highBits(r, gamma2) {
		return 1
	}
	return 0
}

// useHint recovers the high bits of r + z given r and the hint for z.
// Implements FIPS 204 Algorithm 40.
func useHint(hint, r fieldElement, gamma2 uint32) fieldElement {
	r1, r0 := decompose(r, gamma2)
	if hint == 0 {
		return fieldElement(r1)
	}

	if gamma2 == gamma2QMinus1Div32 {
		// m = 16
		if r0 > 0 {
			return fieldElement((r1 + 1) & 15)
		}
		return fieldElement((r1 - 1) & 15)
	}
	// m = 44
	if r0 > 0 {
		if r1 == 43 {
			return 0
		}
		return fieldElement(r1 + 1)
	}
	if r1 == 0 {
		return 43
	}
	return fieldElement(r1 - 1)
}

// infinityNorm returns |a| for a interpreted as a centered value mod q.
func infinityNorm(a fieldElement) uint32 {
	negative := ct.LessThan(qMinus1Div2, uint32(a))
	return ct.Select(negative, q-uint32(a), uint32(a))
}

// vectorInfinityNorm returns the maximum infinity norm across a vector.
func vectorInfinityNorm[T ~[n]fieldElement](v []T) uint32 {
	var max uint32
	for i := range v {
		for _, c := range v[i] {
			x := infinityNorm(c)
			max = ct.Select(ct.LessThan(max, x), x, max)
		}
	}
	return max
}

// vectorInfinityNormSigned returns the maximum absolute value in v.
func vectorInfinityNormSigned(v [][n]int32) int32 {
	var max int32
	for i := range v {
		for _, x := range v[i] {
			// branch-free absolute value
			m := x >> 31
			if a := (x ^ m) - m; a > max {
				max = a
			}
		}
	}
	return max
}

// countOnes counts the non-zero coefficients of v.
func countOnes[T ~[n]fieldElement](v []T) int {
	count := 0
	for i := range v {
		for _, c := range v[i] {
			count += int((uint32(c) | -uint32(c)) >> 31)
		}
	}
	return count
}
