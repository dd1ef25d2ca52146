package mldsa

import "errors"

var errInvalidEta = errors.New("mldsa: invalid eta encoding")

// packBits appends n values of the given bit width, little-endian, to b.
// value(i) must be below 2^bits.
func packBits(b []byte, bits int, value func(i int) uint32) []byte {
	var acc uint64
	var accLen int
	for i := 0; i < n; i++ {
		acc |= uint64(value(i)) << accLen
		accLen += bits
		for accLen >= 8 {
			b = append(b, byte(acc))
			acc >>= 8
			accLen -= 8
		}
	}
	return b
}

// unpackBits calls set for each of the n values of the given bit width
// encoded in b.
func unpackBits(b []byte, bits int, set func(i int, v uint32)) {
	var acc uint64
	var accLen int
	mask := uint64(1)<<bits - 1
	for i := 0; i < n; i++ {
		for accLen < bits {
			acc |= uint64(b[0]) << accLen
			b = b[1:]
			accLen += 8
		}
		set(i, uint32(acc&mask))
		acc >>= bits
		accLen -= bits
	}
}

// packT1 appends the 10-bit encoding of t1 (SimpleBitPack with b = 2^10 - 1).
func packT1(b []byte, f *ringElement) []byte {
	return packBits(b, 10, func(i int) uint32 { return uint32(f[i]) })
}

// unpackT1 decodes a 10-bit t1 polynomial.
func unpackT1(b []byte) (f ringElement) {
	unpackBits(b, 10, func(i int, v uint32) { f[i] = fieldElement(v) })
	return f
}

// packT0 appends t0, with coefficients in (-2^12, 2^12], as 2^12 - t0 in 13
// bits.
func packT0(b []byte, f *ringElement) []byte {
	const center = 1 << (d - 1)
	return packBits(b, d, func(i int) uint32 { return uint32(fieldSub(center, f[i])) })
}

// unpackT0 decodes a t0 polynomial.
func unpackT0(b []byte) (f ringElement) {
	const center = 1 << (d - 1)
	unpackBits(b, d, func(i int, v uint32) { f[i] = fieldSub(center, fieldElement(v)) })
	return f
}

// packEta appends a polynomial with coefficients in [-eta, eta] as eta - f.
func packEta(b []byte, f *ringElement, eta int) []byte {
	bits := 3
	if eta == 4 {
		bits = 4
	}
	return packBits(b, bits, func(i int) uint32 { return uint32(fieldSub(fieldElement(eta), f[i])) })
}

// unpackEta decodes a polynomial with coefficients in [-eta, eta], rejecting
// encodings above 2*eta.
func unpackEta(b []byte, eta int) (ringElement, error) {
	var f ringElement
	bits := 3
	if eta == 4 {
		bits = 4
	}
	var bad uint32
	unpackBits(b, bits, func(i int, v uint32) {
		// records a set top bit when v > 2*eta
		bad |= uint32(2*eta) - v
		f[i] = fieldSub(fieldElement(eta), fieldElement(v))
	})
	if bad>>31 != 0 {
		return ringElement{}, errInvalidEta
	}
	return f, nil
}

// packZ appends z, with coefficients in (-gamma1, gamma1], as gamma1 - z in
// gamma1Bits+1 bits.
func packZ(b []byte, f *ringElement, gamma1Bits int) []byte {
	gamma1 := fieldElement(1) << gamma1Bits
	return packBits(b, gamma1Bits+1, func(i int) uint32 { return uint32(fieldSub(gamma1, f[i])) })
}

// unpackZ decodes z. Every bit pattern is a valid encoding.
func unpackZ(b []byte, gamma1Bits int) (f ringElement) {
	gamma1 := fieldElement(1) << gamma1Bits
	unpackBits(b, gamma1Bits+1, func(i int, v uint32) { f[i] = fieldSub(gamma1, fieldElement(v)) })
	return f
}

// packW1 appends w1 in 4 or 6 bits per coefficient.
func packW1(b []byte, f *ringElement, bits int) []byte {
	return packBits(b, bits, func(i int) uint32 { return uint32(f[i]) })
}

// packHint packs the hint vector into omega position bytes followed by k
// running totals.
func packHint[T ~[n]fieldElement](b []byte, hints []T, omega int) []byte {
	k := len(hints)
	out := make([]byte, omega+k)
	idx := 0
	for i := 0; i < k; i++ {
		for j := 0; j < n; j++ {
			if hints[i][j] != 0 {
				out[idx] = byte(j)
				idx++
			}
		}
		out[omega+i] = byte(idx)
	}
	return append(b, out...)
}

// unpackHint unpacks the hint vector, rejecting non-canonical encodings:
// decreasing totals, totals above omega, unsorted positions within a
// polynomial and non-zero padding.
func unpackHint[T ~[n]fieldElement](b []byte, hints []T, omega int) bool {
	k := len(hints)
	idx := 0
	for i := 0; i < k; i++ {
		limit := int(b[omega+i])
		if limit < idx || limit > omega {
			return false
		}
		first := idx
		for ; idx < limit; idx++ {
			pos := b[idx]
			if idx > first && b[idx-1] >= pos {
				return false
			}
			hints[i][pos] = 1
		}
	}
	for ; idx < omega; idx++ {
		if b[idx] != 0 {
			return false
		}
	}
	return true
}
