package mlkem

// encodingSize12 is the size of a polynomial with full 12-bit coefficients.
const encodingSize12 = n * 12 / 8

// polyByteEncode appends the 12-bit encoding of f to b.
// Implements FIPS 203 Algorithm 5 (ByteEncode_12).
func polyByteEncode[T ~[n]fieldElement](b []byte, f T) []byte {
	out, buf := sliceForAppend(b, encodingSize12)
	for i := 0; i < n; i += 2 {
		x := uint32(f[i]) | uint32(f[i+1])<<12
		buf[0] = byte(x)
		buf[1] = byte(x >> 8)
		buf[2] = byte(x >> 16)
		buf = buf[3:]
	}
	return out
}

// polyByteDecode decodes a 12-bit encoding, reducing every coefficient
// modulo q. Encodings with coefficients >= q therefore do not round-trip,
// which is what checkPublicKey relies on.
// Implements FIPS 203 Algorithm 6 (ByteDecode_12) followed by the modulus
// reduction of FIPS 203 Section 7.2.
func polyByteDecode[T ~[n]fieldElement](b []byte) T {
	var f T
	for i := 0; i < n; i += 2 {
		d := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		f[i] = fieldReduceOnce(uint16(d & 0xfff))
		f[i+1] = fieldReduceOnce(uint16(d >> 12))
		b = b[3:]
	}
	return f
}

// compress maps x to round(2^d / q * x) mod 2^d without division.
func compress(x fieldElement, d uint8) uint16 {
	dividend := uint32(x) << d
	quotient := uint32((uint64(dividend) * barrettMultiplier) >> barrettShift)
	remainder := dividend - quotient*q

	// remainder is in [0, 2q); round to the nearest quotient.
	quotient += (q/2 - remainder) >> 31 & 1
	quotient += (q + q/2 - remainder) >> 31 & 1

	var mask uint32 = (1 << d) - 1
	return uint16(quotient & mask)
}

// decompress maps y to round(q / 2^d * y).
func decompress(y uint16, d uint8) fieldElement {
	dividend := uint32(y) * q
	quotient := dividend >> d
	quotient += (dividend >> (d - 1)) & 1
	return fieldElement(quotient)
}

// ringCompressAndEncode appends the d-bit encoding of Compress_d(f) to b.
// Implements FIPS 203 Algorithm 5 (ByteEncode_d) composed with Compress_d.
func ringCompressAndEncode(b []byte, f ringElement, d uint8) []byte {
	out, buf := sliceForAppend(b, n*int(d)/8)
	var acc uint32
	var accLen uint8
	idx := 0
	for i := range f {
		acc |= uint32(compress(f[i], d)) << accLen
		accLen += d
		for accLen >= 8 {
			buf[idx] = byte(acc)
			idx++
			acc >>= 8
			accLen -= 8
		}
	}
	return out
}

// ringDecodeAndDecompress decodes a d-bit encoding and decompresses it.
// Implements FIPS 203 Algorithm 6 (ByteDecode_d) composed with Decompress_d.
func ringDecodeAndDecompress(b []byte, d uint8) ringElement {
	var f ringElement
	var acc uint32
	var accLen uint8
	idx := 0
	for i := range f {
		for accLen < d {
			acc |= uint32(b[idx]) << accLen
			idx++
			accLen += 8
		}
		f[i] = decompress(uint16(acc&(1<<d-1)), d)
		acc >>= d
		accLen -= d
	}
	return f
}

// sliceForAppend extends in by n bytes, reusing its capacity when possible,
// and returns the extended slice and the n-byte tail.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
