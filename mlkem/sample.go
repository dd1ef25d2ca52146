package mlkem

import (
	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// rejUniform fills r[offset:target] with coefficients uniformly distributed in
// [0, q) by rejection sampling buf, which is read as 12-bit little-endian
// candidates, two per 3 bytes. It returns the number of filled coefficients,
// which is at least offset and at most target. Running out of buf before target
// is reached is not an error: the caller squeezes more bytes and calls again
// with the returned offset. len(buf) must be a multiple of 3.
func rejUniform(r []fieldElement, target, offset int, buf []byte) int {
	ctr := offset
	for pos := 0; ctr < target && pos+3 <= len(buf); pos += 3 {
		d1 := uint16(buf[pos]) | uint16(buf[pos+1]&0x0f)<<8
		d2 := uint16(buf[pos+1])>>4 | uint16(buf[pos+2])<<4
		if d1 < q {
			r[ctr] = fieldElement(d1)
			ctr++
		}
		if d2 < q && ctr < target {
			r[ctr] = fieldElement(d2)
			ctr++
		}
	}
	return ctr
}

// sampleNTT generates a uniformly random NTT-domain polynomial from
// SHAKE128(rho || x || y).
// Implements FIPS 203 Algorithm 7 (SampleNTT).
func sampleNTT(rho []byte, x, y byte) nttElement {
	h := symmetric.NewShake128()
	h.Write(rho)
	h.Write([]byte{x, y})

	var buf [symmetric.Shake128Rate]byte
	var a nttElement
	j := 0
	for j < n {
		h.Read(buf[:])
		j = rejUniform(a[:], n, j, buf[:])
	}
	return a
}

// samplePolyCBD samples a polynomial from the centered binomial distribution
// with parameter eta over PRF_eta(s, b).
// Implements FIPS 203 Algorithm 8 (SamplePolyCBD).
func samplePolyCBD(s []byte, b byte, eta int) ringElement {
	var buf [64 * 3]byte
	prf := buf[:64*eta]
	symmetric.PRF(prf, s, b)

	var f ringElement
	bit := func(i int) uint16 {
		return uint16(prf[i>>3]>>(i&7)) & 1
	}
	for i := range f {
		var x, y uint16
		base := 2 * i * eta
		for j := 0; j < eta; j++ {
			x += bit(base + j)
			y += bit(base + eta + j)
		}
		f[i] = fieldSub(fieldElement(x), fieldElement(y))
	}
	clear(buf[:])
	return f
}
