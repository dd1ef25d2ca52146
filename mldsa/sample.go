package mldsa

import (
	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// sampleNTTPoly generates a uniformly random polynomial in NTT domain
// using rejection sampling from SHAKE128(rho || s || r).
// Implements FIPS 204 Algorithm 30 (RejNTTPoly).
func sampleNTTPoly(rho []byte, s, r byte) nttElement {
	h := symmetric.NewShake128()
	h.Write(rho)
	h.Write([]byte{s, r})

	var buf [symmetric.Shake128Rate]byte
	var a nttElement
	j := 0
	for j < n {
		h.Read(buf[:])
		for i := 0; i < len(buf) && j < n; i += 3 {
			// 24 bits with the top bit cleared
			v := uint32(buf[i]) | uint32(buf[i+1])<<8 | (uint32(buf[i+2])&0x7f)<<16
			if v < q {
				a[j] = fieldElement(v)
				j++
			}
		}
	}
	return a
}

// expandMatrix derives the k x l matrix A in NTT form, row-major.
// Implements FIPS 204 Algorithm 32 (ExpandA).
func expandMatrix(rho []byte, k, l int) []nttElement {
	a := make([]nttElement, k*l)
	for i := 0; i < k; i++ {
		for j := 0; j < l; j++ {
			a[i*l+j] = sampleNTTPoly(rho, byte(j), byte(i))
		}
	}
	return a
}

// sampleBoundedPoly generates a polynomial with coefficients in [-eta, eta]
// from SHAKE256(seed || nonce) by rejection on half-bytes.
// Implements FIPS 204 Algorithm 31 (RejBoundedPoly).
func sampleBoundedPoly(seed []byte, eta int, nonce uint16) ringElement {
	h := symmetric.NewShake256()
	h.Write(seed)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})

	var buf [symmetric.Shake256Rate]byte
	var a ringElement
	j := 0
	for j < n {
		h.Read(buf[:])
		for i := 0; i < len(buf) && j < n; i++ {
			for _, z := range [2]byte{buf[i] & 0x0f, buf[i] >> 4} {
				if j == n {
					break
				}
				if eta == 2 && z < 15 {
					a[j] = fieldSub(2, fieldElement(z%5))
					j++
				} else if eta == 4 && z < 9 {
					a[j] = fieldSub(4, fieldElement(z))
					j++
				}
			}
		}
	}
	return a
}

// expandS derives the secret vectors s1 (length l) and s2 (length k).
// Implements FIPS 204 Algorithm 33 (ExpandS).
func expandS(rhoPrime []byte, p *Parameters) (s1, s2 []ringElement) {
	s1 = make([]ringElement, p.l)
	for i := range s1 {
		s1[i] = sampleBoundedPoly(rhoPrime, p.eta, uint16(i))
	}
	s2 = make([]ringElement, p.k)
	for i := range s2 {
		s2[i] = sampleBoundedPoly(rhoPrime, p.eta, uint16(p.l+i))
	}
	return s1, s2
}

// sampleChallenge generates the challenge polynomial c with tau non-zero
// coefficients in {-1, 1} from the challenge seed.
// Implements FIPS 204 Algorithm 29 (SampleInBall).
func sampleChallenge(seed []byte, tau int) ringElement {
	h := symmetric.NewShake256()
	h.Write(seed)

	var buf [symmetric.Shake256Rate]byte
	h.Read(buf[:])

	// First 8 bytes encode sign bits
	var signs uint64
	for i := 0; i < 8; i++ {
		signs |= uint64(buf[i]) << (8 * i)
	}
	offset := 8

	var c ringElement
	for i := n - tau; i < n; i++ {
		// j uniform in [0, i]
		var j byte
		for {
			if offset == len(buf) {
				h.Read(buf[:])
				offset = 0
			}
			j = buf[offset]
			offset++
			if int(j) <= i {
				break
			}
		}

		c[i] = c[j]
		c[j] = 1
		if signs&1 == 1 {
			c[j] = q - 1
		}
		signs >>= 1
	}
	return c
}

// expandMask generates the masking polynomial with coefficients in
// (-gamma1, gamma1] from SHAKE256(rhoPrime || nonce).
// Implements FIPS 204 Algorithm 34 (ExpandMask), one polynomial at a time.
func expandMask(rhoPrime []byte, nonce uint16, gamma1Bits int) ringElement {
	h := symmetric.NewShake256()
	h.Write(rhoPrime)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})

	buf := make([]byte, n*(gamma1Bits+1)/8)
	h.Read(buf)
	return unpackZ(buf, gamma1Bits)
}
