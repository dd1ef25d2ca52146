package mlkem

import (
	"github.com/KarpelesLab/pqc/internal/ct"
	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// expandMatrix derives the k x k matrix A in NTT form from rho, with
// a[i*k+j] = SampleNTT(rho || j || i).
func expandMatrix(rho []byte, k int) []nttElement {
	a := make([]nttElement, k*k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			a[i*k+j] = sampleNTT(rho, byte(j), byte(i))
		}
	}
	return a
}

// pkeKeyGen derives the K-PKE key pair from the 32-byte seed d, filling ek.t,
// ek.rho, ek.a and returning the NTT-domain secret vector.
// Implements FIPS 203 Algorithm 13 (K-PKE.KeyGen).
func pkeKeyGen(p *Parameters, ek *EncapsulationKey, d []byte) []nttElement {
	k := p.k
	rho, sigma := symmetric.G(d, []byte{byte(k)})
	defer ct.Zero(sigma[:])

	ek.p = p
	ek.rho = rho
	ek.a = expandMatrix(rho[:], k)

	var nonce byte
	s := make([]nttElement, k)
	for i := range s {
		s[i] = ntt(samplePolyCBD(sigma[:], nonce, p.eta1))
		nonce++
	}
	e := make([]nttElement, k)
	for i := range e {
		e[i] = ntt(samplePolyCBD(sigma[:], nonce, p.eta1))
		nonce++
	}

	// t = A * s + e
	ek.t = make([]nttElement, k)
	for i := 0; i < k; i++ {
		acc := e[i]
		for j := 0; j < k; j++ {
			acc = mulAcc(acc, ek.a[i*k+j], s[j])
		}
		ek.t[i] = acc
	}
	clear(e)
	return s
}

// pkeEncrypt encrypts the 32-byte message m under ek with randomness r.
// Implements FIPS 203 Algorithm 14 (K-PKE.Encrypt).
func pkeEncrypt(ek *EncapsulationKey, m, r []byte) []byte {
	p := ek.p
	k := p.k

	var nonce byte
	y := make([]nttElement, k)
	for i := range y {
		y[i] = ntt(samplePolyCBD(r, nonce, p.eta1))
		nonce++
	}
	e1 := make([]ringElement, k)
	for i := range e1 {
		e1[i] = samplePolyCBD(r, nonce, p.eta2)
		nonce++
	}
	e2 := samplePolyCBD(r, nonce, p.eta2)

	c := make([]byte, 0, p.CiphertextSize())

	// u = NTT^-1(A^T * y) + e1
	for i := 0; i < k; i++ {
		var acc nttElement
		for j := 0; j < k; j++ {
			acc = mulAcc(acc, ek.a[j*k+i], y[j])
		}
		u := polyAdd(invNTT(acc), e1[i])
		c = ringCompressAndEncode(c, u, p.du)
	}

	// v = NTT^-1(t^T * y) + e2 + Decompress_1(m)
	mu := ringDecodeAndDecompress(m, 1)
	var acc nttElement
	for i := 0; i < k; i++ {
		acc = mulAcc(acc, ek.t[i], y[i])
	}
	v := polyAdd(polyAdd(invNTT(acc), e2), mu)
	c = ringCompressAndEncode(c, v, p.dv)

	clear(y)
	clear(e1)
	return c
}

// pkeDecrypt recovers the 32-byte message from c using the secret vector s.
// Implements FIPS 203 Algorithm 15 (K-PKE.Decrypt).
func pkeDecrypt(p *Parameters, s []nttElement, c []byte) []byte {
	k := p.k
	uSize := n * int(p.du) / 8

	var acc nttElement
	for i := 0; i < k; i++ {
		u := ringDecodeAndDecompress(c[i*uSize:(i+1)*uSize], p.du)
		acc = mulAcc(acc, s[i], ntt(u))
	}
	v := ringDecodeAndDecompress(c[k*uSize:], p.dv)
	w := polySub(v, invNTT(acc))
	return ringCompressAndEncode(make([]byte, 0, MessageSize), w, 1)
}
