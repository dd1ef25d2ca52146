package mldsa

import (
	"crypto/subtle"

	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// Verify reports whether sig is a valid signature of message under the
// optional context, which must be empty for the Dilithium parameter sets.
func (pk *PublicKey) Verify(sig, message, context []byte) bool {
	if len(sig) != pk.p.SignatureSize() || len(context) > MaxContextSize {
		return false
	}
	if pk.p.legacy {
		if len(context) != 0 {
			return false
		}
		var mu [64]byte
		symmetric.Shake256(mu[:], pk.tr[:pk.p.trSize()], message)
		return pk.verifyMu(sig, mu[:])
	}
	return pk.verifyInternal(sig, formatMessage(message, context))
}

// verifyInternal implements ML-DSA.Verify_internal (FIPS 204 Algorithm 8).
func (pk *PublicKey) verifyInternal(sig, mPrime []byte) bool {
	if len(sig) != pk.p.SignatureSize() {
		return false
	}
	var mu [64]byte
	symmetric.Shake256(mu[:], pk.tr[:], mPrime)
	return pk.verifyMu(sig, mu[:])
}

func (pk *PublicKey) verifyMu(sig, mu []byte) bool {
	p := pk.p

	cTilde := sig[:p.cTildeSize()]
	rest := sig[p.cTildeSize():]

	z := make([]ringElement, p.l)
	for i := range z {
		z[i] = unpackZ(rest[:p.zSize()], p.gamma1Bits)
		rest = rest[p.zSize():]
	}
	if vectorInfinityNorm(z) >= p.gamma1()-p.beta() {
		return false
	}

	hints := make([]ringElement, p.k)
	if !unpackHint(rest, hints, p.omega) {
		return false
	}

	cNTT := ntt(sampleChallenge(cTilde, p.tau))
	zNTT := nttVector(z)

	// w'_approx = A*z - c*t1*2^d
	h := symmetric.NewShake256()
	h.Write(mu)
	w1Buf := make([]byte, 0, n*p.w1Bits()/8)
	for i := 0; i < p.k; i++ {
		var acc nttElement
		for j := 0; j < p.l; j++ {
			acc = polyAdd(acc, nttMul(pk.a[i*p.l+j], zNTT[j]))
		}

		var t1Scaled ringElement
		for j := range t1Scaled {
			t1Scaled[j] = pk.t1[i][j] << d
		}
		acc = polySub(acc, nttMul(cNTT, ntt(t1Scaled)))
		wApprox := invNTT(acc)

		var w1 ringElement
		for j := range w1 {
			w1[j] = useHint(hints[i][j], wApprox[j], p.gamma2)
		}
		w1Buf = packW1(w1Buf[:0], &w1, p.w1Bits())
		h.Write(w1Buf)
	}

	cTildeCheck := make([]byte, len(cTilde))
	h.Read(cTildeCheck)
	return subtle.ConstantTimeCompare(cTilde, cTildeCheck) == 1
}
