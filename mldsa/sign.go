package mldsa

import (
	"crypto"
	"io"

	"github.com/KarpelesLab/pqc/internal/ct"
	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// Sign signs digest with the private key.
// This implements the crypto.Signer interface.
//
// For ML-DSA, the digest is the message to be signed (not a hash).
// If opts is *SignerOpts, its Context field is used for domain separation.
func (sk *PrivateKey) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	return sk.SignMessage(rand, digest, opts)
}

// SignMessage signs msg with the private key.
// This implements the crypto.MessageSigner interface.
//
// Returns an error if opts specifies a hash function, as ML-DSA signs messages directly.
func (sk *PrivateKey) SignMessage(rand io.Reader, msg []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != 0 {
		return nil, ErrPreHashed
	}
	var context []byte
	if o, ok := opts.(*SignerOpts); ok && o != nil {
		context = o.Context
	}
	return sk.SignWithContext(rand, msg, context)
}

// SignWithContext signs a message with an optional context string of at
// most 255 bytes, using fresh randomness from rand.
func (sk *PrivateKey) SignWithContext(rand io.Reader, message, context []byte) ([]byte, error) {
	return sk.sign(rand, message, context)
}

// SignDeterministic signs a message without randomness. The same key,
// message and context always produce the same signature.
func (sk *PrivateKey) SignDeterministic(message, context []byte) ([]byte, error) {
	return sk.sign(nil, message, context)
}

// sign dispatches to the ML-DSA or Dilithium message encoding. A nil rand
// selects the deterministic variant.
func (sk *PrivateKey) sign(rand io.Reader, message, context []byte) ([]byte, error) {
	if len(context) > MaxContextSize {
		return nil, ErrContextTooLong
	}
	if sk.p.legacy {
		if len(context) != 0 {
			return nil, ErrContextNotSupported
		}
		return sk.signLegacy(rand, message)
	}

	var rnd [32]byte
	if rand != nil {
		if _, err := io.ReadFull(rand, rnd[:]); err != nil {
			return nil, err
		}
	}
	return sk.signInternal(rnd[:], formatMessage(message, context))
}

// formatMessage returns M' = 0 || len(ctx) || ctx || msg.
func formatMessage(message, context []byte) []byte {
	mPrime := make([]byte, 2+len(context)+len(message))
	mPrime[0] = 0
	mPrime[1] = byte(len(context))
	copy(mPrime[2:], context)
	copy(mPrime[2+len(context):], message)
	return mPrime
}

// signInternal implements ML-DSA.Sign_internal (FIPS 204 Algorithm 7).
// mPrime is the formatted message and rnd the 32-byte hedging value.
func (sk *PrivateKey) signInternal(rnd, mPrime []byte) ([]byte, error) {
	var mu [64]byte
	symmetric.Shake256(mu[:], sk.tr[:], mPrime)

	var rhoPrime [64]byte
	symmetric.Shake256(rhoPrime[:], sk.key[:], rnd, mu[:])
	defer ct.Zero(rhoPrime[:])

	return sk.signMu(mu[:], rhoPrime[:])
}

// signLegacy computes the round 3.1 Dilithium mu = H(tr || M) and masking
// seed, which is H(K || mu) when deterministic and random otherwise.
func (sk *PrivateKey) signLegacy(rand io.Reader, message []byte) ([]byte, error) {
	var mu [64]byte
	symmetric.Shake256(mu[:], sk.tr[:sk.p.trSize()], message)

	var rhoPrime [64]byte
	defer ct.Zero(rhoPrime[:])
	if rand == nil {
		symmetric.Shake256(rhoPrime[:], sk.key[:], mu[:])
	} else if _, err := io.ReadFull(rand, rhoPrime[:]); err != nil {
		return nil, err
	}

	return sk.signMu(mu[:], rhoPrime[:])
}

// signMu runs the rejection sampling loop for the message representative mu
// and masking seed rhoPrime.
func (sk *PrivateKey) signMu(mu, rhoPrime []byte) ([]byte, error) {
	p := sk.p
	gamma2 := p.gamma2
	beta := p.beta()

	// Precompute NTT of secret vectors
	s1NTT := nttVector(sk.s1)
	s2NTT := nttVector(sk.s2)
	t0NTT := nttVector(sk.t0)
	defer clear(s1NTT)
	defer clear(s2NTT)

	y := make([]ringElement, p.l)
	z := make([]ringElement, p.l)
	w1 := make([]ringElement, p.k)
	r := make([]ringElement, p.k)
	r0 := make([][n]int32, p.k)
	ct0 := make([]ringElement, p.k)
	hints := make([]ringElement, p.k)
	defer clear(y)

	cTilde := make([]byte, p.cTildeSize())
	w1Buf := make([]byte, 0, n*p.w1Bits()/8)

	kappa := uint16(0)
	for attempt := 0; attempt < maxSignAttempts; attempt++ {
		for i := range y {
			y[i] = expandMask(rhoPrime, kappa+uint16(i), p.gamma1Bits)
		}
		kappa += uint16(p.l)

		// w = A*y, w1 = HighBits(w)
		w := matrixMul(sk.a, nttVector(y), p.k, p.l)

		h := symmetric.NewShake256()
		h.Write(mu)
		for i := range w {
			for j := 0; j < n; j++ {
				w1[i][j] = fieldElement(highBits(w[i][j], gamma2))
			}
			w1Buf = packW1(w1Buf[:0], &w1[i], p.w1Bits())
			h.Write(w1Buf)
		}
		h.Read(cTilde)

		c := sampleChallenge(cTilde, p.tau)
		cNTT := ntt(c)

		// z = y + c*s1
		for i := range z {
			z[i] = polyAdd(y[i], invNTT(nttMul(cNTT, s1NTT[i])))
		}
		if vectorInfinityNorm(z) >= p.gamma1()-beta {
			continue
		}

		// r0 = LowBits(w - c*s2)
		for i := range r {
			r[i] = polySub(w[i], invNTT(nttMul(cNTT, s2NTT[i])))
			for j := 0; j < n; j++ {
				_, r0[i][j] = decompose(r[i][j], gamma2)
			}
		}
		if vectorInfinityNormSigned(r0) >= int32(gamma2-beta) {
			continue
		}

		for i := range ct0 {
			ct0[i] = invNTT(nttMul(cNTT, t0NTT[i]))
		}
		if vectorInfinityNorm(ct0) >= gamma2 {
			continue
		}

		for i := range hints {
			for j := 0; j < n; j++ {
				hints[i][j] = makeHint(ct0[i][j], r[i][j], gamma2)
			}
		}
		if countOnes(hints) > p.omega {
			continue
		}

		sig := make([]byte, 0, p.SignatureSize())
		sig = append(sig, cTilde...)
		for i := range z {
			sig = packZ(sig, &z[i], p.gamma1Bits)
		}
		return packHint(sig, hints, p.omega), nil
	}
	return nil, ErrSignFailed
}
