package oqs

import (
	"errors"
	"fmt"
	"io"

	"github.com/katzenpost/hpqc/rand"

	"github.com/KarpelesLab/pqc/mldsa"
)

type mldsaSignature struct {
	p   *mldsa.Parameters
	alg Algorithm
}

var _ Signature = (*mldsaSignature)(nil)

func newMLDSA(p *mldsa.Parameters) *mldsaSignature {
	version := "FIPS204"
	if !p.SupportsContext() {
		version = "3.1"
	}
	return &mldsaSignature{
		p: p,
		alg: Algorithm{
			Name:              p.Name(),
			Version:           version,
			NISTLevel:         p.NISTLevel(),
			EUFCMA:            true,
			SigWithCtxSupport: p.SupportsContext(),
			PublicKeySize:     p.PublicKeySize(),
			SecretKeySize:     p.PrivateKeySize(),
			SignatureSize:     p.SignatureSize(),
			SeedSize:          mldsa.SeedSize,
			Backend:           Backend,
		},
	}
}

func (s *mldsaSignature) Algorithm() Algorithm { return s.alg }

func (s *mldsaSignature) Keypair(r io.Reader) (pk, sk []byte, err error) {
	if r == nil {
		r = rand.Reader
	}
	key, err := mldsa.GenerateKey(s.p, r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s keypair: %w", s.alg.Name, err)
	}
	return key.PublicKey().Bytes(), key.Bytes(), nil
}

func (s *mldsaSignature) KeypairFromSeed(seed []byte) (pk, sk []byte, err error) {
	if len(seed) != s.alg.SeedSize {
		return nil, nil, ErrInvalidLength
	}
	key, err := mldsa.NewKey(s.p, seed)
	if err != nil {
		return nil, nil, err
	}
	return key.PublicKey().Bytes(), key.Bytes(), nil
}

func (s *mldsaSignature) privateKey(sk []byte) (*mldsa.PrivateKey, error) {
	if len(sk) != s.alg.SecretKeySize {
		return nil, ErrInvalidLength
	}
	return mldsa.NewPrivateKey(s.p, sk)
}

func (s *mldsaSignature) publicKey(pk []byte) (*mldsa.PublicKey, error) {
	if len(pk) != s.alg.PublicKeySize {
		return nil, ErrInvalidLength
	}
	return mldsa.NewPublicKey(s.p, pk)
}

func (s *mldsaSignature) Sign(msg, sk []byte, r io.Reader) ([]byte, error) {
	return s.SignWithCtx(msg, nil, sk, r)
}

func (s *mldsaSignature) Verify(msg, sig, pk []byte) error {
	return s.VerifyWithCtx(msg, sig, nil, pk)
}

func (s *mldsaSignature) SignWithCtx(msg, ctx, sk []byte, r io.Reader) ([]byte, error) {
	key, err := s.privateKey(sk)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return mapSignError(key.SignDeterministic(msg, ctx))
	}
	return mapSignError(key.SignWithContext(r, msg, ctx))
}

func (s *mldsaSignature) VerifyWithCtx(msg, sig, ctx, pk []byte) error {
	if len(ctx) != 0 && !s.alg.SigWithCtxSupport {
		return ErrContextNotSupported
	}
	if len(sig) != s.alg.SignatureSize {
		return ErrInvalidLength
	}
	key, err := s.publicKey(pk)
	if err != nil {
		return err
	}
	if !key.Verify(sig, msg, ctx) {
		return ErrVerification
	}
	return nil
}

func (s *mldsaSignature) SignAttached(msg, ctx, sk []byte, r io.Reader) ([]byte, error) {
	sig, err := s.SignWithCtx(msg, ctx, sk, r)
	if err != nil {
		return nil, err
	}
	return append(sig, msg...), nil
}

func (s *mldsaSignature) Open(sm, ctx, pk []byte) ([]byte, error) {
	if len(ctx) != 0 && !s.alg.SigWithCtxSupport {
		return nil, ErrContextNotSupported
	}
	key, err := s.publicKey(pk)
	if err != nil {
		return nil, err
	}
	msg, err := key.Open(sm, ctx)
	if err != nil {
		return nil, ErrVerification
	}
	return msg, nil
}

func (s *mldsaSignature) PublicFromPrivate(sk []byte) ([]byte, error) {
	key, err := s.privateKey(sk)
	if err != nil {
		return nil, err
	}
	return key.PublicKey().Bytes(), nil
}

// mapSignError replaces the mldsa context sentinel with the hpqc one so
// callers of either layer can match on a single value.
func mapSignError(sig []byte, err error) ([]byte, error) {
	if errors.Is(err, mldsa.ErrContextNotSupported) {
		return nil, ErrContextNotSupported
	}
	return sig, err
}
