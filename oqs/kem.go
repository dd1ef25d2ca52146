package oqs

import (
	"fmt"
	"io"

	"github.com/katzenpost/hpqc/rand"

	"github.com/KarpelesLab/pqc/mlkem"
)

type mlkemKEM struct {
	p   *mlkem.Parameters
	alg Algorithm
}

var _ KEM = (*mlkemKEM)(nil)

func newMLKEM(p *mlkem.Parameters) *mlkemKEM {
	return &mlkemKEM{
		p: p,
		alg: Algorithm{
			Name:             p.Name(),
			Version:          "FIPS203",
			NISTLevel:        p.NISTLevel(),
			INDCCA:           true,
			PublicKeySize:    p.EncapsulationKeySize(),
			SecretKeySize:    p.DecapsulationKeySize(),
			CiphertextSize:   p.CiphertextSize(),
			SharedSecretSize: mlkem.SharedKeySize,
			SeedSize:         mlkem.SeedSize,
			Backend:          Backend,
		},
	}
}

func (k *mlkemKEM) Algorithm() Algorithm { return k.alg }

func (k *mlkemKEM) Keypair(r io.Reader) (pk, sk []byte, err error) {
	if r == nil {
		r = rand.Reader
	}
	dk, err := mlkem.GenerateKey(k.p, r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s keypair: %w", k.alg.Name, err)
	}
	return dk.EncapsulationKey().Bytes(), dk.Bytes(), nil
}

func (k *mlkemKEM) KeypairDerand(seed []byte) (pk, sk []byte, err error) {
	if len(seed) != k.alg.SeedSize {
		return nil, nil, ErrInvalidLength
	}
	dk, err := mlkem.NewDecapsulationKeyFromSeed(k.p, seed)
	if err != nil {
		return nil, nil, err
	}
	return dk.EncapsulationKey().Bytes(), dk.Bytes(), nil
}

func (k *mlkemKEM) encapsulationKey(pk []byte) (*mlkem.EncapsulationKey, error) {
	if len(pk) != k.alg.PublicKeySize {
		return nil, ErrInvalidLength
	}
	return mlkem.NewEncapsulationKey(k.p, pk)
}

func (k *mlkemKEM) Encaps(pk []byte, r io.Reader) (ct, ss []byte, err error) {
	ek, err := k.encapsulationKey(pk)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		r = rand.Reader
	}
	return ek.Encapsulate(r)
}

func (k *mlkemKEM) EncapsDerand(pk, m []byte) (ct, ss []byte, err error) {
	if len(m) != mlkem.MessageSize {
		return nil, nil, ErrInvalidLength
	}
	ek, err := k.encapsulationKey(pk)
	if err != nil {
		return nil, nil, err
	}
	return ek.EncapsulateDerand(m)
}

func (k *mlkemKEM) Decaps(ct, sk []byte) ([]byte, error) {
	if len(ct) != k.alg.CiphertextSize || len(sk) != k.alg.SecretKeySize {
		return nil, ErrInvalidLength
	}
	dk, err := mlkem.NewDecapsulationKey(k.p, sk)
	if err != nil {
		return nil, err
	}
	return dk.Decapsulate(ct)
}

func (k *mlkemKEM) PublicFromPrivate(sk []byte) ([]byte, error) {
	if len(sk) != k.alg.SecretKeySize {
		return nil, ErrInvalidLength
	}
	dk, err := mlkem.NewDecapsulationKey(k.p, sk)
	if err != nil {
		return nil, err
	}
	return dk.EncapsulationKey().Bytes(), nil
}
