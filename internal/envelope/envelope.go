// Package envelope defines the CBOR files pqctl writes for detached
// signatures and KEM ciphertexts.
package envelope

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/KarpelesLab/pqc/internal/symmetric"
)

// Version is the envelope format version.
const Version = 1

var (
	ccbor cbor.EncMode
	dcbor cbor.DecMode

	ErrVersion   = errors.New("envelope: unsupported version")
	ErrAlgorithm = errors.New("envelope: algorithm mismatch")
	ErrKeyID     = errors.New("envelope: produced by a different key")
)

// KeyID identifies a public key by the SHA3-256 of its encoding.
type KeyID [32]byte

// NewKeyID returns the identifier of the encoded public key pk.
func NewKeyID(pk []byte) KeyID {
	return KeyID(symmetric.H(pk))
}

// Signature is a detached signature over a file.
type Signature struct {
	Version   int    `cbor:"1,keyasint"`
	Algorithm string `cbor:"2,keyasint"`
	KeyID     KeyID  `cbor:"3,keyasint"`
	Context   []byte `cbor:"4,keyasint,omitempty"`
	Signature []byte `cbor:"5,keyasint"`
}

// Capsule carries a KEM ciphertext for the holder of a given key.
type Capsule struct {
	Version    int    `cbor:"1,keyasint"`
	Algorithm  string `cbor:"2,keyasint"`
	KeyID      KeyID  `cbor:"3,keyasint"`
	Ciphertext []byte `cbor:"4,keyasint"`
}

// The plain types carry the same fields without the BinaryMarshaler
// methods, so the codec encodes them as maps instead of calling back in.
type (
	plainSignature Signature
	plainCapsule   Capsule
)

// MarshalBinary encodes s in canonical CBOR.
func (s *Signature) MarshalBinary() ([]byte, error) {
	return ccbor.Marshal((*plainSignature)(s))
}

// UnmarshalBinary decodes s from CBOR, rejecting unknown versions.
func (s *Signature) UnmarshalBinary(b []byte) error {
	if err := dcbor.Unmarshal(b, (*plainSignature)(s)); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	if s.Version != Version {
		return ErrVersion
	}
	return nil
}

// Check reports whether s was made with algorithm alg by the key pk.
func (s *Signature) Check(alg string, pk []byte) error {
	return check(s.Algorithm, s.KeyID, alg, pk)
}

// MarshalBinary encodes c in canonical CBOR.
func (c *Capsule) MarshalBinary() ([]byte, error) {
	return ccbor.Marshal((*plainCapsule)(c))
}

// UnmarshalBinary decodes c from CBOR, rejecting unknown versions.
func (c *Capsule) UnmarshalBinary(b []byte) error {
	if err := dcbor.Unmarshal(b, (*plainCapsule)(c)); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	if c.Version != Version {
		return ErrVersion
	}
	return nil
}

// Check reports whether c was made for the key pk of algorithm alg.
func (c *Capsule) Check(alg string, pk []byte) error {
	return check(c.Algorithm, c.KeyID, alg, pk)
}

func check(gotAlg string, gotID KeyID, alg string, pk []byte) error {
	if gotAlg != alg {
		return fmt.Errorf("%w: %s, want %s", ErrAlgorithm, gotAlg, alg)
	}
	if gotID != NewKeyID(pk) {
		return ErrKeyID
	}
	return nil
}

func init() {
	var err error
	opts := cbor.CanonicalEncOptions()
	ccbor, err = opts.EncMode()
	if err != nil {
		panic(err)
	}
	dcbor, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}
