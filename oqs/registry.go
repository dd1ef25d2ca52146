package oqs

import (
	"fmt"
	"strings"

	"github.com/KarpelesLab/pqc/mldsa"
	"github.com/KarpelesLab/pqc/mlkem"
)

// The registry is populated once in init and never modified afterwards.
var (
	kems       []KEM
	signatures []Signature
	kemIndex   = make(map[string]KEM)
	sigIndex   = make(map[string]Signature)
)

func init() {
	for _, p := range mlkem.ParameterSets() {
		k := newMLKEM(p)
		kems = append(kems, k)
		kemIndex[normalizeName(p.Name())] = k
	}
	for _, p := range mldsa.ParameterSets() {
		s := newMLDSA(p)
		signatures = append(signatures, s)
		sigIndex[normalizeName(p.Name())] = s
	}
}

// normalizeName folds case and ignores dashes and underscores, so
// "ml-kem-768", "ML_KEM_768" and "MLKEM768" all resolve.
func normalizeName(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
}

// KEMByName returns the KEM registered under name.
func KEMByName(name string) (KEM, error) {
	k, ok := kemIndex[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return k, nil
}

// SignatureByName returns the signature scheme registered under name.
func SignatureByName(name string) (Signature, error) {
	s, ok := sigIndex[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return s, nil
}

// KEMs returns every registered KEM in order of strength.
func KEMs() []KEM {
	return append([]KEM(nil), kems...)
}

// Signatures returns every registered signature scheme, ML-DSA first.
func Signatures() []Signature {
	return append([]Signature(nil), signatures...)
}

// IsKEMEnabled reports whether name is a registered KEM.
func IsKEMEnabled(name string) bool {
	_, ok := kemIndex[normalizeName(name)]
	return ok
}

// IsSigEnabled reports whether name is a registered signature scheme.
func IsSigEnabled(name string) bool {
	_, ok := sigIndex[normalizeName(name)]
	return ok
}
