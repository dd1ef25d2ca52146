// Package mlkem implements ML-KEM (Module-Lattice-Based Key-Encapsulation
// Mechanism) as specified in FIPS 203.
//
// Three parameter sets are provided:
//   - ML-KEM-512: NIST security category 1
//   - ML-KEM-768: NIST security category 3
//   - ML-KEM-1024: NIST security category 5
//
// Basic usage:
//
//	dk, err := mlkem.GenerateKey(mlkem.MLKEM768, rand.Reader)
//	if err != nil {
//	    // handle error
//	}
//	ct, shared, err := dk.EncapsulationKey().Encapsulate(rand.Reader)
//	if err != nil {
//	    // handle error
//	}
//	recovered, err := dk.Decapsulate(ct)
//
// Decapsulation of a well-formed but inauthentic ciphertext is not an error:
// it returns a pseudorandom shared secret derived from the implicit rejection
// seed and the ciphertext.
package mlkem

// Global ML-KEM constants from FIPS 203.
const (
	// n is the number of coefficients in polynomials.
	n = 256

	// q is the modulus: q = 2^8 * 13 + 1 = 3329
	q = 3329

	// SharedKeySize is the size of the shared secret.
	SharedKeySize = 32

	// SeedSize is the size of the d || z seed of a decapsulation key.
	SeedSize = 64

	// MessageSize is the size of the randomness consumed by encapsulation.
	MessageSize = 32
)

// Parameters describes one ML-KEM parameter set.
type Parameters struct {
	name string
	k    int
	eta1 int
	eta2 int
	du   uint8
	dv   uint8
}

// The ML-KEM parameter sets of FIPS 203 Table 2.
var (
	MLKEM512  = &Parameters{name: "ML-KEM-512", k: 2, eta1: 3, eta2: 2, du: 10, dv: 4}
	MLKEM768  = &Parameters{name: "ML-KEM-768", k: 3, eta1: 2, eta2: 2, du: 10, dv: 4}
	MLKEM1024 = &Parameters{name: "ML-KEM-1024", k: 4, eta1: 2, eta2: 2, du: 11, dv: 5}
)

// ParameterSets lists all supported parameter sets in order of strength.
func ParameterSets() []*Parameters {
	return []*Parameters{MLKEM512, MLKEM768, MLKEM1024}
}

// Name returns the parameter set name, for example "ML-KEM-768".
func (p *Parameters) Name() string { return p.name }

// EncapsulationKeySize returns the size of an encoded encapsulation key.
func (p *Parameters) EncapsulationKeySize() int {
	return p.k*encodingSize12 + 32
}

// DecapsulationKeySize returns the size of an encoded (expanded)
// decapsulation key: dk_PKE || ek || H(ek) || z.
func (p *Parameters) DecapsulationKeySize() int {
	return p.k*encodingSize12 + p.EncapsulationKeySize() + 32 + 32
}

// CiphertextSize returns the size of a ciphertext.
func (p *Parameters) CiphertextSize() int {
	return p.k*n*int(p.du)/8 + n*int(p.dv)/8
}

// NISTLevel returns the claimed NIST security category.
func (p *Parameters) NISTLevel() int {
	switch p.k {
	case 2:
		return 1
	case 3:
		return 3
	default:
		return 5
	}
}
