package mldsa

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"errors"
	"testing"
)

func TestKeySizes(t *testing.T) {
	tests := []struct {
		p            *Parameters
		pk, sk, sig  int
		level        int
		supportsCtxt bool
	}{
		{MLDSA44, 1312, 2560, 2420, 2, true},
		{MLDSA65, 1952, 4032, 3309, 3, true},
		{MLDSA87, 2592, 4896, 4627, 5, true},
		{Dilithium2, 1312, 2528, 2420, 2, false},
		{Dilithium3, 1952, 4000, 3293, 3, false},
		{Dilithium5, 2592, 4864, 4595, 5, false},
	}
	for _, tt := range tests {
		p := tt.p
		if p.PublicKeySize() != tt.pk {
			t.Errorf("%s public key size: got %d, want %d", p.Name(), p.PublicKeySize(), tt.pk)
		}
		if p.PrivateKeySize() != tt.sk {
			t.Errorf("%s private key size: got %d, want %d", p.Name(), p.PrivateKeySize(), tt.sk)
		}
		if p.SignatureSize() != tt.sig {
			t.Errorf("%s signature size: got %d, want %d", p.Name(), p.SignatureSize(), tt.sig)
		}
		if p.NISTLevel() != tt.level {
			t.Errorf("%s NIST level: got %d, want %d", p.Name(), p.NISTLevel(), tt.level)
		}
		if p.SupportsContext() != tt.supportsCtxt {
			t.Errorf("%s SupportsContext: got %v", p.Name(), p.SupportsContext())
		}

		key, err := GenerateKey(p, rand.Reader)
		if err != nil {
			t.Fatalf("%s GenerateKey failed: %v", p.Name(), err)
		}
		if got := len(key.PublicKey().Bytes()); got != tt.pk {
			t.Errorf("%s encoded public key: got %d bytes, want %d", p.Name(), got, tt.pk)
		}
		if got := len(key.Bytes()); got != tt.sk {
			t.Errorf("%s encoded private key: got %d bytes, want %d", p.Name(), got, tt.sk)
		}
	}
}

func TestSignVerify(t *testing.T) {
	for _, p := range ParameterSets() {
		t.Run(p.Name(), func(t *testing.T) {
			key, err := GenerateKey(p, rand.Reader)
			if err != nil {
				t.Fatalf("GenerateKey failed: %v", err)
			}

			message := []byte("hello, world!")
			sig, err := key.SignWithContext(rand.Reader, message, nil)
			if err != nil {
				t.Fatalf("Sign failed: %v", err)
			}
			if len(sig) != p.SignatureSize() {
				t.Errorf("signature size: got %d, want %d", len(sig), p.SignatureSize())
			}

			pk := key.PublicKey()
			if !pk.Verify(sig, message, nil) {
				t.Error("Verify returned false for valid signature")
			}
			if pk.Verify(sig, []byte("wrong message"), nil) {
				t.Error("Verify returned true for wrong message")
			}

			badSig := bytes.Clone(sig)
			badSig[0] ^= 0xFF
			if pk.Verify(badSig, message, nil) {
				t.Error("Verify returned true for corrupted signature")
			}
			if pk.Verify(sig[:len(sig)-1], message, nil) {
				t.Error("Verify returned true for truncated signature")
			}
			if pk.Verify(append(bytes.Clone(sig), 0), message, nil) {
				t.Error("Verify returned true for extended signature")
			}
		})
	}
}

func TestEmptyMessage(t *testing.T) {
	key, err := GenerateKey(MLDSA44, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := key.SignWithContext(rand.Reader, nil, nil)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !key.PublicKey().Verify(sig, []byte{}, nil) {
		t.Error("Verify returned false for empty message")
	}
}

func TestSignVerifyWithContext(t *testing.T) {
	key, err := GenerateKey(MLDSA65, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	message := []byte("hello, world!")
	context := []byte("test context")

	sig, err := key.SignWithContext(rand.Reader, message, context)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	pk := key.PublicKey()
	if !pk.Verify(sig, message, context) {
		t.Error("Verify returned false for valid signature with context")
	}
	if pk.Verify(sig, message, []byte("wrong context")) {
		t.Error("Verify returned true for wrong context")
	}
	if pk.Verify(sig, message, nil) {
		t.Error("Verify returned true for missing context")
	}
}

func TestContextLength(t *testing.T) {
	key, err := GenerateKey(MLDSA44, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("context bounds")

	ctx255 := bytes.Repeat([]byte{'c'}, MaxContextSize)
	sig, err := key.SignWithContext(rand.Reader, message, ctx255)
	if err != nil {
		t.Fatalf("255-byte context rejected: %v", err)
	}
	if !key.PublicKey().Verify(sig, message, ctx255) {
		t.Error("Verify returned false for 255-byte context")
	}

	ctx256 := bytes.Repeat([]byte{'c'}, MaxContextSize+1)
	if _, err := key.SignWithContext(rand.Reader, message, ctx256); !errors.Is(err, ErrContextTooLong) {
		t.Errorf("256-byte context: got %v, want %v", err, ErrContextTooLong)
	}
	if _, err := key.SignDeterministic(message, ctx256); !errors.Is(err, ErrContextTooLong) {
		t.Errorf("256-byte context (deterministic): got %v, want %v", err, ErrContextTooLong)
	}
	if key.PublicKey().Verify(sig, message, ctx256) {
		t.Error("Verify accepted a 256-byte context")
	}
}

func TestLegacyRejectsContext(t *testing.T) {
	key, err := GenerateKey(Dilithium2, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("round 3")

	if _, err := key.SignWithContext(rand.Reader, message, []byte("ctx")); !errors.Is(err, ErrContextNotSupported) {
		t.Errorf("got %v, want %v", err, ErrContextNotSupported)
	}

	sig, err := key.SignWithContext(rand.Reader, message, nil)
	if err != nil {
		t.Fatal(err)
	}
	if key.PublicKey().Verify(sig, message, []byte("ctx")) {
		t.Error("Verify accepted a context for a Dilithium key")
	}
	if !key.PublicKey().Verify(sig, message, nil) {
		t.Error("Verify returned false for valid Dilithium signature")
	}
}

func TestLegacyDomainSeparation(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, SeedSize)
	legacy, err := NewKey(Dilithium2, seed)
	if err != nil {
		t.Fatal(err)
	}
	modern, err := NewKey(MLDSA44, seed)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(legacy.PublicKey().Bytes(), modern.PublicKey().Bytes()) {
		t.Error("Dilithium2 and ML-DSA-44 derived the same public key from one seed")
	}
}

func TestDeterministicSign(t *testing.T) {
	for _, p := range ParameterSets() {
		t.Run(p.Name(), func(t *testing.T) {
			key, err := GenerateKey(p, rand.Reader)
			if err != nil {
				t.Fatal(err)
			}
			message := []byte("deterministic")

			sig1, err := key.SignDeterministic(message, nil)
			if err != nil {
				t.Fatal(err)
			}
			sig2, err := key.SignDeterministic(message, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(sig1, sig2) {
				t.Error("deterministic signatures differ")
			}
			if !key.PublicKey().Verify(sig1, message, nil) {
				t.Error("Verify returned false for deterministic signature")
			}

			sig3, err := key.SignWithContext(rand.Reader, message, nil)
			if err != nil {
				t.Fatal(err)
			}
			if bytes.Equal(sig1, sig3) {
				t.Error("hedged signature equals deterministic signature")
			}
		})
	}
}

func TestSignAttached(t *testing.T) {
	key, err := GenerateKey(MLDSA65, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pk := key.PublicKey()
	message := []byte("attached message")
	context := []byte("app")

	sm, err := key.SignAttached(rand.Reader, message, context)
	if err != nil {
		t.Fatal(err)
	}
	if len(sm) != MLDSA65.SignatureSize()+len(message) {
		t.Errorf("signed message size: got %d", len(sm))
	}

	got, err := pk.Open(sm, context)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(got, message) {
		t.Errorf("Open returned %q, want %q", got, message)
	}

	if _, err := pk.Open(sm, nil); !errors.Is(err, ErrVerification) {
		t.Errorf("Open with wrong context: got %v", err)
	}
	tampered := bytes.Clone(sm)
	tampered[len(tampered)-1] ^= 1
	if _, err := pk.Open(tampered, context); !errors.Is(err, ErrVerification) {
		t.Errorf("Open of tampered message: got %v", err)
	}
	if _, err := pk.Open(sm[:10], context); !errors.Is(err, ErrVerification) {
		t.Errorf("Open of short input: got %v", err)
	}
}

func TestKeyRoundtrip(t *testing.T) {
	for _, p := range ParameterSets() {
		t.Run(p.Name(), func(t *testing.T) {
			key, err := GenerateKey(p, rand.Reader)
			if err != nil {
				t.Fatal(err)
			}

			// Seed roundtrip
			key2, err := NewKey(p, key.Seed())
			if err != nil {
				t.Fatalf("NewKey failed: %v", err)
			}
			if !key.Equal(key2) {
				t.Error("key roundtrip via seed failed")
			}

			// Private key roundtrip recomputes the public key
			skBytes := key.Bytes()
			sk, err := NewPrivateKey(p, skBytes)
			if err != nil {
				t.Fatalf("NewPrivateKey failed: %v", err)
			}
			if !bytes.Equal(sk.Bytes(), skBytes) {
				t.Error("private key roundtrip failed")
			}
			if sk.Seed() != nil {
				t.Error("parsed private key reports a seed")
			}
			if !sk.PublicKey().Equal(key.PublicKey()) {
				t.Error("public key recomputed from private key differs")
			}

			// Public key roundtrip
			pkBytes := key.PublicKey().Bytes()
			pk, err := NewPublicKey(p, pkBytes)
			if err != nil {
				t.Fatalf("NewPublicKey failed: %v", err)
			}
			if !bytes.Equal(pk.Bytes(), pkBytes) {
				t.Error("public key roundtrip failed")
			}

			// A signature from the parsed key verifies under the parsed public key.
			sig, err := sk.SignWithContext(rand.Reader, []byte("msg"), nil)
			if err != nil {
				t.Fatal(err)
			}
			if !pk.Verify(sig, []byte("msg"), nil) {
				t.Error("signature from parsed key did not verify")
			}
		})
	}
}

func TestInvalidEncodings(t *testing.T) {
	if _, err := NewKey(MLDSA44, make([]byte, SeedSize-1)); !errors.Is(err, ErrInvalidSeed) {
		t.Errorf("short seed: got %v", err)
	}
	if _, err := NewPublicKey(MLDSA44, make([]byte, MLDSA44.PublicKeySize()+1)); !errors.Is(err, ErrInvalidPublicKey) {
		t.Errorf("long public key: got %v", err)
	}
	if _, err := NewPrivateKey(MLDSA44, make([]byte, MLDSA44.PrivateKeySize()-1)); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("short private key: got %v", err)
	}

	key, err := GenerateKey(MLDSA44, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sk := key.Bytes()
	// First s1 coefficient encoded as 7, outside [0, 2*eta].
	sk[64+MLDSA44.trSize()] |= 0x07
	if _, err := NewPrivateKey(MLDSA44, sk); !errors.Is(err, ErrInvalidPrivateKey) {
		t.Errorf("out of range eta coefficient: got %v", err)
	}
}

func TestMalformedHint(t *testing.T) {
	key, err := GenerateKey(MLDSA44, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("hint")
	sig, err := key.SignWithContext(rand.Reader, message, nil)
	if err != nil {
		t.Fatal(err)
	}

	bad := bytes.Clone(sig)
	bad[len(bad)-1] = byte(MLDSA44.omega + 1)
	if key.PublicKey().Verify(bad, message, nil) {
		t.Error("Verify accepted a hint count above omega")
	}
}

func TestCryptoSigner(t *testing.T) {
	key, err := GenerateKey(MLDSA87, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var signer crypto.Signer = key
	message := []byte("signer")
	opts := &SignerOpts{Context: []byte("opts")}

	sig, err := signer.Sign(rand.Reader, message, opts)
	if err != nil {
		t.Fatal(err)
	}
	pk, ok := signer.Public().(*PublicKey)
	if !ok {
		t.Fatalf("Public returned %T", signer.Public())
	}
	if !pk.Verify(sig, message, opts.Context) {
		t.Error("Verify returned false for crypto.Signer signature")
	}

	if _, err := signer.Sign(rand.Reader, message, crypto.SHA256); !errors.Is(err, ErrPreHashed) {
		t.Errorf("pre-hashed opts: got %v, want %v", err, ErrPreHashed)
	}
}

func TestPublicKeyEquality(t *testing.T) {
	key1, _ := GenerateKey(MLDSA65, rand.Reader)
	key2, _ := GenerateKey(MLDSA65, rand.Reader)

	if !key1.PublicKey().Equal(key1.PublicKey()) {
		t.Error("Equal returned false for same key")
	}
	if key1.PublicKey().Equal(key2.PublicKey()) {
		t.Error("Equal returned true for different keys")
	}

	other, _ := NewKey(Dilithium3, key1.Seed())
	if key1.Equal(other) {
		t.Error("Equal returned true across parameter sets")
	}
}

func TestPackingIdentity(t *testing.T) {
	var f ringElement
	for i := range f {
		f[i] = fieldReduceOnce(uint32(i*7919) % q)
	}

	// t1 holds 10-bit values.
	var t1 ringElement
	for i := range t1 {
		t1[i] = f[i] & 0x3FF
	}
	if got := unpackT1(packT1(nil, &t1)); got != t1 {
		t.Error("t1 packing roundtrip failed")
	}

	// t0 lies in (-2^12, 2^12].
	var t0 ringElement
	for i := range t0 {
		t0[i] = fieldFromSigned(int32(i%8192) - 4095)
	}
	if got := unpackT0(packT0(nil, &t0)); got != t0 {
		t.Error("t0 packing roundtrip failed")
	}

	for _, eta := range []int{2, 4} {
		var s ringElement
		for i := range s {
			s[i] = fieldFromSigned(int32(i%(2*eta+1)) - int32(eta))
		}
		got, err := unpackEta(packEta(nil, &s, eta), eta)
		if err != nil || got != s {
			t.Errorf("eta=%d packing roundtrip failed: %v", eta, err)
		}
	}

	for _, bits := range []int{17, 19} {
		gamma1 := int32(1) << bits
		var z ringElement
		for i := range z {
			z[i] = fieldFromSigned(int32(i*1021)%(2*gamma1) - gamma1 + 1)
		}
		if got := unpackZ(packZ(nil, &z, bits), bits); got != z {
			t.Errorf("z packing roundtrip failed for gamma1 = 2^%d", bits)
		}
	}
}

func TestDeterministicKeyGen(t *testing.T) {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	key1, _ := NewKey(MLDSA65, seed)
	key2, _ := NewKey(MLDSA65, seed)

	if !bytes.Equal(key1.Bytes(), key2.Bytes()) {
		t.Error("deterministic key generation produced different keys")
	}
}

func benchmarkSign(b *testing.B, p *Parameters) {
	key, _ := GenerateKey(p, rand.Reader)
	message := []byte("benchmark message")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key.SignWithContext(rand.Reader, message, nil)
	}
}

func benchmarkVerify(b *testing.B, p *Parameters) {
	key, _ := GenerateKey(p, rand.Reader)
	message := []byte("benchmark message")
	sig, _ := key.SignWithContext(rand.Reader, message, nil)
	pk := key.PublicKey()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pk.Verify(sig, message, nil)
	}
}

func BenchmarkGenerateKey65(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateKey(MLDSA65, rand.Reader)
	}
}

func BenchmarkSign44(b *testing.B)   { benchmarkSign(b, MLDSA44) }
func BenchmarkSign65(b *testing.B)   { benchmarkSign(b, MLDSA65) }
func BenchmarkSign87(b *testing.B)   { benchmarkSign(b, MLDSA87) }
func BenchmarkVerify44(b *testing.B) { benchmarkVerify(b, MLDSA44) }
func BenchmarkVerify65(b *testing.B) { benchmarkVerify(b, MLDSA65) }
func BenchmarkVerify87(b *testing.B) { benchmarkVerify(b, MLDSA87) }
