package mlkem

import (
	"bytes"
	stdmlkem "crypto/mlkem"
	"testing"

	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem512"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/stretchr/testify/require"
)

func TestCirclInterop(t *testing.T) {
	tests := []struct {
		p      *Parameters
		scheme circlkem.Scheme
	}{
		{MLKEM512, mlkem512.Scheme()},
		{MLKEM768, mlkem768.Scheme()},
		{MLKEM1024, mlkem1024.Scheme()},
	}
	for _, tt := range tests {
		t.Run(tt.p.Name(), func(t *testing.T) {
			seed := testSeed(t, 9)
			dk, err := NewDecapsulationKeyFromSeed(tt.p, seed)
			require.NoError(t, err)

			pk, sk := tt.scheme.DeriveKeyPair(seed)
			pkBytes, err := pk.MarshalBinary()
			require.NoError(t, err)
			skBytes, err := sk.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, pkBytes, dk.EncapsulationKey().Bytes())
			require.Equal(t, skBytes, dk.Bytes())

			m := bytes.Repeat([]byte{0xc3}, MessageSize)
			c1, ss1, err := tt.scheme.EncapsulateDeterministically(pk, m)
			require.NoError(t, err)
			c2, ss2, err := dk.EncapsulationKey().EncapsulateDerand(m)
			require.NoError(t, err)
			require.Equal(t, c1, c2)
			require.Equal(t, ss1, ss2)

			got, err := dk.Decapsulate(c1)
			require.NoError(t, err)
			require.Equal(t, ss1, got)

			// Implicit rejection must agree too.
			c1[3] ^= 0x80
			want, err := tt.scheme.Decapsulate(sk, c1)
			require.NoError(t, err)
			got, err = dk.Decapsulate(c1)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestStandardLibraryInterop(t *testing.T) {
	seed := testSeed(t, 10)

	std768, err := stdmlkem.NewDecapsulationKey768(seed)
	require.NoError(t, err)
	dk768, err := NewDecapsulationKeyFromSeed(MLKEM768, seed)
	require.NoError(t, err)
	require.Equal(t, std768.EncapsulationKey().Bytes(), dk768.EncapsulationKey().Bytes())

	ss, c := std768.EncapsulationKey().Encapsulate()
	got, err := dk768.Decapsulate(c)
	require.NoError(t, err)
	require.Equal(t, ss, got)

	c, ss, err = dk768.EncapsulationKey().EncapsulateDerand(bytes.Repeat([]byte{1}, MessageSize))
	require.NoError(t, err)
	got, err = std768.Decapsulate(c)
	require.NoError(t, err)
	require.Equal(t, ss, got)

	std1024, err := stdmlkem.NewDecapsulationKey1024(seed)
	require.NoError(t, err)
	dk1024, err := NewDecapsulationKeyFromSeed(MLKEM1024, seed)
	require.NoError(t, err)
	require.Equal(t, std1024.EncapsulationKey().Bytes(), dk1024.EncapsulationKey().Bytes())

	ss, c = std1024.EncapsulationKey().Encapsulate()
	got, err = dk1024.Decapsulate(c)
	require.NoError(t, err)
	require.Equal(t, ss, got)
}
