package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KarpelesLab/pqc/internal/envelope"
	"github.com/KarpelesLab/pqc/oqs"
)

func run(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, nil, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestList(t *testing.T) {
	out := mustRun(t, "list")
	for _, name := range []string{"ML-KEM-512", "ML-KEM-1024", "ML-DSA-65", "Dilithium5", "FIPS204"} {
		require.Contains(t, out, name)
	}
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1+len(oqs.KEMs())+len(oqs.Signatures()))
}

func TestKEM(t *testing.T) {
	dir := t.TempDir()
	bob := filepath.Join(dir, "bob")
	carol := filepath.Join(dir, "carol")
	capsule := filepath.Join(dir, "capsule.cbor")

	mustRun(t, "--log-level", "debug", "keygen", "-a", "ml-kem-512", "-o", bob)
	mustRun(t, "keygen", "-t", "kem", "-o", carol)
	require.FileExists(t, bob+".kem_public.pem")
	require.FileExists(t, bob+".kem_private.pem")

	pem, err := os.ReadFile(carol + ".kem_public.pem")
	require.NoError(t, err)
	require.Contains(t, string(pem), "ML-KEM-768 PUBLIC KEY")

	ss := mustRun(t, "encaps", "-k", bob+".kem_public.pem", "-o", capsule)
	require.Len(t, strings.TrimSpace(ss), 64)

	got := mustRun(t, "decaps", "-k", bob+".kem_private.pem", "-i", capsule)
	require.Equal(t, ss, got)

	_, err = run(t, nil, "decaps", "-k", carol+".kem_private.pem", "-i", capsule)
	require.ErrorIs(t, err, envelope.ErrAlgorithm)

	dave := filepath.Join(dir, "dave")
	capsule2 := filepath.Join(dir, "capsule2.cbor")
	mustRun(t, "keygen", "-a", "ML-KEM-512", "-o", dave)
	mustRun(t, "encaps", "-k", dave+".kem_public.pem", "-o", capsule2)
	_, err = run(t, nil, "decaps", "-k", bob+".kem_private.pem", "-i", capsule2)
	require.ErrorIs(t, err, envelope.ErrKeyID)

	// Keys of the wrong kind or visibility are refused.
	_, err = run(t, nil, "encaps", "-k", bob+".kem_private.pem", "-o", capsule)
	require.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	dir := t.TempDir()
	alice := filepath.Join(dir, "alice")
	msgPath := filepath.Join(dir, "msg.txt")
	sigPath := filepath.Join(dir, "msg.sig")
	require.NoError(t, os.WriteFile(msgPath, []byte("attack at dawn"), 0600))

	mustRun(t, "keygen", "-a", "ML-DSA-44", "-o", alice)
	mustRun(t, "sign", "-k", alice+".sign_private.pem", "-i", msgPath, "-o", sigPath, "-c", "example")

	out := mustRun(t, "verify", "-k", alice+".sign_public.pem", "-i", msgPath, "-s", sigPath)
	require.Equal(t, "OK\n", out)

	b, err := os.ReadFile(sigPath)
	require.NoError(t, err)
	var e envelope.Signature
	require.NoError(t, e.UnmarshalBinary(b))
	require.Equal(t, "ML-DSA-44", e.Algorithm)
	require.Equal(t, []byte("example"), e.Context)

	_, err = run(t, []byte("attack at dusk"), "verify", "-k", alice+".sign_public.pem", "-s", sigPath)
	require.ErrorIs(t, err, oqs.ErrVerification)

	_, err = run(t, nil, "sign", "-k", alice+".sign_private.pem", "-i", msgPath, "-o", sigPath,
		"-c", strings.Repeat("x", 256))
	require.Error(t, err)
}

func TestSignLegacyContext(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "legacy")
	msgPath := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("hello"), 0600))

	mustRun(t, "keygen", "-a", "Dilithium2", "-o", key)
	_, err := run(t, nil, "sign", "-k", key+".sign_private.pem", "-i", msgPath, "-o", filepath.Join(dir, "sig"), "-c", "ctx")
	require.ErrorIs(t, err, oqs.ErrContextNotSupported)

	sig := filepath.Join(dir, "ok.sig")
	mustRun(t, "sign", "-k", key+".sign_private.pem", "-i", msgPath, "-o", sig)
	mustRun(t, "verify", "-k", key+".sign_public.pem", "-i", msgPath, "-s", sig)
}

func TestAttached(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "k")
	sm := filepath.Join(dir, "signed")
	msg := []byte("an attached message")

	mustRun(t, "keygen", "-a", "ML-DSA-65", "-o", key)
	_, err := run(t, msg, "sign", "--attached", "-k", key+".sign_private.pem", "-o", sm, "-c", "ctx")
	require.NoError(t, err)

	out := mustRun(t, "open", "-k", key+".sign_public.pem", "-i", sm, "-c", "ctx")
	require.Equal(t, string(msg), out)

	_, err = run(t, nil, "open", "-k", key+".sign_public.pem", "-i", sm)
	require.Error(t, err)
}

func TestPubkey(t *testing.T) {
	for _, alg := range []string{"ML-KEM-1024", "ML-DSA-87"} {
		t.Run(alg, func(t *testing.T) {
			dir := t.TempDir()
			prefix := filepath.Join(dir, "k")
			mustRun(t, "keygen", "-a", alg, "-o", prefix)

			kind := kindSign
			if oqs.IsKEMEnabled(alg) {
				kind = kindKEM
			}
			pub, priv := keyPaths(prefix, kind)
			recovered := filepath.Join(dir, "recovered.pem")
			mustRun(t, "pubkey", "-k", priv, "-o", recovered)

			want, err := os.ReadFile(pub)
			require.NoError(t, err)
			got, err := os.ReadFile(recovered)
			require.NoError(t, err)
			require.Equal(t, want, got)

			_, err = run(t, nil, "pubkey", "-k", pub, "-o", filepath.Join(dir, "again.pem"))
			require.Error(t, err)
		})
	}
}

func TestKeygenErrors(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "k")
	mustRun(t, "keygen", "-o", prefix)

	_, err := run(t, nil, "keygen", "-o", prefix)
	require.ErrorIs(t, err, errOneKeyExists)

	_, err = run(t, nil, "keygen", "-a", "Falcon-512", "-o", prefix+"2")
	require.ErrorIs(t, err, oqs.ErrUnknownAlgorithm)

	_, err = run(t, nil, "keygen", "-t", "nike", "-o", prefix+"3")
	require.Error(t, err)
}

func TestDeterministicConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pqctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[Logging]
  Disable = true

[Defaults]
  Signature = "ML-DSA-44"
  Deterministic = true
`), 0600))

	key := filepath.Join(dir, "k")
	mustRun(t, "-f", cfgPath, "keygen", "-o", key)

	sig1 := mustRun(t, "-f", cfgPath, "sign", "-k", key+".sign_private.pem", "-i", cfgPath)
	sig2 := mustRun(t, "-f", cfgPath, "sign", "-k", key+".sign_private.pem", "-i", cfgPath)
	require.Equal(t, sig1, sig2)

	sig3 := mustRun(t, "-f", cfgPath, "sign", "--deterministic=false", "-k", key+".sign_private.pem", "-i", cfgPath)
	require.NotEqual(t, sig1, sig3)

	_, err := run(t, nil, "-f", filepath.Join(dir, "missing.toml"), "list")
	require.Error(t, err)
}

func TestBench(t *testing.T) {
	out := mustRun(t, "--metrics", "127.0.0.1:0", "bench", "-a", "ML-KEM-512", "-d", "1ms")
	require.Contains(t, out, "encaps")
	require.Contains(t, out, "decaps")

	out = mustRun(t, "bench", "-a", "ML-DSA-44", "-d", "1ms")
	require.Contains(t, out, "verify")
}
