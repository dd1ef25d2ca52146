package main

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	kempem "github.com/katzenpost/hpqc/kem/pem"
	signpem "github.com/katzenpost/hpqc/sign/pem"

	"github.com/KarpelesLab/pqc/oqs"
)

const (
	pemPublicSuffix  = " PUBLIC KEY"
	pemPrivateSuffix = " PRIVATE KEY"
)

type keyKind string

const (
	kindKEM  keyKind = "kem"
	kindSign keyKind = "sign"
)

var errOneKeyExists = errors.New("one of the keys already exists")

// keyFile is a decoded PEM key file.
type keyFile struct {
	kind    keyKind
	name    string
	private bool
	raw     []byte
}

// readKeyFile loads a PEM key written by keygen or pubkey. The algorithm is
// taken from the PEM block type.
func readKeyFile(path string) (*keyFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blk, _ := pem.Decode(b)
	if blk == nil {
		return nil, fmt.Errorf("%s: no PEM data found", path)
	}

	kf := new(keyFile)
	switch {
	case strings.HasSuffix(blk.Type, pemPublicSuffix):
		kf.name = strings.TrimSuffix(blk.Type, pemPublicSuffix)
	case strings.HasSuffix(blk.Type, pemPrivateSuffix):
		kf.name = strings.TrimSuffix(blk.Type, pemPrivateSuffix)
		kf.private = true
	default:
		return nil, fmt.Errorf("%s: unexpected PEM block %q", path, blk.Type)
	}

	if s := oqs.KEMScheme(kf.name); s != nil {
		kf.kind, kf.name = kindKEM, s.Name()
		if kf.private {
			sk, err := kempem.FromPrivatePEMBytes(b, s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			kf.raw, err = sk.MarshalBinary()
			return kf, err
		}
		pk, err := kempem.FromPublicPEMBytes(b, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		kf.raw, err = pk.MarshalBinary()
		return kf, err
	}
	if s := oqs.SignScheme(kf.name); s != nil {
		kf.kind, kf.name = kindSign, s.Name()
		if kf.private {
			sk, err := signpem.FromPrivatePEMBytes(b, s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			kf.raw, err = sk.MarshalBinary()
			return kf, err
		}
		pk, err := signpem.FromPublicPEMBytes(b, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		kf.raw, err = pk.MarshalBinary()
		return kf, err
	}
	return nil, fmt.Errorf("%s: %w: %q", path, oqs.ErrUnknownAlgorithm, kf.name)
}

// readTypedKey loads path and checks that it holds a key of the wanted
// kind and visibility.
func readTypedKey(path string, kind keyKind, private bool) (*keyFile, error) {
	kf, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	if kf.kind != kind {
		return nil, fmt.Errorf("%s: %s is not a %s key", path, kf.name, kind)
	}
	if kf.private != private {
		want := "public"
		if private {
			want = "private"
		}
		return nil, fmt.Errorf("%s: expected a %s key", path, want)
	}
	return kf, nil
}

func keyPaths(prefix string, kind keyKind) (pub, priv string) {
	return fmt.Sprintf("%s.%s_public.pem", prefix, kind), fmt.Sprintf("%s.%s_private.pem", prefix, kind)
}

func checkNotExist(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%w: %s", errOneKeyExists, p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// writePublicKey stores the encoded public key pk of the named algorithm.
func writePublicKey(path string, kind keyKind, name string, pk []byte) error {
	if err := checkNotExist(path); err != nil {
		return err
	}
	switch kind {
	case kindKEM:
		k, err := oqs.KEMScheme(name).UnmarshalBinaryPublicKey(pk)
		if err != nil {
			return err
		}
		return kempem.PublicKeyToFile(path, k)
	default:
		k, err := oqs.SignScheme(name).UnmarshalBinaryPublicKey(pk)
		if err != nil {
			return err
		}
		return signpem.PublicKeyToFile(path, k)
	}
}

// writePrivateKey stores the encoded private key sk of the named algorithm.
func writePrivateKey(path string, kind keyKind, name string, sk []byte) error {
	if err := checkNotExist(path); err != nil {
		return err
	}
	switch kind {
	case kindKEM:
		k, err := oqs.KEMScheme(name).UnmarshalBinaryPrivateKey(sk)
		if err != nil {
			return err
		}
		return kempem.PrivateKeyToFile(path, k)
	default:
		k, err := oqs.SignScheme(name).UnmarshalBinaryPrivateKey(sk)
		if err != nil {
			return err
		}
		return signpem.PrivateKeyToFile(path, k)
	}
}
