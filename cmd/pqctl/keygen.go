package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-kit/log/level"
	"github.com/katzenpost/hpqc/rand"
	"github.com/spf13/cobra"

	"github.com/KarpelesLab/pqc/oqs"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAlgorithms(cmd.OutOrStdout())
		},
	}
}

func listAlgorithms(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tVERSION\tLEVEL\tPUBLIC\tSECRET\tCIPHERTEXT\tSIGNATURE\tCONTEXT")
	for _, k := range oqs.KEMs() {
		d := k.Algorithm()
		fmt.Fprintf(w, "kem\t%s\t%s\t%d\t%d\t%d\t%d\t-\t-\n",
			d.Name, d.Version, d.NISTLevel, d.PublicKeySize, d.SecretKeySize, d.CiphertextSize)
	}
	for _, s := range oqs.Signatures() {
		d := s.Algorithm()
		fmt.Fprintf(w, "sign\t%s\t%s\t%d\t%d\t%d\t-\t%d\t%t\n",
			d.Name, d.Version, d.NISTLevel, d.PublicKeySize, d.SecretKeySize, d.SignatureSize, d.SigWithCtxSupport)
	}
	return w.Flush()
}

func newKeygenCommand(a *app) *cobra.Command {
	var (
		alg     string
		keyType string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Long: `Generate a key pair and write it as <out>.<type>_public.pem and
<out>.<type>_private.pem. Without --algorithm the configured default for
--type is used. Existing files are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := a.resolveAlgorithm(alg, keyType)
			if err != nil {
				return err
			}
			return a.generate(kind, name, out)
		},
	}
	cmd.Flags().StringVarP(&alg, "algorithm", "a", "", "algorithm name, see the list command")
	cmd.Flags().StringVarP(&keyType, "type", "t", string(kindSign), "kem or sign, used when --algorithm is not given")
	cmd.Flags().StringVarP(&out, "out", "o", "out", "output keypair name")
	return cmd
}

func (a *app) resolveAlgorithm(alg, keyType string) (keyKind, string, error) {
	if alg == "" {
		switch keyKind(keyType) {
		case kindKEM:
			return kindKEM, a.cfg.Defaults.KEM, nil
		case kindSign:
			return kindSign, a.cfg.Defaults.Signature, nil
		default:
			return "", "", fmt.Errorf("invalid argument: key type must be kem or sign, got %q", keyType)
		}
	}
	switch {
	case oqs.IsKEMEnabled(alg):
		return kindKEM, alg, nil
	case oqs.IsSigEnabled(alg):
		return kindSign, alg, nil
	}
	return "", "", fmt.Errorf("%w: %q", oqs.ErrUnknownAlgorithm, alg)
}

func (a *app) generate(kind keyKind, name, prefix string) error {
	var (
		canonical string
		pk, sk    []byte
	)
	switch kind {
	case kindKEM:
		k, err := a.kem(name)
		if err != nil {
			return err
		}
		canonical = k.Algorithm().Name
		if pk, sk, err = k.Keypair(rand.Reader); err != nil {
			return err
		}
	default:
		s, err := a.signature(name)
		if err != nil {
			return err
		}
		canonical = s.Algorithm().Name
		if pk, sk, err = s.Keypair(rand.Reader); err != nil {
			return err
		}
	}

	pubout, privout := keyPaths(prefix, kind)
	if err := checkNotExist(pubout, privout); err != nil {
		return err
	}
	if err := writePublicKey(pubout, kind, canonical, pk); err != nil {
		return err
	}
	if err := writePrivateKey(privout, kind, canonical, sk); err != nil {
		os.Remove(pubout)
		return err
	}
	level.Info(a.logger).Log("msg", "wrote keypair", "algorithm", canonical, "public", pubout, "private", privout)
	return nil
}

func newPubkeyCommand(a *app) *cobra.Command {
	var (
		keyPath string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Recover the public key from a private key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := readKeyFile(keyPath)
			if err != nil {
				return err
			}
			if !kf.private {
				return fmt.Errorf("%s: expected a private key", keyPath)
			}
			var pk []byte
			switch kf.kind {
			case kindKEM:
				k, err := a.kem(kf.name)
				if err != nil {
					return err
				}
				pk, err = k.PublicFromPrivate(kf.raw)
				if err != nil {
					return err
				}
			default:
				s, err := a.signature(kf.name)
				if err != nil {
					return err
				}
				pk, err = s.PublicFromPrivate(kf.raw)
				if err != nil {
					return err
				}
			}
			if err := writePublicKey(out, kf.kind, kf.name, pk); err != nil {
				return err
			}
			level.Info(a.logger).Log("msg", "wrote public key", "algorithm", kf.name, "public", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "private key file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "public key file to write")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("out")
	return cmd
}
