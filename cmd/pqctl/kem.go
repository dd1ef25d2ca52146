package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/katzenpost/hpqc/rand"
	"github.com/spf13/cobra"

	"github.com/KarpelesLab/pqc/internal/envelope"
)

func newEncapsCommand(a *app) *cobra.Command {
	var (
		keyPath string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "encaps",
		Short: "Encapsulate a fresh shared secret to a KEM public key",
		Long: `Encapsulate a fresh shared secret to the holder of a KEM public key. The
ciphertext is written as a CBOR capsule and the shared secret is printed in
hex on standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := readTypedKey(keyPath, kindKEM, false)
			if err != nil {
				return err
			}
			k, err := a.kem(kf.name)
			if err != nil {
				return err
			}
			ct, ss, err := k.Encaps(kf.raw, rand.Reader)
			if err != nil {
				return err
			}
			c := &envelope.Capsule{
				Version:    envelope.Version,
				Algorithm:  kf.name,
				KeyID:      envelope.NewKeyID(kf.raw),
				Ciphertext: ct,
			}
			b, err := c.MarshalBinary()
			if err != nil {
				return err
			}
			if err := writeFile(out, b); err != nil {
				return err
			}
			level.Debug(a.logger).Log("msg", "wrote capsule", "algorithm", kf.name, "out", out)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ss))
			return err
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "recipient public key file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "capsule file to write")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newDecapsCommand(a *app) *cobra.Command {
	var (
		keyPath string
		in      string
	)
	cmd := &cobra.Command{
		Use:   "decaps",
		Short: "Recover the shared secret from a capsule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := readTypedKey(keyPath, kindKEM, true)
			if err != nil {
				return err
			}
			k, err := a.kem(kf.name)
			if err != nil {
				return err
			}
			pk, err := k.PublicFromPrivate(kf.raw)
			if err != nil {
				return err
			}

			b, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			var c envelope.Capsule
			if err := c.UnmarshalBinary(b); err != nil {
				return err
			}
			if err := c.Check(kf.name, pk); err != nil {
				return err
			}
			ss, err := k.Decaps(c.Ciphertext, kf.raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ss))
			return err
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "private key file")
	cmd.Flags().StringVarP(&in, "in", "i", "-", "capsule file, - for standard input")
	cmd.MarkFlagRequired("key")
	return cmd
}

// readInput reads the named file, or standard input for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func writeFile(path string, b []byte) error {
	return os.WriteFile(path, b, 0644)
}
