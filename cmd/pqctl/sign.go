package main

import (
	"fmt"
	"io"

	"github.com/go-kit/log/level"
	"github.com/katzenpost/hpqc/rand"
	"github.com/spf13/cobra"

	"github.com/KarpelesLab/pqc/internal/envelope"
)

func contextBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}

func newSignCommand(a *app) *cobra.Command {
	var (
		keyPath       string
		in            string
		out           string
		context       string
		deterministic bool
		attached      bool
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a file",
		Long: `Sign a file with a private signature key. By default a detached CBOR
signature is written. With --attached the output is the signature followed by
the message, to be recovered with the open command.

Signatures are hedged with fresh randomness unless --deterministic is given or
the configuration file enables deterministic signing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("deterministic") {
				deterministic = a.cfg.Defaults.Deterministic
			}
			kf, err := readTypedKey(keyPath, kindSign, true)
			if err != nil {
				return err
			}
			s, err := a.signature(kf.name)
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, in)
			if err != nil {
				return err
			}

			var rnd io.Reader
			if !deterministic {
				rnd = rand.Reader
			}
			ctx := contextBytes(context)

			if attached {
				sm, err := s.SignAttached(msg, ctx, kf.raw, rnd)
				if err != nil {
					return err
				}
				return writeOutput(cmd, out, sm)
			}

			sig, err := s.SignWithCtx(msg, ctx, kf.raw, rnd)
			if err != nil {
				return err
			}
			pk, err := s.PublicFromPrivate(kf.raw)
			if err != nil {
				return err
			}
			e := &envelope.Signature{
				Version:   envelope.Version,
				Algorithm: kf.name,
				KeyID:     envelope.NewKeyID(pk),
				Context:   ctx,
				Signature: sig,
			}
			b, err := e.MarshalBinary()
			if err != nil {
				return err
			}
			level.Debug(a.logger).Log("msg", "signed", "algorithm", kf.name, "deterministic", deterministic)
			return writeOutput(cmd, out, b)
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "private key file")
	cmd.Flags().StringVarP(&in, "in", "i", "-", "file to sign, - for standard input")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "signature file, - for standard output")
	cmd.Flags().StringVarP(&context, "context", "c", "", "context string, at most 255 bytes")
	cmd.Flags().BoolVarP(&deterministic, "deterministic", "d", false, "produce a deterministic signature")
	cmd.Flags().BoolVar(&attached, "attached", false, "write the signed message instead of a detached signature")
	cmd.MarkFlagRequired("key")
	return cmd
}

func newVerifyCommand(a *app) *cobra.Command {
	var (
		keyPath string
		in      string
		sigPath string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a detached signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := readTypedKey(keyPath, kindSign, false)
			if err != nil {
				return err
			}
			s, err := a.signature(kf.name)
			if err != nil {
				return err
			}
			b, err := readInput(cmd, sigPath)
			if err != nil {
				return err
			}
			var e envelope.Signature
			if err := e.UnmarshalBinary(b); err != nil {
				return err
			}
			if err := e.Check(kf.name, kf.raw); err != nil {
				return err
			}
			msg, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			if err := s.VerifyWithCtx(msg, e.Signature, e.Context, kf.raw); err != nil {
				return err
			}
			level.Info(a.logger).Log("msg", "signature verified", "algorithm", kf.name)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return err
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "public key file")
	cmd.Flags().StringVarP(&in, "in", "i", "-", "signed file, - for standard input")
	cmd.Flags().StringVarP(&sigPath, "signature", "s", "", "detached signature file")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("signature")
	return cmd
}

func newOpenCommand(a *app) *cobra.Command {
	var (
		keyPath string
		in      string
		out     string
		context string
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Verify an attached signature and extract the message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := readTypedKey(keyPath, kindSign, false)
			if err != nil {
				return err
			}
			s, err := a.signature(kf.name)
			if err != nil {
				return err
			}
			sm, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			msg, err := s.Open(sm, contextBytes(context), kf.raw)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, msg)
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "public key file")
	cmd.Flags().StringVarP(&in, "in", "i", "-", "signed message, - for standard input")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "message file, - for standard output")
	cmd.Flags().StringVarP(&context, "context", "c", "", "context string the message was signed with")
	cmd.MarkFlagRequired("key")
	return cmd
}

// writeOutput writes b to the named file, or standard output for "-".
func writeOutput(cmd *cobra.Command, path string, b []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(b)
		return err
	}
	return writeFile(path, b)
}
