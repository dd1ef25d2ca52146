package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/go-kit/log/level"
	"github.com/katzenpost/hpqc/rand"
	"github.com/spf13/cobra"

	"github.com/KarpelesLab/pqc/oqs"
)

type benchResult struct {
	op    string
	count int
	total time.Duration
}

func (r *benchResult) time(f func() error) error {
	start := time.Now()
	err := f()
	r.total += time.Since(start)
	r.count++
	return err
}

func newBenchCommand(a *app) *cobra.Command {
	var (
		alg      string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the speed of an algorithm",
		Long: `Run key generation together with encapsulation and decapsulation, or
signing and verification, in a loop for the given duration and report the mean
time per operation. Combine with --metrics to scrape the operation histograms
while the benchmark runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name, err := a.resolveAlgorithm(alg, "")
			if err != nil {
				return err
			}
			var results []*benchResult
			switch kind {
			case kindKEM:
				k, err := a.kem(name)
				if err != nil {
					return err
				}
				results, err = benchKEM(k, duration)
				if err != nil {
					return err
				}
			default:
				s, err := a.signature(name)
				if err != nil {
					return err
				}
				results, err = benchSignature(s, duration)
				if err != nil {
					return err
				}
			}
			level.Debug(a.logger).Log("msg", "benchmark done", "algorithm", name, "duration", duration)
			return printBench(cmd.OutOrStdout(), name, results)
		},
	}
	cmd.Flags().StringVarP(&alg, "algorithm", "a", "", "algorithm name, see the list command")
	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Second, "how long to run")
	cmd.MarkFlagRequired("algorithm")
	return cmd
}

func benchKEM(k oqs.KEM, d time.Duration) ([]*benchResult, error) {
	keypair := &benchResult{op: "keypair"}
	encaps := &benchResult{op: "encaps"}
	decaps := &benchResult{op: "decaps"}

	for deadline := time.Now().Add(d); time.Now().Before(deadline); {
		var pk, sk, ct []byte
		if err := keypair.time(func() (err error) {
			pk, sk, err = k.Keypair(rand.Reader)
			return
		}); err != nil {
			return nil, err
		}
		if err := encaps.time(func() (err error) {
			ct, _, err = k.Encaps(pk, rand.Reader)
			return
		}); err != nil {
			return nil, err
		}
		if err := decaps.time(func() (err error) {
			_, err = k.Decaps(ct, sk)
			return
		}); err != nil {
			return nil, err
		}
	}
	return []*benchResult{keypair, encaps, decaps}, nil
}

func benchSignature(s oqs.Signature, d time.Duration) ([]*benchResult, error) {
	keypair := &benchResult{op: "keypair"}
	sign := &benchResult{op: "sign"}
	verify := &benchResult{op: "verify"}

	msg := make([]byte, 64)
	for deadline := time.Now().Add(d); time.Now().Before(deadline); {
		var pk, sk, sig []byte
		if err := keypair.time(func() (err error) {
			pk, sk, err = s.Keypair(rand.Reader)
			return
		}); err != nil {
			return nil, err
		}
		if err := sign.time(func() (err error) {
			sig, err = s.Sign(msg, sk, rand.Reader)
			return
		}); err != nil {
			return nil, err
		}
		if err := verify.time(func() error {
			return s.Verify(msg, sig, pk)
		}); err != nil {
			return nil, err
		}
	}
	return []*benchResult{keypair, sign, verify}, nil
}

func printBench(out io.Writer, name string, results []*benchResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\tITERATIONS\tMEAN\tOPS/S\t\n", name)
	for _, r := range results {
		if r.count == 0 {
			fmt.Fprintf(w, "%s\t0\t-\t-\t\n", r.op)
			continue
		}
		mean := r.total / time.Duration(r.count)
		fmt.Fprintf(w, "%s\t%d\t%v\t%.1f\t\n", r.op, r.count, mean, float64(r.count)/r.total.Seconds())
	}
	return w.Flush()
}
