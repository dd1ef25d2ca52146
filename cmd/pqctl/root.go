package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/KarpelesLab/pqc/internal/config"
	pqclog "github.com/KarpelesLab/pqc/internal/log"
	"github.com/KarpelesLab/pqc/oqs"
)

// Flags holds the persistent command line flags.
type Flags struct {
	ConfigFile string
	LogLevel   string
	Metrics    string
}

// app is the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	flags Flags

	cfg     *config.Config
	logger  log.Logger
	reg     *prometheus.Registry
	metrics *oqs.Metrics
	server  *http.Server
}

// newRootCommand creates the root cobra command
func newRootCommand() *cobra.Command {
	a := new(app)

	cmd := &cobra.Command{
		Use:   "pqctl",
		Short: "Post-quantum key encapsulation and signatures",
		Long: `pqctl drives the ML-KEM (FIPS 203) and ML-DSA (FIPS 204) implementations,
as well as the legacy Dilithium round 3 parameter sets.

Keys are stored as PEM files whose block type names the algorithm, so every
command except keygen works out the algorithm from the key it is given.
Ciphertexts and detached signatures are written as small CBOR envelopes that
record the algorithm and the identity of the key they belong to.`,
		Example: `  # List the available algorithms
  pqctl list

  # Generate an ML-DSA-65 key pair as alice.sign_public.pem and
  # alice.sign_private.pem
  pqctl keygen -a ML-DSA-65 -o alice

  # Sign and verify a file
  pqctl sign -k alice.sign_private.pem -i report.pdf -o report.sig
  pqctl verify -k alice.sign_public.pem -i report.pdf -s report.sig

  # Establish a shared secret with the holder of an ML-KEM key
  pqctl encaps -k bob.kem_public.pem -o capsule.cbor
  pqctl decaps -k bob.kem_private.pem -i capsule.cbor`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.flags.ConfigFile, "config", "f", "",
		"path to the configuration file (TOML format)")
	cmd.PersistentFlags().StringVar(&a.flags.LogLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides the config file)")
	cmd.PersistentFlags().StringVar(&a.flags.Metrics, "metrics", "",
		"serve prometheus metrics on this address while the command runs")

	cmd.AddCommand(
		newListCommand(a),
		newKeygenCommand(a),
		newPubkeyCommand(a),
		newEncapsCommand(a),
		newDecapsCommand(a),
		newSignCommand(a),
		newVerifyCommand(a),
		newOpenCommand(a),
		newBenchCommand(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	var err error
	if a.flags.ConfigFile != "" {
		a.cfg, err = config.LoadFile(a.flags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config file '%v': %w", a.flags.ConfigFile, err)
		}
	} else {
		a.cfg = config.Default()
	}
	if a.flags.LogLevel != "" {
		a.cfg.Logging.Level = a.flags.LogLevel
	}
	if a.flags.Metrics != "" {
		a.cfg.Metrics.Address = a.flags.Metrics
	}
	if err = a.cfg.FixupAndValidate(); err != nil {
		return err
	}

	if a.cfg.Logging.Disable {
		a.logger = pqclog.Disabled()
	} else if a.logger, err = pqclog.New(cmd.ErrOrStderr(), a.cfg.Logging.Level); err != nil {
		return err
	}

	a.reg = prometheus.NewRegistry()
	a.metrics = oqs.NewMetrics(a.reg)
	if a.cfg.Metrics.Address != "" {
		return a.serveMetrics(a.cfg.Metrics.Address)
	}
	return nil
}

func (a *app) serveMetrics(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{Registry: a.reg}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := a.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(a.logger).Log("msg", "metrics server failed", "err", err)
		}
	}()
	level.Info(a.logger).Log("msg", "serving metrics", "addr", l.Addr().String())
	return nil
}

func (a *app) shutdown() error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// kem returns the named KEM wrapped with the command's metrics.
func (a *app) kem(name string) (oqs.KEM, error) {
	k, err := oqs.KEMByName(name)
	if err != nil {
		return nil, err
	}
	return a.metrics.InstrumentKEM(k, a.logger), nil
}

// signature returns the named signature scheme wrapped with the command's
// metrics.
func (a *app) signature(name string) (oqs.Signature, error) {
	s, err := oqs.SignatureByName(name)
	if err != nil {
		return nil, err
	}
	return a.metrics.InstrumentSignature(s, a.logger), nil
}
