// Package config holds the pqctl configuration file format.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	pqclog "github.com/KarpelesLab/pqc/internal/log"
	"github.com/KarpelesLab/pqc/oqs"
)

const (
	defaultLogLevel  = "info"
	defaultKEM       = "ML-KEM-768"
	defaultSignature = "ML-DSA-65"
)

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToLower(lCfg.Level)
	switch lvl {
	case "":
		lvl = defaultLogLevel
	case "warning":
		lvl = "warn"
	}
	for _, l := range pqclog.Levels {
		if l == lvl {
			lCfg.Level = lvl
			return nil
		}
	}
	return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
}

// Defaults selects the algorithms used when a command is not told which
// one to use.
type Defaults struct {
	// KEM is the default key encapsulation algorithm name.
	KEM string

	// Signature is the default signature algorithm name.
	Signature string

	// Deterministic makes sign produce deterministic signatures.
	Deterministic bool
}

func (dCfg *Defaults) applyDefaults() {
	if dCfg.KEM == "" {
		dCfg.KEM = defaultKEM
	}
	if dCfg.Signature == "" {
		dCfg.Signature = defaultSignature
	}
}

func (dCfg *Defaults) validate() error {
	if !oqs.IsKEMEnabled(dCfg.KEM) {
		return fmt.Errorf("config: Defaults: KEM '%v' is not a known algorithm", dCfg.KEM)
	}
	if !oqs.IsSigEnabled(dCfg.Signature) {
		return fmt.Errorf("config: Defaults: Signature '%v' is not a known algorithm", dCfg.Signature)
	}
	return nil
}

// Metrics configures the optional prometheus endpoint.
type Metrics struct {
	// Address is the host:port to serve /metrics on. Empty disables it.
	Address string
}

// Config is the top level pqctl configuration.
type Config struct {
	Logging  *Logging
	Defaults *Defaults
	Metrics  *Metrics
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic(err)
	}
	return cfg
}

// FixupAndValidate applies defaults to config entries and validates the
// supplied configuration.
func (cfg *Config) FixupAndValidate() error {
	if cfg.Logging == nil {
		cfg.Logging = &Logging{}
	}
	if cfg.Defaults == nil {
		cfg.Defaults = &Defaults{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{}
	}
	cfg.Defaults.applyDefaults()

	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	return cfg.Defaults.validate()
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	if b == nil {
		return nil, errors.New("config: no nil buffer as config file")
	}

	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
