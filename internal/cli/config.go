// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smc.
//
// go-smc is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeremyhahn/go-smc/internal/config"
	"github.com/jeremyhahn/go-smc/internal/sharefile"
	"github.com/jeremyhahn/go-smc/pkg/logging"
	"github.com/jeremyhahn/go-smc/pkg/metrics"
	"github.com/jeremyhahn/go-smc/pkg/rng"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// OutputFormat controls output formatting (json, text)
	OutputFormat string

	// Verbose enables debug logging to stderr
	Verbose bool

	// MetricsFile overrides metrics.path and enables the metrics dump
	MetricsFile string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
	}
}

// session is the per-command state built from the configuration file.
type session struct {
	cfg       *config.Config
	logger    logging.Logger
	random    rng.Source
	closer    io.Closer
	collector *metrics.Collector
	dump      string
}

// open loads the configuration and opens the random source.
func (a *app) open() (*session, error) {
	cfg, err := config.Load(a.opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if a.opts.Verbose {
		cfg.Logging.Level = logging.LevelDebug.String()
	}
	logger, err := cfg.NewLogger(a.stderr)
	if err != nil {
		return nil, err
	}
	random, closer, err := cfg.NewRandom()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, random: random, closer: closer}
	if a.opts.MetricsFile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Path = a.opts.MetricsFile
	}
	if cfg.Metrics.Enabled {
		s.collector = metrics.NewCollector(prometheus.NewRegistry())
		s.dump = cfg.Metrics.Path
	}
	a.printVerbose("config: %s/%s k=%d n=%d", cfg.Scheme.Algorithm, cfg.Scheme.Checking,
		cfg.Scheme.Threshold, cfg.Scheme.TotalShares)
	return s, nil
}

// scheme builds the configured scheme, instrumented when metrics are on.
func (s *session) scheme() (sss.Scheme, error) {
	scheme, err := s.cfg.NewScheme(s.random, s.logger)
	if err != nil {
		return nil, err
	}
	if s.collector != nil {
		scheme = metrics.Instrument(scheme, s.collector)
	}
	return scheme, nil
}

// schemeFor builds the scheme that produced set, overriding the
// configuration with the parameters recorded in the share files.
func (s *session) schemeFor(set sharefile.Set) (sss.Scheme, error) {
	sc := &s.cfg.Scheme
	sc.Algorithm = set.Algorithm
	sc.Threshold = set.Threshold
	sc.TotalShares = set.Total
	sc.Checking = set.Checking
	if sc.Checking == "" {
		sc.Checking = config.CheckingNone
	}
	if set.MAC != "" {
		sc.MAC = set.MAC
	}
	if set.SecurityBits > 0 {
		sc.SecurityBits = set.SecurityBits
	}
	return s.scheme()
}

// newSet starts a share set for the configured scheme.
func (s *session) newSet() sharefile.Set {
	set := sharefile.NewSet(s.cfg.Scheme.Threshold, s.cfg.Scheme.TotalShares)
	set.MAC = s.cfg.Scheme.MAC
	set.SecurityBits = s.cfg.Scheme.SecurityBits
	return set
}

// close writes the metrics dump and releases the random source.
func (s *session) close() error {
	var err error
	if s.dump != "" {
		err = writeMetrics(s.dump, s.collector)
	}
	if cerr := s.closer.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close random source: %w", cerr)
	}
	return err
}
