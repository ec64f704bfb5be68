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

// Package metrics provides Prometheus instrumentation for secret sharing
// operations: operation counts and latencies, bytes processed, shares
// rejected by information checking and trust warnings.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

const (
	// Namespace is the Prometheus namespace for all metrics.
	Namespace = "smc"

	// Label names
	LabelOperation = "operation"
	LabelAlgorithm = "algorithm"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelWarning   = "warning"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpShare              = "share"
	OpReconstruct        = "reconstruct"
	OpReconstructPartial = "reconstruct_partial"

	// Error types
	ErrorTypeConfiguration  = "configuration"
	ErrorTypeInvariant      = "invariant"
	ErrorTypeReconstruction = "reconstruction"
	ErrorTypeOther          = "other"
)

// Collector holds the metric vectors registered with one registry. A nil
// *Collector records nothing.
type Collector struct {
	registry prometheus.Gatherer

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
	errors     *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	warnings   *prometheus.CounterVec
}

// NewCollector registers the metrics with reg. A nil reg creates a private
// registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "operations_total",
				Help:      "Total number of sharing operations by type, algorithm, and status",
			},
			[]string{LabelOperation, LabelAlgorithm, LabelStatus},
		),
		// Latency buckets cover small secrets through multi-megabyte files.
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of sharing operations in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{LabelOperation, LabelAlgorithm},
		),
		bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bytes_total",
				Help:      "Secret bytes shared or reconstructed",
			},
			[]string{LabelOperation, LabelAlgorithm},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by operation, algorithm, and error type",
			},
			[]string{LabelOperation, LabelAlgorithm, LabelErrorType},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "rejected_shares_total",
				Help:      "Shares discarded by information checking",
			},
			[]string{LabelAlgorithm},
		),
		warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "warnings_total",
				Help:      "Reconstructions returned with a trust warning",
			},
			[]string{LabelAlgorithm, LabelWarning},
		),
	}
}

// RecordOperation records one operation and its duration.
func (c *Collector) RecordOperation(operation, algorithm string, bytes int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
		c.errors.WithLabelValues(operation, algorithm, ErrorType(err)).Inc()
	} else {
		c.bytes.WithLabelValues(operation, algorithm).Add(float64(bytes))
	}
	c.operations.WithLabelValues(operation, algorithm, status).Inc()
	c.duration.WithLabelValues(operation, algorithm).Observe(elapsed.Seconds())
}

// RecordReconstruction records the rejected shares and warnings of r.
func (c *Collector) RecordReconstruction(algorithm string, r *sss.Reconstruction) {
	if c == nil || r == nil {
		return
	}
	if len(r.Rejected) > 0 {
		c.rejected.WithLabelValues(algorithm).Add(float64(len(r.Rejected)))
	}
	for _, w := range r.Warnings {
		c.warnings.WithLabelValues(algorithm, string(w.Code)).Inc()
	}
}

// WriteText writes every gathered metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil {
		return nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ErrorType classifies err for the error_type label.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, sss.ErrConfiguration):
		return ErrorTypeConfiguration
	case errors.Is(err, share.ErrInvariant):
		return ErrorTypeInvariant
	case errors.Is(err, sss.ErrReconstruction):
		return ErrorTypeReconstruction
	default:
		return ErrorTypeOther
	}
}
