// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metadata describes a metric.
type Metadata struct {
	// Name uses dots as separators, e.g. "opt.rule.matches". It is exported
	// with underscores.
	Name string
	Help string
}

// exportedName converts a metric name to one accepted by Prometheus.
func exportedName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

// Registry holds a set of metrics. Metrics created through it are registered
// on creation. A Registry is safe for concurrent use.
type Registry struct {
	*prometheus.Registry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{Registry: prometheus.NewRegistry()}
}

// CounterVec creates and registers a counter with the given labels.
func (r *Registry) CounterVec(md Metadata, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: exportedName(md.Name),
		Help: md.Help,
	}, labels)
	r.MustRegister(c)
	return c
}

// PrintAsText writes all metrics gathered from g in Prometheus' text format.
func PrintAsText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
