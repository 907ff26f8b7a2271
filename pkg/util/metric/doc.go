// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

/*
Package metric provides counters for optimizer components, backed by the
Prometheus client library.

# Adding a new metric

First, describe the metric with a Metadata. Then construct it and add it to a
Registry:

	reg := metric.NewRegistry()
	matches := reg.CounterVec(metric.Metadata{
		Name: "opt.rule.matches",
		Help: "Number of pattern matches per rule",
	}, "rule")

The metric can then be updated as follows:

	matches.WithLabelValues(ruleName.String()).Inc()

# Exporting

A Registry is a prometheus.Gatherer. PrintAsText writes its contents in the
Prometheus text exposition format, which is how the command-line tools
report statistics.

# Testing

Tests can read a counter with testutil.ToFloat64 from
github.com/prometheus/client_golang/prometheus/testutil.
*/
package metric
