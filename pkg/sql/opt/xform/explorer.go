// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"time"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/util/log"
	"github.com/cockroachdb/cascades/pkg/util/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// ExplorerMetrics counts rule applications, labeled by rule name.
type ExplorerMetrics struct {
	Matches    *prometheus.CounterVec
	Rejections *prometheus.CounterVec
	Candidates *prometheus.CounterVec
}

// NewExplorerMetrics creates the explorer counters in the given registry.
func NewExplorerMetrics(reg *metric.Registry) *ExplorerMetrics {
	return &ExplorerMetrics{
		Matches: reg.CounterVec(metric.Metadata{
			Name: "opt.rule.matches",
			Help: "Number of plan nodes that matched a rule's pattern",
		}, "rule"),
		Rejections: reg.CounterVec(metric.Metadata{
			Name: "opt.rule.rejections",
			Help: "Number of pattern matches rejected by a rule's check",
		}, "rule"),
		Candidates: reg.CounterVec(metric.Metadata{
			Name: "opt.rule.candidates",
			Help: "Number of plans produced by a rule's transform",
		}, "rule"),
	}
}

var candidateLimitLog = log.Every(10 * time.Second)

// Explorer exhaustively applies the enabled rules to every node of a plan and
// to every plan it derives, until no new plans appear or the candidate limit
// is reached. It is a reference driver for tools and tests; a cost-based
// search would instead interleave rule application with costing and pruning.
//
// An Explorer is not safe for concurrent use.
type Explorer struct {
	sc      *SearchContext
	metrics *ExplorerMetrics

	// seen holds the rendering of every plan produced so far, including the
	// input plan.
	seen map[string]struct{}
}

// NewExplorer returns an Explorer. Metrics may be nil.
func NewExplorer(sc *SearchContext, metrics *ExplorerMetrics) *Explorer {
	return &Explorer{sc: sc, metrics: metrics}
}

// Explore returns the distinct plans reachable from p by repeated rule
// application, in the order they were found, not including p itself.
// Assertion failures raised by rules are returned as errors.
func (e *Explorer) Explore(p *memo.Plan) (_ []*memo.Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
			log.Errorf(e.sc.Ctx, "exploration failed: %v", err)
		}
	}()

	limit := e.sc.Settings.maxCandidates()
	e.seen = map[string]struct{}{p.String(): {}}
	var res []*memo.Plan
	queue := []*memo.Plan{p}
	for len(queue) > 0 && len(res) < limit {
		next := queue[0]
		queue = queue[1:]
		for _, alt := range e.expand(next) {
			key := alt.String()
			if _, ok := e.seen[key]; ok {
				continue
			}
			e.seen[key] = struct{}{}
			res = append(res, alt)
			queue = append(queue, alt)
			if len(res) >= limit {
				if candidateLimitLog.ShouldLog() {
					log.Warningf(e.sc.Ctx, "exploration stopped at %d candidates", limit)
				}
				break
			}
		}
	}
	log.VEventf(e.sc.Ctx, 1, "explored %d candidates", len(res))
	return res, nil
}

// ApplyRule applies a single rule at every node of p, without recursing into
// the results. It returns the rewritten plans.
func (e *Explorer) ApplyRule(r Rule, p *memo.Plan) (_ []*memo.Plan, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = opt.CatchOptimizerError(rec)
			log.Errorf(e.sc.Ctx, "applying %s failed: %v", r.Name(), err)
		}
	}()
	res := e.expandWith([]Rule{r}, p)
	if log.ExpensiveLogEnabled(e.sc.Ctx, 2) {
		for i, alt := range res {
			log.VEventf(e.sc.Ctx, 2, "candidate %d:\n%s", i+1, alt)
		}
	}
	return res, nil
}

// expand returns the plans that differ from p by one rule application at
// some node.
func (e *Explorer) expand(p *memo.Plan) []*memo.Plan {
	return e.expandWith(AllRules(), p)
}

func (e *Explorer) expandWith(rules []Rule, p *memo.Plan) []*memo.Plan {
	var res []*memo.Plan
	for _, r := range rules {
		res = append(res, e.apply(r, p)...)
	}
	for i := 0; i < p.ChildCount(); i++ {
		for _, alt := range e.expandWith(rules, p.Input(i)) {
			inputs := p.Inputs()
			inputs[i] = alt
			res = append(res, p.WithInputs(inputs...))
		}
	}
	return res
}

func (e *Explorer) apply(r Rule, p *memo.Plan) []*memo.Plan {
	res, outcome := matchAndApply(r, p, e.sc)
	if e.metrics != nil {
		name := r.Name().String()
		switch outcome {
		case ruleRejected:
			e.metrics.Matches.WithLabelValues(name).Inc()
			e.metrics.Rejections.WithLabelValues(name).Inc()
		case ruleApplied:
			e.metrics.Matches.WithLabelValues(name).Inc()
			e.metrics.Candidates.WithLabelValues(name).Add(float64(len(res)))
		}
	}
	return res
}
