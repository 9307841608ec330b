// Package metrics instruments the CBS engine with Prometheus counters,
// notified on node creation, node expansion, the conflict each expansion
// branches on, LSIPP invocation, and RRA* node expansion.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder collects CBS-level counters. A nil *Recorder is valid and
// records nothing, so callers that don't care about metrics can omit one.
type Recorder struct {
	nodesCreated     prometheus.Counter
	nodesPopped      prometheus.Counter
	conflictsByType  *prometheus.CounterVec
	lsippInvocations prometheus.Counter
	rraExpansions    prometheus.Counter
}

// New builds a Recorder and, if reg is non-nil, registers its collectors
// against it.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		nodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mapf", Subsystem: "cbs", Name: "nodes_created_total",
			Help: "Constraint tree nodes created.",
		}),
		nodesPopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mapf", Subsystem: "cbs", Name: "nodes_popped_total",
			Help: "Constraint tree nodes popped from the open queue.",
		}),
		conflictsByType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapf", Subsystem: "cbs", Name: "conflicts_total",
			Help: "Conflicts branched on, by classification.",
		}, []string{"type"}),
		lsippInvocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mapf", Subsystem: "lsipp", Name: "invocations_total",
			Help: "Landmark-sequenced SIPP searches performed.",
		}),
		rraExpansions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mapf", Subsystem: "heuristic", Name: "rra_expansions_total",
			Help: "Reverse Resumable A* node expansions performed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.nodesCreated, r.nodesPopped, r.conflictsByType, r.lsippInvocations, r.rraExpansions)
	}
	return r
}

// NewUnregistered returns a Recorder whose counters are live but not
// exposed through any registry — the default for engines that don't need
// to serve /metrics (e.g. in tests), avoiding duplicate-registration
// panics against a shared default registry.
func NewUnregistered() *Recorder {
	return New(nil)
}

func (r *Recorder) RecordNodeCreated() {
	if r != nil {
		r.nodesCreated.Inc()
	}
}

func (r *Recorder) RecordNodePopped() {
	if r != nil {
		r.nodesPopped.Inc()
	}
}

func (r *Recorder) RecordConflict(conflictType string) {
	if r != nil {
		r.conflictsByType.WithLabelValues(conflictType).Inc()
	}
}

func (r *Recorder) RecordLSIPPInvocation() {
	if r != nil {
		r.lsippInvocations.Inc()
	}
}

func (r *Recorder) RecordRRAExpansion() {
	if r != nil {
		r.rraExpansions.Inc()
	}
}
