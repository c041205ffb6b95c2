// Package metrics exposes Prometheus counters and gauges over the
// engine's instruction surface. github.com/prometheus/client_golang is
// declared in the teacher's go.mod but never actually imported there;
// this package is its first real use, following the idiomatic
// promauto + CounterVec/GaugeVec pattern used across the Go ecosystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "solanid"

// Registry collects every metric this engine instance exports. A zero
// Registry is not usable; construct with NewRegistry.
type Registry struct {
	SubmitsTotal       prometheus.Counter
	RevokesTotal       prometheus.Counter
	RejectionsByCode   *prometheus.CounterVec
	RotationsTotal     prometheus.Counter
	TotalVerifiedUsers prometheus.Gauge
}

// NewRegistry constructs and registers every metric against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		SubmitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Accepted submit_proof instructions.",
		}),
		RevokesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revokes_total",
			Help:      "Accepted revoke_proof instructions.",
		}),
		RejectionsByCode: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected instructions, labeled by engine error code.",
		}, []string{"code"}),
		RotationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifier_rotations_total",
			Help:      "Completed finalize_verifier_rotation calls.",
		}),
		TotalVerifiedUsers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_verified_users",
			Help:      "Current registry.total_verified_users value.",
		}),
	}
}

// ObserveError increments the rejection counter for code. Callers pass
// the *engine.EngineError's Code() string.
func (r *Registry) ObserveError(code string) {
	r.RejectionsByCode.WithLabelValues(code).Inc()
}
