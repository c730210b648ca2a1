// Package metrics exposes builder activity as Prometheus metrics through lifecycle hooks.
package metrics

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the builder metrics and the hooks that feed them.
type Collector struct {
	mutations  *prometheus.CounterVec
	drags      *prometheus.CounterVec
	selections prometheus.Counter
	publishes  prometheus.Counter
	elements   *prometheus.GaugeVec
	version    *prometheus.GaugeVec
}

// New creates the collector and registers its metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_mutations_total",
				Help: "Mutations issued against a document, by operation and result",
			},
			[]string{"op", "result"},
		),
		drags: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_drag_gestures_total",
				Help: "Completed drag gestures, by outcome",
			},
			[]string{"outcome"},
		),
		selections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_selection_changes_total",
			Help: "Times the selected element changed",
		}),
		publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_snapshots_published_total",
			Help: "Snapshots handed to the publisher",
		}),
		elements: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lattice_document_elements",
				Help: "Elements in the document of each session",
			},
			[]string{"session_id"},
		),
		version: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lattice_document_version",
				Help: "Last published document version of each session",
			},
			[]string{"session_id"},
		),
	}
	reg.MustRegister(c.mutations, c.drags, c.selections, c.publishes, c.elements, c.version)
	return c
}

// Hooks returns lifecycle hooks recording into c. Existing hooks in next still run.
func (c *Collector) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(ctx context.Context, e *domain.MutationEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			} else {
				c.elements.WithLabelValues(e.SessionID).Set(float64(e.NodeCount))
			}
			c.mutations.WithLabelValues(e.Op, result).Inc()
			if next.OnMutation != nil {
				next.OnMutation(ctx, e)
			}
		},
		OnSelection: func(ctx context.Context, e *domain.SelectionEvent) {
			c.selections.Inc()
			if next.OnSelection != nil {
				next.OnSelection(ctx, e)
			}
		},
		OnDrag: func(ctx context.Context, e *domain.DragEvent) {
			c.drags.WithLabelValues(string(e.Outcome)).Inc()
			if next.OnDrag != nil {
				next.OnDrag(ctx, e)
			}
		},
		OnPublish: func(ctx context.Context, s *domain.Snapshot) {
			c.publishes.Inc()
			c.version.WithLabelValues(s.SessionID).Set(float64(s.Version))
			if next.OnPublish != nil {
				next.OnPublish(ctx, s)
			}
		},
	}
}

// Forget drops the per-session series of sessionID.
func (c *Collector) Forget(sessionID string) {
	c.elements.DeleteLabelValues(sessionID)
	c.version.DeleteLabelValues(sessionID)
}
