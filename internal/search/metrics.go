package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lox/hackenbush/internal/surreal"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// metrics exports engine counters. A nil *metrics records nothing.
type metrics struct {
	evaluations *prometheus.CounterVec
	nodes       prometheus.Counter
	terminals   prometheus.Counter
	tableHits   prometheus.Counter
	duration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer, arena *surreal.Arena) *metrics {
	f := promauto.With(reg)
	m := &metrics{
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackenbush",
			Subsystem: "search",
			Name:      "evaluations_total",
			Help:      "Evaluate calls by result",
		}, []string{"result"}),
		nodes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hackenbush",
			Subsystem: "search",
			Name:      "nodes_visited_total",
			Help:      "Positions expanded by the search",
		}),
		terminals: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hackenbush",
			Subsystem: "search",
			Name:      "terminal_nodes_total",
			Help:      "Positions reached with no edges left",
		}),
		tableHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hackenbush",
			Subsystem: "search",
			Name:      "table_hits_total",
			Help:      "Subtrees answered from the transposition table",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hackenbush",
			Subsystem: "search",
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of successful Evaluate calls",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "hackenbush",
		Subsystem: "arena",
		Name:      "values",
		Help:      "Surreal values stored in the arena",
	}, func() float64 { return float64(arena.Len()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "hackenbush",
		Subsystem: "arena",
		Name:      "day",
		Help:      "Most recent generation materialised",
	}, func() float64 { return float64(arena.Day()) })

	// Pre-create both series so they export as zero.
	m.evaluations.WithLabelValues(resultOK)
	m.evaluations.WithLabelValues(resultError)
	return m
}

func (m *metrics) observe(stats Stats, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.evaluations.WithLabelValues(resultError).Inc()
		return
	}
	m.evaluations.WithLabelValues(resultOK).Inc()
	m.nodes.Add(float64(stats.NodesVisited))
	m.terminals.Add(float64(stats.TerminalNodes))
	m.tableHits.Add(float64(stats.TableHits))
	m.duration.Observe(stats.Elapsed.Seconds())
}
