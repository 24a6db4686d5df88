package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ordinals"

var (
	ingestBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "ingest_blocks_total",
		Help:      "Count of blocks handed to the indexer.",
	}, []string{"network", "status"})

	ingestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "ingest_duration_seconds",
		Help:      "Duration of indexing and committing one block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	indexedHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "height",
		Help:      "Highest committed block height.",
	}, []string{"network"})

	satRangesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "sat_ranges_written_total",
		Help:      "Count of sat ranges written to outputs.",
	}, []string{"network"})

	outputsTraversed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "outputs_traversed_total",
		Help:      "Count of outputs created by indexed transactions.",
	}, []string{"network"})

	blocksRolledBack = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "blocks_rolled_back_total",
		Help:      "Count of blocks undone by reorgs.",
	}, []string{"network"})
)

// Indexer records ingestion metrics for one network.
type Indexer struct {
	network string
}

func NewIndexer(network string) *Indexer {
	if network == "" {
		network = "unknown"
	}
	return &Indexer{network: network}
}

// ObserveIngest records the outcome and duration of one block.
func (m *Indexer) ObserveIngest(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ingestBlocksTotal.WithLabelValues(m.network, status).Inc()
	ingestDuration.WithLabelValues(m.network, status).Observe(time.Since(started).Seconds())
}

// ObserveCommit records what a committed block wrote.
func (m *Indexer) ObserveCommit(height uint32, satRanges, outputs uint64) {
	indexedHeight.WithLabelValues(m.network).Set(float64(height))
	satRangesWritten.WithLabelValues(m.network).Add(float64(satRanges))
	outputsTraversed.WithLabelValues(m.network).Add(float64(outputs))
}

// ObserveRollback records one undone block.
func (m *Indexer) ObserveRollback(height uint32) {
	blocksRolledBack.WithLabelValues(m.network).Inc()
	if height > 0 {
		indexedHeight.WithLabelValues(m.network).Set(float64(height - 1))
	} else {
		indexedHeight.WithLabelValues(m.network).Set(0)
	}
}
