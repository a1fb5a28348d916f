/*
Package metrics provides Prometheus metrics collection and exposition for
a ferrite index.

Metrics are registered once at package init and updated by the Update
Worker and by a periodic Collector that samples an index's StatsSource.
This package never starts an HTTP server itself; Handler returns the
promhttp handler for an embedding process to mount.

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                  │          │
	│  │                                              │          │
	│  │  Dictionary: words/synonyms/documents totals│          │
	│  │  Queue: update queue depth                  │          │
	│  │  Updates: applied count, apply duration,    │          │
	│  │           queue latency                     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

ferrite_words_total{index}, ferrite_synonyms_total{index},
ferrite_documents_total{index}: Gauges sampled periodically by Collector
from an index's StatsSource.

ferrite_update_queue_depth{index}: Gauge, queued-but-unapplied update
count, sampled the same way.

ferrite_updates_total{index, type, result}: Counter incremented by the
Update Worker once per applied update; result is "ok" or "failed".

ferrite_update_apply_duration_seconds{index, type},
ferrite_update_queue_latency_seconds{index, type}: Histograms recorded by
the Update Worker via the Timer helper.

# Usage

	timer := metrics.NewTimer()
	// ... apply one update ...
	timer.ObserveDurationVec(metrics.UpdateApplyDuration, indexName, string(update.Kind))
*/
package metrics
