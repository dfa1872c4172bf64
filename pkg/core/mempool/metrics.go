// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors this package registers.
// Instrumentation is additive: every method on Mempool also works with a
// nil *Metrics, which is what tests pass.
type Metrics struct {
	HeldSize        prometheus.Gauge
	RejectedSize    prometheus.Gauge
	Accepted        prometheus.Counter
	Rejected        *prometheus.CounterVec
	CrawlRounds     prometheus.Counter
	DownloadLatency prometheus.Histogram
}

// NewMetrics constructs a Metrics and registers every collector with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HeldSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zebra",
			Subsystem: "mempool",
			Name:      "held_transactions",
			Help:      "Number of transactions currently held in the mempool.",
		}),
		RejectedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zebra",
			Subsystem: "mempool",
			Name:      "rejected_ledger_size",
			Help:      "Number of ids currently on the rejection ledger.",
		}),
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zebra",
			Subsystem: "mempool",
			Name:      "accepted_total",
			Help:      "Total number of transactions admitted to the mempool.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zebra",
			Subsystem: "mempool",
			Name:      "rejected_total",
			Help:      "Total number of transactions rejected, by reason.",
		}, []string{"reason"}),
		CrawlRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zebra",
			Subsystem: "mempool",
			Name:      "crawl_rounds_total",
			Help:      "Total number of crawl rounds completed.",
		}),
		DownloadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zebra",
			Subsystem: "mempool",
			Name:      "download_seconds",
			Help:      "Time spent fetching and verifying a downloaded transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.HeldSize, m.RejectedSize, m.Accepted, m.Rejected, m.CrawlRounds, m.DownloadLatency)
	return m
}
