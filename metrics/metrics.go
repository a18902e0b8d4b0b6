// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var RangersCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "rangers",
	Name:      "created_total",
	Help:      "Rangers that passed deck validation and were created.",
})

// BuildRejections counts rejected ranger builds by violated rule code.
var BuildRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "rangers",
	Name:      "build_rejections_total",
	Help:      "Ranger builds rejected by the deck validator, by rule.",
}, []string{"rule"})

var TradesCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "trades",
	Name:      "created_total",
	Help:      "Card trades recorded.",
})

var TradesReverted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "trades",
	Name:      "reverted_total",
	Help:      "Card trades reverted.",
})

var DaysClosed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "campaigns",
	Name:      "days_closed_total",
	Help:      "Campaign days closed.",
})

var CampaignsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "campaigns",
	Name:      "completed_total",
	Help:      "Campaigns completed by closing their final day.",
})

var CampaignsImported = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "campaigns",
	Name:      "imported_total",
	Help:      "Campaigns created from an import document.",
})

// SnapshotsWritten counts archive writes by result ("ok" or "error").
var SnapshotsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tracker",
	Subsystem: "snapshots",
	Name:      "written_total",
	Help:      "Campaign snapshots written to the archive, by result.",
}, []string{"result"})

var SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "tracker",
	Subsystem: "snapshots",
	Name:      "run_duration_seconds",
	Help:      "Wall time of one snapshot run over all active campaigns.",
	Buckets:   prometheus.DefBuckets,
})
