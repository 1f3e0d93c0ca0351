// Package metrics exports scan results for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yairfalse/corestab/pkg/stability"
)

const namespace = "corestab"

// Exporter holds the gauges of one scan on a private registry
type Exporter struct {
	registry *prometheus.Registry

	coreEvents   *prometheus.GaugeVec
	coreBoots    *prometheus.GaugeVec
	bootsScanned prometheus.Gauge
	bootsFailed  prometheus.Gauge
	bootsPartial prometheus.Gauge
	lastScan     prometheus.Gauge
}

// NewExporter creates an exporter with its metrics registered
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		coreEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "core_instability_events",
			Help:      "Kernel faults attributed to a core across the scanned boots",
		}, []string{"socket", "core"}),
		coreBoots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "core_unstable_boots",
			Help:      "Number of scanned boots with at least one fault on the core",
		}, []string{"socket", "core"}),
		bootsScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boots_scanned",
			Help:      "Boots whose kernel log was read",
		}),
		bootsFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boots_failed",
			Help:      "Boots whose kernel log could not be read",
		}),
		bootsPartial: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boots_partial",
			Help:      "Boots whose kernel log read failed after some lines were printed",
		}),
		lastScan: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_scan_timestamp_seconds",
			Help:      "Unix time the scan started",
		}),
	}

	e.registry.MustRegister(e.coreEvents, e.coreBoots, e.bootsScanned, e.bootsFailed, e.bootsPartial, e.lastScan)
	return e
}

// Observe replaces the current values with the results of report
func (e *Exporter) Observe(report *stability.Report) {
	e.coreEvents.Reset()
	e.coreBoots.Reset()

	for _, s := range stability.Summarize(report.Records) {
		socket, core := strconv.Itoa(s.Socket), strconv.Itoa(s.Core)
		e.coreEvents.WithLabelValues(socket, core).Set(float64(s.Events))
		e.coreBoots.WithLabelValues(socket, core).Set(float64(len(s.Boots)))
	}

	e.bootsScanned.Set(float64(report.Stats.BootsScanned))
	e.bootsFailed.Set(float64(report.Stats.BootsFailed))
	e.bootsPartial.Set(float64(report.Stats.BootsPartial))
	if !report.StartedAt.IsZero() {
		e.lastScan.Set(float64(report.StartedAt.Unix()))
	}
}

// Gatherer exposes the registry holding the scan's metrics
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// WriteTextfile writes the metrics of report to path in the text exposition format
func WriteTextfile(path string, report *stability.Report) error {
	e := NewExporter()
	e.Observe(report)

	if err := prometheus.WriteToTextfile(path, e.Gatherer()); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
