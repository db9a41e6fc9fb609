package transfer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsCollector exposes the context statistics as Prometheus metrics.
// Register it with a prometheus.Registerer; collection reads the atomic
// counters and never blocks writers.
type StatsCollector struct {
	ctx *Context

	bytesWritten    *prometheus.Desc
	filesCreated    *prometheus.Desc
	writeErrors     *prometheus.Desc
	bufferOverflows *prometheus.Desc
	lastWriteTime   *prometheus.Desc
	status          *prometheus.Desc
}

// NewStatsCollector creates a collector over the given context. namespace
// prefixes every metric name; empty defaults to "transfer".
func NewStatsCollector(ctx *Context, namespace string) *StatsCollector {
	if namespace == "" {
		namespace = "transfer"
	}
	return &StatsCollector{
		ctx: ctx,
		bytesWritten: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "bytes_written_total"),
			"Total bytes persisted to the output volume", nil, nil),
		filesCreated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "files_created_total"),
			"Total output files created, including rotations", nil, nil),
		writeErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "write_errors_total"),
			"Total failed persist calls", nil, nil),
		bufferOverflows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "buffer_overflows_total"),
			"Total records rejected because they could not fit the buffer", nil, nil),
		lastWriteTime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_write_timestamp_seconds"),
			"Unix time of the last successful persist", nil, nil),
		status: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "status"),
			"Current context status", []string{"status"}, nil),
	}
}

func (s *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.bytesWritten
	ch <- s.filesCreated
	ch <- s.writeErrors
	ch <- s.bufferOverflows
	ch <- s.lastWriteTime
	ch <- s.status
}

func (s *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	snap := s.ctx.Stats()

	ch <- prometheus.MustNewConstMetric(s.bytesWritten,
		prometheus.CounterValue, float64(snap.TotalBytesWritten))
	ch <- prometheus.MustNewConstMetric(s.filesCreated,
		prometheus.CounterValue, float64(snap.TotalFilesCreated))
	ch <- prometheus.MustNewConstMetric(s.writeErrors,
		prometheus.CounterValue, float64(snap.WriteErrors))
	ch <- prometheus.MustNewConstMetric(s.bufferOverflows,
		prometheus.CounterValue, float64(snap.BufferOverflows))
	ch <- prometheus.MustNewConstMetric(s.lastWriteTime,
		prometheus.GaugeValue, float64(snap.LastWriteTime))
	ch <- prometheus.MustNewConstMetric(s.status,
		prometheus.GaugeValue, float64(snap.Status), snap.Status.String())
}
