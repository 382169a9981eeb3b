// Package metric exposes Prometheus instrumentation for fastrow parsing
// pipelines: throughput counters, error counts by reason, and the streaming
// coordinator's retained-buffer backlog.
package metric

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fastrow/fastrow"
)

// ParserMetrics contains the parser-level metrics.
type ParserMetrics struct {
	RowsParsed    prometheus.Counter
	FieldsParsed  prometheus.Counter
	BytesParsed   prometheus.Counter
	ParseErrors   *prometheus.CounterVec
	StreamBacklog prometheus.Gauge
}

// NewParserMetrics creates a ParserMetrics instance under the given
// namespace ("fastrow" when empty).
func NewParserMetrics(namespace string) *ParserMetrics {
	if namespace == "" {
		namespace = "fastrow"
	}
	return &ParserMetrics{
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "rows_total",
			Help:      "Total number of rows parsed",
		}),
		FieldsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "fields_total",
			Help:      "Total number of fields parsed",
		}),
		BytesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "bytes_total",
			Help:      "Total number of input bytes fed to the parser",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "errors_total",
			Help:      "Total number of structural parse errors by reason",
		}, []string{"reason"}),
		StreamBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "backlog_bytes",
			Help:      "Bytes retained by the streaming coordinator awaiting a row boundary",
		}),
	}
}

// Register registers all metrics with the given registerer.
func (m *ParserMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.RowsParsed,
		m.FieldsParsed,
		m.BytesParsed,
		m.ParseErrors,
		m.StreamBacklog,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRows records a batch of parsed rows.
func (m *ParserMetrics) ObserveRows(rows [][][]byte) {
	if len(rows) == 0 {
		return
	}
	m.RowsParsed.Add(float64(len(rows)))
	fields := 0
	for _, row := range rows {
		fields += len(row)
	}
	m.FieldsParsed.Add(float64(fields))
}

// ObserveBytes records input bytes handed to the parser.
func (m *ParserMetrics) ObserveBytes(n int) {
	m.BytesParsed.Add(float64(n))
}

// ObserveError records a structural parse error under its reason label.
func (m *ParserMetrics) ObserveError(err error) {
	if err == nil {
		return
	}
	m.ParseErrors.WithLabelValues(reasonLabel(err)).Inc()
}

// SetBacklog records the streaming coordinator's retained buffer size.
func (m *ParserMetrics) SetBacklog(n int) {
	m.StreamBacklog.Set(float64(n))
}

// reasonLabel maps a parse error to its metric label.
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, fastrow.ErrUnterminatedEscape):
		return "unterminated_escape"
	case errors.Is(err, fastrow.ErrUnexpectedEscape):
		return "unexpected_escape"
	case errors.Is(err, fastrow.ErrCollectorOverflow):
		return "oom"
	case errors.Is(err, fastrow.ErrBufferLimit):
		return "buffer_limit"
	default:
		return "other"
	}
}
