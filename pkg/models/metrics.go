package models

// Temporality mirrors the OTLP aggregation temporality enumeration.
type Temporality int32

const (
	TemporalityUnspecified Temporality = iota
	TemporalityDelta
	TemporalityCumulative
)

// MetricType names the data-point kind of a metric.
type MetricType string

const (
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeSum       MetricType = "sum"
	MetricTypeHistogram MetricType = "histogram"
)

// NumberValue is an integer-or-double metric value.
type NumberValue struct {
	Int    int64
	Double float64
	IsInt  bool
}

// NumberDataPoint is one gauge or sum sample.
type NumberDataPoint struct {
	Attributes        []KeyValue
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	Value             NumberValue
}

// HistogramDataPoint is one histogram sample.
type HistogramDataPoint struct {
	Attributes        []KeyValue
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	Count             uint64
	Sum               *float64
	BucketCounts      []uint64
	ExplicitBounds    []float64
	Min               *float64
	Max               *float64
}

// GaugeData holds gauge data points.
type GaugeData struct {
	DataPoints []NumberDataPoint
}

// SumData holds sum data points with their aggregation semantics.
type SumData struct {
	DataPoints  []NumberDataPoint
	Temporality Temporality
	IsMonotonic bool
}

// HistogramData holds histogram data points with their aggregation semantics.
type HistogramData struct {
	DataPoints  []HistogramDataPoint
	Temporality Temporality
}

// Metric is one named series. Exactly one of Gauge, Sum, or Histogram is set.
type Metric struct {
	Name        string
	Description string
	Unit        string
	Gauge       *GaugeData
	Sum         *SumData
	Histogram   *HistogramData
}

// Type returns the data-point kind of the metric, or "" when no data is set.
func (m *Metric) Type() MetricType {
	switch {
	case m.Gauge != nil:
		return MetricTypeGauge
	case m.Sum != nil:
		return MetricTypeSum
	case m.Histogram != nil:
		return MetricTypeHistogram
	default:
		return ""
	}
}

// Temporality returns the aggregation temporality of the metric. Gauges have
// no temporality and report unspecified.
func (m *Metric) Temporality() Temporality {
	switch {
	case m.Sum != nil:
		return m.Sum.Temporality
	case m.Histogram != nil:
		return m.Histogram.Temporality
	default:
		return TemporalityUnspecified
	}
}

// ScopeMetrics groups the metrics produced by one instrumentation scope.
type ScopeMetrics struct {
	Scope   InstrumentationScope
	Metrics []Metric
}

// ResourceMetricsRecord is the canonical in-process representation of one
// resource's metrics for a collection cycle. An empty ScopeMetrics slice is
// valid and means "no data this cycle".
type ResourceMetricsRecord struct {
	Resource     []KeyValue
	ScopeMetrics []ScopeMetrics
}

// DataPointCount returns the total number of data points across all scopes.
func (r *ResourceMetricsRecord) DataPointCount() int {
	var n int

	for i := range r.ScopeMetrics {
		for j := range r.ScopeMetrics[i].Metrics {
			m := &r.ScopeMetrics[i].Metrics[j]
			switch {
			case m.Gauge != nil:
				n += len(m.Gauge.DataPoints)
			case m.Sum != nil:
				n += len(m.Sum.DataPoints)
			case m.Histogram != nil:
				n += len(m.Histogram.DataPoints)
			}
		}
	}

	return n
}
