package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDIsEmpty(t *testing.T) {
	assert.True(t, SpanID{}.IsEmpty())
	assert.True(t, TraceID{}.IsEmpty())
	assert.False(t, SpanID{1}.IsEmpty())
	assert.False(t, TraceID{0, 0, 0, 1}.IsEmpty())
}

func TestAttributeValueConstructors(t *testing.T) {
	assert.Equal(t, AttributeValue{Type: AttributeTypeString, Str: "x"}, StringValue("x"))
	assert.Equal(t, AttributeValue{Type: AttributeTypeInt, Int: 7}, IntValue(7))
	assert.Equal(t, AttributeValue{Type: AttributeTypeDouble, Double: 1.5}, DoubleValue(1.5))
	assert.Equal(t, AttributeValue{Type: AttributeTypeBool, Bool: true}, BoolValue(true))
}

func TestMetricTypeAndTemporality(t *testing.T) {
	gauge := Metric{Gauge: &GaugeData{}}
	assert.Equal(t, MetricTypeGauge, gauge.Type())
	assert.Equal(t, TemporalityUnspecified, gauge.Temporality())

	sum := Metric{Sum: &SumData{Temporality: TemporalityDelta}}
	assert.Equal(t, MetricTypeSum, sum.Type())
	assert.Equal(t, TemporalityDelta, sum.Temporality())

	hist := Metric{Histogram: &HistogramData{Temporality: TemporalityCumulative}}
	assert.Equal(t, MetricTypeHistogram, hist.Type())
	assert.Equal(t, TemporalityCumulative, hist.Temporality())

	var empty Metric

	assert.Equal(t, MetricType(""), empty.Type())
	assert.Equal(t, TemporalityUnspecified, empty.Temporality())
}
