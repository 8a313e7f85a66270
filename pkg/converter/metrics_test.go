package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/carverauto/otelsink/pkg/models"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func testMetricsRecord() models.ResourceMetricsRecord {
	return models.ResourceMetricsRecord{
		Resource: []models.KeyValue{
			{Key: "service.name", Value: models.StringValue("worker")},
		},
		ScopeMetrics: []models.ScopeMetrics{{
			Scope: models.InstrumentationScope{Name: "runtime", Version: "0.3.0"},
			Metrics: []models.Metric{
				{
					Name: "cpu.usage",
					Unit: "1",
					Gauge: &models.GaugeData{DataPoints: []models.NumberDataPoint{
						{TimeUnixNano: 100, Value: models.NumberValue{Double: 0.42}},
						{TimeUnixNano: 200, Value: models.NumberValue{Double: 0.58}},
					}},
				},
				{
					Name:        "requests.total",
					Description: "served requests",
					Sum: &models.SumData{
						Temporality: models.TemporalityCumulative,
						IsMonotonic: true,
						DataPoints: []models.NumberDataPoint{{
							Attributes: []models.KeyValue{
								{Key: "code", Value: models.IntValue(200)},
							},
							StartTimeUnixNano: 50,
							TimeUnixNano:      150,
							Value:             models.NumberValue{Int: 1234, IsInt: true},
						}},
					},
				},
				{
					Name: "request.duration",
					Unit: "ms",
					Histogram: &models.HistogramData{
						Temporality: models.TemporalityDelta,
						DataPoints: []models.HistogramDataPoint{{
							StartTimeUnixNano: 50,
							TimeUnixNano:      150,
							Count:             7,
							Sum:               float64Ptr(91.5),
							BucketCounts:      []uint64{1, 4, 2},
							ExplicitBounds:    []float64{10, 100},
							Min:               float64Ptr(2.5),
							Max:               float64Ptr(60),
						}},
					},
				},
			},
		}},
	}
}

func TestMetricsToArrowAndBack(t *testing.T) {
	records := []models.ResourceMetricsRecord{testMetricsRecord()}

	rec, err := MetricsToArrow(records)
	require.NoError(t, err)

	defer rec.Release()

	// One row per data point.
	assert.Equal(t, int64(4), rec.NumRows())

	got, err := ArrowToMetrics(rec)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestMetricsToArrowEmpty(t *testing.T) {
	rec, err := MetricsToArrow(nil)
	require.NoError(t, err)

	defer rec.Release()

	assert.Equal(t, int64(0), rec.NumRows())
	assert.True(t, MetricsSchema.Equal(rec.Schema()))
}

func TestMetricsToArrowNoDataPoints(t *testing.T) {
	// A record with empty scope metrics is valid and yields zero rows.
	records := []models.ResourceMetricsRecord{{
		Resource: []models.KeyValue{{Key: "service.name", Value: models.StringValue("idle")}},
	}}

	rec, err := MetricsToArrow(records)
	require.NoError(t, err)

	defer rec.Release()

	assert.Equal(t, int64(0), rec.NumRows())
}

func TestProtoMetricsRoundTrip(t *testing.T) {
	records := []models.ResourceMetricsRecord{testMetricsRecord()}

	req := MetricsToProto(records)
	require.Len(t, req.ResourceMetrics, 1)

	back := ProtoToMetrics(req)
	assert.Equal(t, records, back)

	rec, err := ProtoMetricsToArrow(req)
	require.NoError(t, err)

	defer rec.Release()

	decoded, err := ArrowToProtoMetrics(rec)
	require.NoError(t, err)
	assert.Equal(t, records, ProtoToMetrics(decoded))
}

func TestUnmarshalMetricsRequest(t *testing.T) {
	payload, err := proto.Marshal(MetricsToProto([]models.ResourceMetricsRecord{testMetricsRecord()}))
	require.NoError(t, err)

	decoded, err := UnmarshalMetricsRequest(payload)
	require.NoError(t, err)
	assert.Len(t, decoded.ResourceMetrics, 1)
}

func TestUnmarshalMetricsRequestMalformed(t *testing.T) {
	_, err := UnmarshalMetricsRequest([]byte{0xde, 0xad, 0xbe, 0xef})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestMetricDataPointCount(t *testing.T) {
	rec := testMetricsRecord()
	assert.Equal(t, 4, rec.DataPointCount())
}
