package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"

	"github.com/carverauto/otelsink/pkg/models"
)

func testSpan(i byte) models.SpanRecord {
	span := models.SpanRecord{
		Name:              "span",
		Kind:              models.SpanKindServer,
		StartTimeUnixNano: 1000,
		EndTimeUnixNano:   2000,
		Attributes: []models.KeyValue{
			{Key: "http.method", Value: models.StringValue("GET")},
			{Key: "http.status_code", Value: models.IntValue(200)},
		},
		Status: models.SpanStatus{Code: models.StatusCodeOK},
		Scope:  models.InstrumentationScope{Name: "test-lib", Version: "1.0.0"},
		Resource: []models.KeyValue{
			{Key: "service.name", Value: models.StringValue("checkout")},
		},
	}
	span.TraceID[0] = i
	span.SpanID[0] = i

	return span
}

func TestSpansToArrowAndBack(t *testing.T) {
	spans := []models.SpanRecord{testSpan(1), testSpan(2)}
	spans[1].ParentSpanID[0] = 9
	spans[1].ParentIsRemote = true
	spans[1].Status = models.SpanStatus{Code: models.StatusCodeError, Message: "boom"}
	spans[1].Events = []models.SpanEvent{
		{Name: "retry", TimeUnixNano: 1500, Attributes: []models.KeyValue{
			{Key: "attempt", Value: models.IntValue(2)},
		}},
	}
	spans[1].Links = []models.SpanLink{{
		TraceID: models.TraceID{0xaa},
		SpanID:  models.SpanID{0xbb},
	}}

	rec, err := SpansToArrow(spans)
	require.NoError(t, err)

	defer rec.Release()

	require.Equal(t, int64(2), rec.NumRows())

	got, err := ArrowToSpans(rec)
	require.NoError(t, err)
	assert.Equal(t, spans, got)
}

func TestSpansToArrowEmpty(t *testing.T) {
	rec, err := SpansToArrow(nil)
	require.NoError(t, err)

	defer rec.Release()

	assert.Equal(t, int64(0), rec.NumRows())
	assert.True(t, TraceSchema.Equal(rec.Schema()))
}

func TestSpanSchemaColumns(t *testing.T) {
	spans := make([]models.SpanRecord, 0, 5)
	for i := byte(0); i < 5; i++ {
		spans = append(spans, testSpan(i))
	}

	rec, err := SpansToArrow(spans)
	require.NoError(t, err)

	defer rec.Release()

	assert.Equal(t, int64(5), rec.NumRows())

	for _, name := range []string{"trace_id", "span_id", "name"} {
		assert.NotEmpty(t, rec.Schema().FieldIndices(name), "missing column %s", name)
	}
}

func TestProtoToSpansFlattens(t *testing.T) {
	req := &coltracepb.ExportTraceServiceRequest{
		ResourceSpans: []*tracepb.ResourceSpans{{
			Resource: &resourcepb.Resource{
				Attributes: []*commonpb.KeyValue{{
					Key:   "service.name",
					Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "api"}},
				}},
			},
			ScopeSpans: []*tracepb.ScopeSpans{{
				Scope: &commonpb.InstrumentationScope{Name: "lib", Version: "2.1"},
				Spans: []*tracepb.Span{
					{
						TraceId:           []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
						SpanId:            []byte{1, 2, 3, 4, 5, 6, 7, 8},
						Name:              "handle",
						Kind:              tracepb.Span_SPAN_KIND_CLIENT,
						StartTimeUnixNano: 10,
						EndTimeUnixNano:   20,
						Flags: uint32(tracepb.SpanFlags_SPAN_FLAGS_CONTEXT_HAS_IS_REMOTE_MASK) |
							uint32(tracepb.SpanFlags_SPAN_FLAGS_CONTEXT_IS_REMOTE_MASK),
					},
					{
						// Short identifiers are zero-padded, not rejected.
						TraceId: []byte{0xff},
						SpanId:  []byte{0xee},
						Name:    "short-ids",
					},
				},
			}},
		}},
	}

	spans := ProtoToSpans(req)
	require.Len(t, spans, 2)

	assert.Equal(t, "handle", spans[0].Name)
	assert.Equal(t, models.SpanKindClient, spans[0].Kind)
	assert.True(t, spans[0].ParentIsRemote)
	assert.Equal(t, "lib", spans[0].Scope.Name)
	assert.Equal(t, "2.1", spans[0].Scope.Version)
	require.Len(t, spans[0].Resource, 1)
	assert.Equal(t, "service.name", spans[0].Resource[0].Key)

	assert.Equal(t, models.TraceID{0xff}, spans[1].TraceID)
	assert.Equal(t, models.SpanID{0xee}, spans[1].SpanID)
	assert.False(t, spans[1].ParentIsRemote)
}

func TestSpansToProtoRegroups(t *testing.T) {
	spans := []models.SpanRecord{testSpan(1), testSpan(2), testSpan(3)}
	spans[2].Resource = []models.KeyValue{
		{Key: "service.name", Value: models.StringValue("other")},
	}

	req := SpansToProto(spans)
	require.Len(t, req.ResourceSpans, 2)
	require.Len(t, req.ResourceSpans[0].ScopeSpans, 1)
	assert.Len(t, req.ResourceSpans[0].ScopeSpans[0].Spans, 2)
	assert.Len(t, req.ResourceSpans[1].ScopeSpans[0].Spans, 1)
	assert.Equal(t, "test-lib", req.ResourceSpans[0].ScopeSpans[0].Scope.Name)
}

func TestProtoTracesRoundTrip(t *testing.T) {
	spans := []models.SpanRecord{testSpan(1), testSpan(2)}

	rec, err := ProtoTracesToArrow(SpansToProto(spans))
	require.NoError(t, err)

	defer rec.Release()

	req, err := ArrowToProtoTraces(rec)
	require.NoError(t, err)

	assert.Equal(t, spans, ProtoToSpans(req))
}

func TestUnmarshalTraceRequest(t *testing.T) {
	req := SpansToProto([]models.SpanRecord{testSpan(7)})

	payload, err := proto.Marshal(req)
	require.NoError(t, err)

	decoded, err := UnmarshalTraceRequest(payload)
	require.NoError(t, err)
	assert.Len(t, decoded.ResourceSpans, 1)
}

func TestUnmarshalTraceRequestMalformed(t *testing.T) {
	_, err := UnmarshalTraceRequest([]byte{0xff, 0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDuplicateAttributeKeysSurvive(t *testing.T) {
	span := testSpan(1)
	span.Attributes = []models.KeyValue{
		{Key: "k", Value: models.StringValue("first")},
		{Key: "k", Value: models.StringValue("second")},
	}

	rec, err := SpansToArrow([]models.SpanRecord{span})
	require.NoError(t, err)

	defer rec.Release()

	got, err := ArrowToSpans(rec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, span.Attributes, got[0].Attributes)
}
