package converter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"

	"github.com/carverauto/otelsink/pkg/models"
)

// Column positions in TraceSchema. Builders append positionally; readers
// resolve by name instead.
const (
	traceColTraceID = iota
	traceColSpanID
	traceColParentSpanID
	traceColName
	traceColKind
	traceColStartTime
	traceColEndTime
	traceColStatusCode
	traceColStatusMessage
	traceColAttributes
	traceColDroppedAttrs
	traceColParentIsRemote
	traceColEvents
	traceColLinks
	traceColResourceAttrs
	traceColScopeName
	traceColScopeVersion
)

// UnmarshalTraceRequest decodes an OTLP/HTTP trace export payload.
func UnmarshalTraceRequest(data []byte) (*coltracepb.ExportTraceServiceRequest, error) {
	req := &coltracepb.ExportTraceServiceRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return req, nil
}

// ProtoToSpans flattens an OTLP trace request into span records. Resource and
// scope context is copied onto every span. Identifiers shorter than their
// fixed width are zero-padded on the right.
func ProtoToSpans(req *coltracepb.ExportTraceServiceRequest) []models.SpanRecord {
	var spans []models.SpanRecord

	for _, rs := range req.GetResourceSpans() {
		resource := attrsFromProto(rs.GetResource().GetAttributes())

		for _, ss := range rs.GetScopeSpans() {
			scope := models.InstrumentationScope{
				Name:    ss.GetScope().GetName(),
				Version: ss.GetScope().GetVersion(),
			}

			for _, span := range ss.GetSpans() {
				spans = append(spans, spanFromProto(span, scope, resource))
			}
		}
	}

	return spans
}

func spanFromProto(span *tracepb.Span, scope models.InstrumentationScope, resource []models.KeyValue) models.SpanRecord {
	rec := models.SpanRecord{
		Name:                   span.GetName(),
		Kind:                   models.SpanKind(span.GetKind()),
		StartTimeUnixNano:      span.GetStartTimeUnixNano(),
		EndTimeUnixNano:        span.GetEndTimeUnixNano(),
		Attributes:             attrsFromProto(span.GetAttributes()),
		DroppedAttributesCount: span.GetDroppedAttributesCount(),
		ParentIsRemote:         parentIsRemote(span.GetFlags()),
		Scope:                  scope,
		Resource:               resource,
	}

	copy(rec.TraceID[:], span.GetTraceId())
	copy(rec.SpanID[:], span.GetSpanId())
	copy(rec.ParentSpanID[:], span.GetParentSpanId())

	if st := span.GetStatus(); st != nil {
		rec.Status = models.SpanStatus{
			Code:    models.StatusCode(st.GetCode()),
			Message: st.GetMessage(),
		}
	}

	for _, ev := range span.GetEvents() {
		rec.Events = append(rec.Events, models.SpanEvent{
			Name:         ev.GetName(),
			TimeUnixNano: ev.GetTimeUnixNano(),
			Attributes:   attrsFromProto(ev.GetAttributes()),
		})
	}

	for _, ln := range span.GetLinks() {
		link := models.SpanLink{Attributes: attrsFromProto(ln.GetAttributes())}
		copy(link.TraceID[:], ln.GetTraceId())
		copy(link.SpanID[:], ln.GetSpanId())
		rec.Links = append(rec.Links, link)
	}

	return rec
}

func parentIsRemote(flags uint32) bool {
	const (
		hasIsRemote = uint32(tracepb.SpanFlags_SPAN_FLAGS_CONTEXT_HAS_IS_REMOTE_MASK)
		isRemote    = uint32(tracepb.SpanFlags_SPAN_FLAGS_CONTEXT_IS_REMOTE_MASK)
	)

	return flags&hasIsRemote != 0 && flags&isRemote != 0
}

func spanFlags(parentIsRemote bool) uint32 {
	flags := uint32(tracepb.SpanFlags_SPAN_FLAGS_CONTEXT_HAS_IS_REMOTE_MASK)
	if parentIsRemote {
		flags |= uint32(tracepb.SpanFlags_SPAN_FLAGS_CONTEXT_IS_REMOTE_MASK)
	}

	return flags
}

// SpansToProto regroups span records into an OTLP trace request. Spans that
// share a resource and scope land under one ScopeSpans, in first-seen order.
func SpansToProto(spans []models.SpanRecord) *coltracepb.ExportTraceServiceRequest {
	req := &coltracepb.ExportTraceServiceRequest{}

	type scopeKey struct {
		resource string
		name     string
		version  string
	}

	resourceIdx := make(map[string]int)
	scopeIdx := make(map[scopeKey]*tracepb.ScopeSpans)

	for i := range spans {
		span := &spans[i]

		// Resource identity is the serialized attribute list; duplicate
		// keys and ordering are part of the identity.
		resKey, err := marshalAttrs(span.Resource)
		if err != nil {
			resKey = ""
		}

		ri, ok := resourceIdx[resKey]
		if !ok {
			ri = len(req.ResourceSpans)
			resourceIdx[resKey] = ri

			rs := &tracepb.ResourceSpans{}
			if len(span.Resource) > 0 {
				rs.Resource = &resourcepb.Resource{Attributes: attrsToProto(span.Resource)}
			}

			req.ResourceSpans = append(req.ResourceSpans, rs)
		}

		sk := scopeKey{resource: resKey, name: span.Scope.Name, version: span.Scope.Version}

		ss, ok := scopeIdx[sk]
		if !ok {
			ss = &tracepb.ScopeSpans{}
			if span.Scope != (models.InstrumentationScope{}) {
				ss.Scope = &commonpb.InstrumentationScope{
					Name:    span.Scope.Name,
					Version: span.Scope.Version,
				}
			}

			scopeIdx[sk] = ss
			req.ResourceSpans[ri].ScopeSpans = append(req.ResourceSpans[ri].ScopeSpans, ss)
		}

		ss.Spans = append(ss.Spans, spanToProto(span))
	}

	return req
}

func spanToProto(span *models.SpanRecord) *tracepb.Span {
	out := &tracepb.Span{
		TraceId:                append([]byte(nil), span.TraceID[:]...),
		SpanId:                 append([]byte(nil), span.SpanID[:]...),
		Name:                   span.Name,
		Kind:                   tracepb.Span_SpanKind(span.Kind),
		StartTimeUnixNano:      span.StartTimeUnixNano,
		EndTimeUnixNano:        span.EndTimeUnixNano,
		Attributes:             attrsToProto(span.Attributes),
		DroppedAttributesCount: span.DroppedAttributesCount,
		Flags:                  spanFlags(span.ParentIsRemote),
	}

	if !span.ParentSpanID.IsEmpty() {
		out.ParentSpanId = append([]byte(nil), span.ParentSpanID[:]...)
	}

	if span.Status.Code != models.StatusCodeUnset || span.Status.Message != "" {
		out.Status = &tracepb.Status{
			Code:    tracepb.Status_StatusCode(span.Status.Code),
			Message: span.Status.Message,
		}
	}

	for i := range span.Events {
		ev := &span.Events[i]
		out.Events = append(out.Events, &tracepb.Span_Event{
			Name:         ev.Name,
			TimeUnixNano: ev.TimeUnixNano,
			Attributes:   attrsToProto(ev.Attributes),
		})
	}

	for i := range span.Links {
		ln := &span.Links[i]
		out.Links = append(out.Links, &tracepb.Span_Link{
			TraceId:    append([]byte(nil), ln.TraceID[:]...),
			SpanId:     append([]byte(nil), ln.SpanID[:]...),
			Attributes: attrsToProto(ln.Attributes),
		})
	}

	return out
}

// SpansToArrow builds a trace batch with one row per span record. The caller
// owns the returned batch and must Release it.
func SpansToArrow(spans []models.SpanRecord) (arrow.RecordBatch, error) {
	rb := array.NewRecordBuilder(memory.NewGoAllocator(), TraceSchema)
	defer rb.Release()

	for i := range spans {
		if err := appendSpanRow(rb, &spans[i]); err != nil {
			return nil, err
		}
	}

	return rb.NewRecord(), nil
}

func appendSpanRow(rb *array.RecordBuilder, span *models.SpanRecord) error {
	rb.Field(traceColTraceID).(*array.FixedSizeBinaryBuilder).Append(span.TraceID[:])
	rb.Field(traceColSpanID).(*array.FixedSizeBinaryBuilder).Append(span.SpanID[:])

	parent := rb.Field(traceColParentSpanID).(*array.FixedSizeBinaryBuilder)
	if span.ParentSpanID.IsEmpty() {
		parent.AppendNull()
	} else {
		parent.Append(span.ParentSpanID[:])
	}

	rb.Field(traceColName).(*array.StringBuilder).Append(span.Name)
	rb.Field(traceColKind).(*array.Int8Builder).Append(int8(span.Kind))
	rb.Field(traceColStartTime).(*array.Uint64Builder).Append(span.StartTimeUnixNano)
	rb.Field(traceColEndTime).(*array.Uint64Builder).Append(span.EndTimeUnixNano)
	rb.Field(traceColStatusCode).(*array.Int8Builder).Append(int8(span.Status.Code))
	appendNullableString(rb.Field(traceColStatusMessage).(*array.StringBuilder), span.Status.Message)

	attrs, err := marshalAttrs(span.Attributes)
	if err != nil {
		return err
	}

	appendNullableString(rb.Field(traceColAttributes).(*array.StringBuilder), attrs)
	rb.Field(traceColDroppedAttrs).(*array.Uint32Builder).Append(span.DroppedAttributesCount)
	rb.Field(traceColParentIsRemote).(*array.BooleanBuilder).Append(span.ParentIsRemote)

	events, err := marshalEvents(span.Events)
	if err != nil {
		return err
	}

	appendNullableString(rb.Field(traceColEvents).(*array.StringBuilder), events)

	links, err := marshalLinks(span.Links)
	if err != nil {
		return err
	}

	appendNullableString(rb.Field(traceColLinks).(*array.StringBuilder), links)

	resource, err := marshalAttrs(span.Resource)
	if err != nil {
		return err
	}

	appendNullableString(rb.Field(traceColResourceAttrs).(*array.StringBuilder), resource)
	appendNullableString(rb.Field(traceColScopeName).(*array.StringBuilder), span.Scope.Name)
	appendNullableString(rb.Field(traceColScopeVersion).(*array.StringBuilder), span.Scope.Version)

	return nil
}

func appendNullableString(b *array.StringBuilder, s string) {
	if s == "" {
		b.AppendNull()
		return
	}

	b.Append(s)
}

// ArrowToSpans reconstructs span records from a trace batch.
func ArrowToSpans(rec arrow.RecordBatch) ([]models.SpanRecord, error) {
	traceIDs, err := column[*array.FixedSizeBinary](rec, "trace_id")
	if err != nil {
		return nil, err
	}

	spanIDs, err := column[*array.FixedSizeBinary](rec, "span_id")
	if err != nil {
		return nil, err
	}

	parentIDs, err := column[*array.FixedSizeBinary](rec, "parent_span_id")
	if err != nil {
		return nil, err
	}

	names, err := column[*array.String](rec, "name")
	if err != nil {
		return nil, err
	}

	kinds, err := column[*array.Int8](rec, "kind")
	if err != nil {
		return nil, err
	}

	startTimes, err := column[*array.Uint64](rec, "start_time_unix_nano")
	if err != nil {
		return nil, err
	}

	endTimes, err := column[*array.Uint64](rec, "end_time_unix_nano")
	if err != nil {
		return nil, err
	}

	statusCodes, err := column[*array.Int8](rec, "status_code")
	if err != nil {
		return nil, err
	}

	statusMessages, err := column[*array.String](rec, "status_message")
	if err != nil {
		return nil, err
	}

	attrs, err := column[*array.String](rec, "attributes")
	if err != nil {
		return nil, err
	}

	droppedAttrs, err := column[*array.Uint32](rec, "dropped_attributes_count")
	if err != nil {
		return nil, err
	}

	parentRemote, err := column[*array.Boolean](rec, "parent_is_remote")
	if err != nil {
		return nil, err
	}

	events, err := column[*array.String](rec, "events")
	if err != nil {
		return nil, err
	}

	links, err := column[*array.String](rec, "links")
	if err != nil {
		return nil, err
	}

	resourceAttrs, err := column[*array.String](rec, "resource_attributes")
	if err != nil {
		return nil, err
	}

	scopeNames, err := column[*array.String](rec, "scope_name")
	if err != nil {
		return nil, err
	}

	scopeVersions, err := column[*array.String](rec, "scope_version")
	if err != nil {
		return nil, err
	}

	spans := make([]models.SpanRecord, 0, rec.NumRows())

	for i := 0; i < int(rec.NumRows()); i++ {
		span := models.SpanRecord{
			Name:                   names.Value(i),
			Kind:                   models.SpanKind(kinds.Value(i)),
			StartTimeUnixNano:      startTimes.Value(i),
			EndTimeUnixNano:        endTimes.Value(i),
			DroppedAttributesCount: droppedAttrs.Value(i),
			ParentIsRemote:         parentRemote.Value(i),
		}

		copy(span.TraceID[:], traceIDs.Value(i))
		copy(span.SpanID[:], spanIDs.Value(i))

		if !parentIDs.IsNull(i) {
			copy(span.ParentSpanID[:], parentIDs.Value(i))
		}

		span.Status = models.SpanStatus{
			Code:    models.StatusCode(statusCodes.Value(i)),
			Message: stringAt(statusMessages, i),
		}

		if span.Attributes, err = unmarshalAttrs(stringAt(attrs, i)); err != nil {
			return nil, err
		}

		if span.Events, err = unmarshalEvents(stringAt(events, i)); err != nil {
			return nil, err
		}

		if span.Links, err = unmarshalLinks(stringAt(links, i)); err != nil {
			return nil, err
		}

		if span.Resource, err = unmarshalAttrs(stringAt(resourceAttrs, i)); err != nil {
			return nil, err
		}

		span.Scope = models.InstrumentationScope{
			Name:    stringAt(scopeNames, i),
			Version: stringAt(scopeVersions, i),
		}

		spans = append(spans, span)
	}

	return spans, nil
}

func stringAt(col *array.String, i int) string {
	if col.IsNull(i) {
		return ""
	}

	return col.Value(i)
}

// ProtoTracesToArrow converts an OTLP trace request straight to a batch.
func ProtoTracesToArrow(req *coltracepb.ExportTraceServiceRequest) (arrow.RecordBatch, error) {
	return SpansToArrow(ProtoToSpans(req))
}

// ArrowToProtoTraces converts a trace batch back to an OTLP trace request.
func ArrowToProtoTraces(rec arrow.RecordBatch) (*coltracepb.ExportTraceServiceRequest, error) {
	spans, err := ArrowToSpans(rec)
	if err != nil {
		return nil, err
	}

	return SpansToProto(spans), nil
}
