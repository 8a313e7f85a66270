package converter

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"

	"github.com/carverauto/otelsink/pkg/models"
)

// marshalAttrs encodes attributes as a JSON array so that duplicate keys and
// declaration order survive the round trip. Empty input encodes to "", which
// the column builders store as null.
func marshalAttrs(attrs []models.KeyValue) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}

	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}

	return string(b), nil
}

func unmarshalAttrs(s string) ([]models.KeyValue, error) {
	if s == "" {
		return nil, nil
	}

	var attrs []models.KeyValue
	if err := json.Unmarshal([]byte(s), &attrs); err != nil {
		return nil, fmt.Errorf("%w: attributes column: %w", ErrSchemaMismatch, err)
	}

	return attrs, nil
}

func marshalEvents(events []models.SpanEvent) (string, error) {
	if len(events) == 0 {
		return "", nil
	}

	b, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("marshal events: %w", err)
	}

	return string(b), nil
}

func unmarshalEvents(s string) ([]models.SpanEvent, error) {
	if s == "" {
		return nil, nil
	}

	var events []models.SpanEvent
	if err := json.Unmarshal([]byte(s), &events); err != nil {
		return nil, fmt.Errorf("%w: events column: %w", ErrSchemaMismatch, err)
	}

	return events, nil
}

// jsonLink is the serialized form of a SpanLink. Identifiers travel as
// lowercase hex since JSON has no fixed-width binary type.
type jsonLink struct {
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	Attributes []models.KeyValue `json:"attributes,omitempty"`
}

func marshalLinks(links []models.SpanLink) (string, error) {
	if len(links) == 0 {
		return "", nil
	}

	out := make([]jsonLink, 0, len(links))
	for i := range links {
		out = append(out, jsonLink{
			TraceID:    hex.EncodeToString(links[i].TraceID[:]),
			SpanID:     hex.EncodeToString(links[i].SpanID[:]),
			Attributes: links[i].Attributes,
		})
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal links: %w", err)
	}

	return string(b), nil
}

func unmarshalLinks(s string) ([]models.SpanLink, error) {
	if s == "" {
		return nil, nil
	}

	var raw []jsonLink
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: links column: %w", ErrSchemaMismatch, err)
	}

	links := make([]models.SpanLink, 0, len(raw))

	for i := range raw {
		link := models.SpanLink{Attributes: raw[i].Attributes}

		tid, err := hex.DecodeString(raw[i].TraceID)
		if err != nil {
			return nil, fmt.Errorf("%w: link trace_id: %w", ErrSchemaMismatch, err)
		}

		sid, err := hex.DecodeString(raw[i].SpanID)
		if err != nil {
			return nil, fmt.Errorf("%w: link span_id: %w", ErrSchemaMismatch, err)
		}

		copy(link.TraceID[:], tid)
		copy(link.SpanID[:], sid)
		links = append(links, link)
	}

	return links, nil
}

// attrsFromProto converts OTLP attributes to the in-process form. Values
// outside the four scalar kinds (arrays, kv-lists, bytes) degrade to their
// protobuf text rendering rather than being dropped.
func attrsFromProto(kvs []*commonpb.KeyValue) []models.KeyValue {
	if len(kvs) == 0 {
		return nil
	}

	out := make([]models.KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		if kv == nil {
			continue
		}

		out = append(out, models.KeyValue{Key: kv.Key, Value: attrValueFromProto(kv.Value)})
	}

	return out
}

func attrValueFromProto(v *commonpb.AnyValue) models.AttributeValue {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return models.StringValue(val.StringValue)
	case *commonpb.AnyValue_IntValue:
		return models.IntValue(val.IntValue)
	case *commonpb.AnyValue_DoubleValue:
		return models.DoubleValue(val.DoubleValue)
	case *commonpb.AnyValue_BoolValue:
		return models.BoolValue(val.BoolValue)
	case nil:
		return models.StringValue("")
	default:
		return models.StringValue(v.String())
	}
}

func attrsToProto(attrs []models.KeyValue) []*commonpb.KeyValue {
	if len(attrs) == 0 {
		return nil
	}

	out := make([]*commonpb.KeyValue, 0, len(attrs))
	for i := range attrs {
		out = append(out, &commonpb.KeyValue{
			Key:   attrs[i].Key,
			Value: attrValueToProto(attrs[i].Value),
		})
	}

	return out
}

func attrValueToProto(v models.AttributeValue) *commonpb.AnyValue {
	switch v.Type {
	case models.AttributeTypeInt:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v.Int}}
	case models.AttributeTypeDouble:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: v.Double}}
	case models.AttributeTypeBool:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: v.Bool}}
	default:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v.Str}}
	}
}
