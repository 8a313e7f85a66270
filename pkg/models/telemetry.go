package models

// TraceID is the 16-byte identifier of a trace.
type TraceID [16]byte

// SpanID is the 8-byte identifier of a span. The all-zero value is the
// "no parent" sentinel.
type SpanID [8]byte

// IsEmpty reports whether the identifier is the all-zero sentinel.
func (id SpanID) IsEmpty() bool {
	return id == SpanID{}
}

// IsEmpty reports whether the identifier is all zeroes.
func (id TraceID) IsEmpty() bool {
	return id == TraceID{}
}

// SpanKind mirrors the OTLP span kind enumeration.
type SpanKind int32

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

// StatusCode mirrors the OTLP span status code enumeration.
type StatusCode int32

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// AttributeType tags the populated field of an AttributeValue.
type AttributeType string

const (
	AttributeTypeString AttributeType = "string"
	AttributeTypeInt    AttributeType = "int"
	AttributeTypeDouble AttributeType = "double"
	AttributeTypeBool   AttributeType = "bool"
)

// AttributeValue is a typed attribute value. Exactly one of the value fields
// is meaningful, selected by Type.
type AttributeValue struct {
	Type   AttributeType `json:"type"`
	Str    string        `json:"str,omitempty"`
	Int    int64         `json:"int,omitempty"`
	Double float64       `json:"double,omitempty"`
	Bool   bool          `json:"bool,omitempty"`
}

// StringValue builds a string attribute value.
func StringValue(s string) AttributeValue {
	return AttributeValue{Type: AttributeTypeString, Str: s}
}

// IntValue builds an integer attribute value.
func IntValue(i int64) AttributeValue {
	return AttributeValue{Type: AttributeTypeInt, Int: i}
}

// DoubleValue builds a floating-point attribute value.
func DoubleValue(f float64) AttributeValue {
	return AttributeValue{Type: AttributeTypeDouble, Double: f}
}

// BoolValue builds a boolean attribute value.
func BoolValue(b bool) AttributeValue {
	return AttributeValue{Type: AttributeTypeBool, Bool: b}
}

// KeyValue is a single attribute. Duplicate keys are legal and order is
// significant, so attributes travel as slices, never maps.
type KeyValue struct {
	Key   string         `json:"key"`
	Value AttributeValue `json:"value"`
}

// InstrumentationScope identifies the library that produced a signal.
type InstrumentationScope struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// SpanEvent is a timestamped annotation attached to a span.
type SpanEvent struct {
	Name         string     `json:"name"`
	TimeUnixNano uint64     `json:"time_unix_nano"`
	Attributes   []KeyValue `json:"attributes,omitempty"`
}

// SpanLink references another span, possibly in another trace.
type SpanLink struct {
	TraceID    TraceID    `json:"-"`
	SpanID     SpanID     `json:"-"`
	Attributes []KeyValue `json:"attributes,omitempty"`
}

// SpanStatus carries the span outcome.
type SpanStatus struct {
	Code    StatusCode `json:"code"`
	Message string     `json:"message,omitempty"`
}

// SpanRecord is the canonical in-process representation of one span,
// independent of wire format. Records are treated as immutable once built;
// they are copied across component boundaries, never aliased.
type SpanRecord struct {
	TraceID                TraceID
	SpanID                 SpanID
	ParentSpanID           SpanID
	Name                   string
	Kind                   SpanKind
	StartTimeUnixNano      uint64
	EndTimeUnixNano        uint64
	Attributes             []KeyValue
	Events                 []SpanEvent
	Links                  []SpanLink
	Status                 SpanStatus
	DroppedAttributesCount uint32
	ParentIsRemote         bool
	Scope                  InstrumentationScope
	Resource               []KeyValue
}
