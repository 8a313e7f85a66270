// Package converter is the stateless codec between the in-process record
// model, OTLP protobuf wire messages, and Arrow record batches.
//
// Both schemas are fixed and kind-independent: every batch of a given record
// kind carries the same columns, so readers never negotiate schemas per batch.
// Resource and scope attributes are denormalized onto every row as JSON side
// columns; the inverse conversions regroup rows by resource and scope.
package converter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// TraceSchema is the column layout of every trace batch. Zero-row batches
// carry the same schema.
var TraceSchema = arrow.NewSchema([]arrow.Field{
	{Name: "trace_id", Type: &arrow.FixedSizeBinaryType{ByteWidth: 16}},
	{Name: "span_id", Type: &arrow.FixedSizeBinaryType{ByteWidth: 8}},
	{Name: "parent_span_id", Type: &arrow.FixedSizeBinaryType{ByteWidth: 8}, Nullable: true},
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "kind", Type: arrow.PrimitiveTypes.Int8},
	{Name: "start_time_unix_nano", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "end_time_unix_nano", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "status_code", Type: arrow.PrimitiveTypes.Int8},
	{Name: "status_message", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "attributes", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "dropped_attributes_count", Type: arrow.PrimitiveTypes.Uint32},
	{Name: "parent_is_remote", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "events", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "links", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "resource_attributes", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "scope_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "scope_version", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

// MetricsSchema is the column layout of every metric batch: one row per data
// point. The number, sum, and histogram column groups are always present;
// groups that do not apply to a row's metric type are null.
var MetricsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "metric_name", Type: arrow.BinaryTypes.String},
	{Name: "description", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "unit", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "metric_type", Type: arrow.BinaryTypes.String},
	{Name: "temporality", Type: arrow.PrimitiveTypes.Int8},
	{Name: "start_time_unix_nano", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	{Name: "time_unix_nano", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "value_int", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "value_double", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "is_monotonic", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	{Name: "count", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	{Name: "sum", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "bucket_counts", Type: arrow.ListOf(arrow.PrimitiveTypes.Uint64), Nullable: true},
	{Name: "explicit_bounds", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64), Nullable: true},
	{Name: "min", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "max", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "attributes", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "resource_attributes", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "scope_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "scope_version", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

func fieldIndex(schema *arrow.Schema, name string) (int, error) {
	idxs := schema.FieldIndices(name)
	if len(idxs) == 0 {
		return 0, errMissingColumn(name)
	}

	return idxs[0], nil
}

// column resolves a named column by position and concrete array type, so
// readers tolerate batches whose columns arrive in a different order.
func column[T arrow.Array](rec arrow.RecordBatch, name string) (T, error) {
	var zero T

	idx, err := fieldIndex(rec.Schema(), name)
	if err != nil {
		return zero, err
	}

	col, ok := rec.Column(idx).(T)
	if !ok {
		return zero, fmt.Errorf("%w: column %q has type %s",
			ErrSchemaMismatch, name, rec.Column(idx).DataType())
	}

	return col, nil
}
