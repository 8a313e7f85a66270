package converter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/protobuf/proto"

	"github.com/carverauto/otelsink/pkg/models"
)

// Column positions in MetricsSchema.
const (
	metricColName = iota
	metricColDescription
	metricColUnit
	metricColType
	metricColTemporality
	metricColStartTime
	metricColTime
	metricColValueInt
	metricColValueDouble
	metricColIsMonotonic
	metricColCount
	metricColSum
	metricColBucketCounts
	metricColExplicitBounds
	metricColMin
	metricColMax
	metricColAttributes
	metricColResourceAttrs
	metricColScopeName
	metricColScopeVersion
)

// UnmarshalMetricsRequest decodes an OTLP/HTTP metrics export payload.
func UnmarshalMetricsRequest(data []byte) (*colmetricspb.ExportMetricsServiceRequest, error) {
	req := &colmetricspb.ExportMetricsServiceRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return req, nil
}

// ProtoToMetrics converts an OTLP metrics request into one record per
// ResourceMetrics entry. Exponential histograms and summaries are not part of
// the storage model and are dropped.
func ProtoToMetrics(req *colmetricspb.ExportMetricsServiceRequest) []models.ResourceMetricsRecord {
	var records []models.ResourceMetricsRecord

	for _, rm := range req.GetResourceMetrics() {
		rec := models.ResourceMetricsRecord{
			Resource: attrsFromProto(rm.GetResource().GetAttributes()),
		}

		for _, sm := range rm.GetScopeMetrics() {
			scoped := models.ScopeMetrics{
				Scope: models.InstrumentationScope{
					Name:    sm.GetScope().GetName(),
					Version: sm.GetScope().GetVersion(),
				},
			}

			for _, m := range sm.GetMetrics() {
				if metric, ok := metricFromProto(m); ok {
					scoped.Metrics = append(scoped.Metrics, metric)
				}
			}

			rec.ScopeMetrics = append(rec.ScopeMetrics, scoped)
		}

		records = append(records, rec)
	}

	return records
}

func metricFromProto(m *metricspb.Metric) (models.Metric, bool) {
	out := models.Metric{
		Name:        m.GetName(),
		Description: m.GetDescription(),
		Unit:        m.GetUnit(),
	}

	switch data := m.GetData().(type) {
	case *metricspb.Metric_Gauge:
		gauge := &models.GaugeData{}
		for _, dp := range data.Gauge.GetDataPoints() {
			gauge.DataPoints = append(gauge.DataPoints, numberPointFromProto(dp))
		}

		out.Gauge = gauge
	case *metricspb.Metric_Sum:
		sum := &models.SumData{
			Temporality: models.Temporality(data.Sum.GetAggregationTemporality()),
			IsMonotonic: data.Sum.GetIsMonotonic(),
		}
		for _, dp := range data.Sum.GetDataPoints() {
			sum.DataPoints = append(sum.DataPoints, numberPointFromProto(dp))
		}

		out.Sum = sum
	case *metricspb.Metric_Histogram:
		hist := &models.HistogramData{
			Temporality: models.Temporality(data.Histogram.GetAggregationTemporality()),
		}
		for _, dp := range data.Histogram.GetDataPoints() {
			hist.DataPoints = append(hist.DataPoints, histogramPointFromProto(dp))
		}

		out.Histogram = hist
	default:
		return models.Metric{}, false
	}

	return out, true
}

func numberPointFromProto(dp *metricspb.NumberDataPoint) models.NumberDataPoint {
	out := models.NumberDataPoint{
		Attributes:        attrsFromProto(dp.GetAttributes()),
		StartTimeUnixNano: dp.GetStartTimeUnixNano(),
		TimeUnixNano:      dp.GetTimeUnixNano(),
	}

	switch v := dp.GetValue().(type) {
	case *metricspb.NumberDataPoint_AsInt:
		out.Value = models.NumberValue{Int: v.AsInt, IsInt: true}
	case *metricspb.NumberDataPoint_AsDouble:
		out.Value = models.NumberValue{Double: v.AsDouble}
	}

	return out
}

func histogramPointFromProto(dp *metricspb.HistogramDataPoint) models.HistogramDataPoint {
	return models.HistogramDataPoint{
		Attributes:        attrsFromProto(dp.GetAttributes()),
		StartTimeUnixNano: dp.GetStartTimeUnixNano(),
		TimeUnixNano:      dp.GetTimeUnixNano(),
		Count:             dp.GetCount(),
		Sum:               dp.Sum,
		BucketCounts:      dp.GetBucketCounts(),
		ExplicitBounds:    dp.GetExplicitBounds(),
		Min:               dp.Min,
		Max:               dp.Max,
	}
}

// MetricsToProto converts metric records back to an OTLP metrics request.
func MetricsToProto(records []models.ResourceMetricsRecord) *colmetricspb.ExportMetricsServiceRequest {
	req := &colmetricspb.ExportMetricsServiceRequest{}

	for i := range records {
		rec := &records[i]
		rm := &metricspb.ResourceMetrics{}

		if len(rec.Resource) > 0 {
			rm.Resource = &resourcepb.Resource{Attributes: attrsToProto(rec.Resource)}
		}

		for j := range rec.ScopeMetrics {
			sm := &rec.ScopeMetrics[j]
			scoped := &metricspb.ScopeMetrics{}

			if sm.Scope != (models.InstrumentationScope{}) {
				scoped.Scope = &commonpb.InstrumentationScope{
					Name:    sm.Scope.Name,
					Version: sm.Scope.Version,
				}
			}

			for k := range sm.Metrics {
				scoped.Metrics = append(scoped.Metrics, metricToProto(&sm.Metrics[k]))
			}

			rm.ScopeMetrics = append(rm.ScopeMetrics, scoped)
		}

		req.ResourceMetrics = append(req.ResourceMetrics, rm)
	}

	return req
}

func metricToProto(m *models.Metric) *metricspb.Metric {
	out := &metricspb.Metric{
		Name:        m.Name,
		Description: m.Description,
		Unit:        m.Unit,
	}

	switch {
	case m.Gauge != nil:
		gauge := &metricspb.Gauge{}
		for i := range m.Gauge.DataPoints {
			gauge.DataPoints = append(gauge.DataPoints, numberPointToProto(&m.Gauge.DataPoints[i]))
		}

		out.Data = &metricspb.Metric_Gauge{Gauge: gauge}
	case m.Sum != nil:
		sum := &metricspb.Sum{
			AggregationTemporality: metricspb.AggregationTemporality(m.Sum.Temporality),
			IsMonotonic:            m.Sum.IsMonotonic,
		}
		for i := range m.Sum.DataPoints {
			sum.DataPoints = append(sum.DataPoints, numberPointToProto(&m.Sum.DataPoints[i]))
		}

		out.Data = &metricspb.Metric_Sum{Sum: sum}
	case m.Histogram != nil:
		hist := &metricspb.Histogram{
			AggregationTemporality: metricspb.AggregationTemporality(m.Histogram.Temporality),
		}
		for i := range m.Histogram.DataPoints {
			hist.DataPoints = append(hist.DataPoints, histogramPointToProto(&m.Histogram.DataPoints[i]))
		}

		out.Data = &metricspb.Metric_Histogram{Histogram: hist}
	}

	return out
}

func numberPointToProto(dp *models.NumberDataPoint) *metricspb.NumberDataPoint {
	out := &metricspb.NumberDataPoint{
		Attributes:        attrsToProto(dp.Attributes),
		StartTimeUnixNano: dp.StartTimeUnixNano,
		TimeUnixNano:      dp.TimeUnixNano,
	}

	if dp.Value.IsInt {
		out.Value = &metricspb.NumberDataPoint_AsInt{AsInt: dp.Value.Int}
	} else {
		out.Value = &metricspb.NumberDataPoint_AsDouble{AsDouble: dp.Value.Double}
	}

	return out
}

func histogramPointToProto(dp *models.HistogramDataPoint) *metricspb.HistogramDataPoint {
	return &metricspb.HistogramDataPoint{
		Attributes:        attrsToProto(dp.Attributes),
		StartTimeUnixNano: dp.StartTimeUnixNano,
		TimeUnixNano:      dp.TimeUnixNano,
		Count:             dp.Count,
		Sum:               dp.Sum,
		BucketCounts:      dp.BucketCounts,
		ExplicitBounds:    dp.ExplicitBounds,
		Min:               dp.Min,
		Max:               dp.Max,
	}
}

// MetricsToArrow builds a metric batch with one row per data point. Column
// groups that do not apply to a row's metric type are null. The caller owns
// the returned batch and must Release it.
func MetricsToArrow(records []models.ResourceMetricsRecord) (arrow.RecordBatch, error) {
	rb := array.NewRecordBuilder(memory.NewGoAllocator(), MetricsSchema)
	defer rb.Release()

	for i := range records {
		rec := &records[i]

		resource, err := marshalAttrs(rec.Resource)
		if err != nil {
			return nil, err
		}

		for j := range rec.ScopeMetrics {
			sm := &rec.ScopeMetrics[j]
			for k := range sm.Metrics {
				if err := appendMetricRows(rb, &sm.Metrics[k], resource, sm.Scope); err != nil {
					return nil, err
				}
			}
		}
	}

	return rb.NewRecord(), nil
}

func appendMetricRows(rb *array.RecordBuilder, m *models.Metric, resource string, scope models.InstrumentationScope) error {
	switch {
	case m.Gauge != nil:
		for i := range m.Gauge.DataPoints {
			dp := &m.Gauge.DataPoints[i]
			if err := appendMetricMeta(rb, m, resource, scope, dp.StartTimeUnixNano, dp.TimeUnixNano, dp.Attributes); err != nil {
				return err
			}

			appendNumberColumns(rb, dp.Value, nil)
			appendNullHistogramColumns(rb)
		}
	case m.Sum != nil:
		monotonic := m.Sum.IsMonotonic

		for i := range m.Sum.DataPoints {
			dp := &m.Sum.DataPoints[i]
			if err := appendMetricMeta(rb, m, resource, scope, dp.StartTimeUnixNano, dp.TimeUnixNano, dp.Attributes); err != nil {
				return err
			}

			appendNumberColumns(rb, dp.Value, &monotonic)
			appendNullHistogramColumns(rb)
		}
	case m.Histogram != nil:
		for i := range m.Histogram.DataPoints {
			dp := &m.Histogram.DataPoints[i]
			if err := appendMetricMeta(rb, m, resource, scope, dp.StartTimeUnixNano, dp.TimeUnixNano, dp.Attributes); err != nil {
				return err
			}

			rb.Field(metricColValueInt).(*array.Int64Builder).AppendNull()
			rb.Field(metricColValueDouble).(*array.Float64Builder).AppendNull()
			rb.Field(metricColIsMonotonic).(*array.BooleanBuilder).AppendNull()
			appendHistogramColumns(rb, dp)
		}
	}

	return nil
}

func appendMetricMeta(rb *array.RecordBuilder, m *models.Metric, resource string, scope models.InstrumentationScope, start, ts uint64, attrs []models.KeyValue) error {
	rb.Field(metricColName).(*array.StringBuilder).Append(m.Name)
	appendNullableString(rb.Field(metricColDescription).(*array.StringBuilder), m.Description)
	appendNullableString(rb.Field(metricColUnit).(*array.StringBuilder), m.Unit)
	rb.Field(metricColType).(*array.StringBuilder).Append(string(m.Type()))
	rb.Field(metricColTemporality).(*array.Int8Builder).Append(int8(m.Temporality()))

	startCol := rb.Field(metricColStartTime).(*array.Uint64Builder)
	if start == 0 {
		startCol.AppendNull()
	} else {
		startCol.Append(start)
	}

	rb.Field(metricColTime).(*array.Uint64Builder).Append(ts)

	encoded, err := marshalAttrs(attrs)
	if err != nil {
		return err
	}

	appendNullableString(rb.Field(metricColAttributes).(*array.StringBuilder), encoded)
	appendNullableString(rb.Field(metricColResourceAttrs).(*array.StringBuilder), resource)
	appendNullableString(rb.Field(metricColScopeName).(*array.StringBuilder), scope.Name)
	appendNullableString(rb.Field(metricColScopeVersion).(*array.StringBuilder), scope.Version)

	return nil
}

func appendNumberColumns(rb *array.RecordBuilder, v models.NumberValue, monotonic *bool) {
	intCol := rb.Field(metricColValueInt).(*array.Int64Builder)
	doubleCol := rb.Field(metricColValueDouble).(*array.Float64Builder)

	if v.IsInt {
		intCol.Append(v.Int)
		doubleCol.AppendNull()
	} else {
		intCol.AppendNull()
		doubleCol.Append(v.Double)
	}

	monoCol := rb.Field(metricColIsMonotonic).(*array.BooleanBuilder)
	if monotonic == nil {
		monoCol.AppendNull()
	} else {
		monoCol.Append(*monotonic)
	}
}

func appendNullHistogramColumns(rb *array.RecordBuilder) {
	rb.Field(metricColCount).(*array.Uint64Builder).AppendNull()
	rb.Field(metricColSum).(*array.Float64Builder).AppendNull()
	rb.Field(metricColBucketCounts).(*array.ListBuilder).AppendNull()
	rb.Field(metricColExplicitBounds).(*array.ListBuilder).AppendNull()
	rb.Field(metricColMin).(*array.Float64Builder).AppendNull()
	rb.Field(metricColMax).(*array.Float64Builder).AppendNull()
}

func appendHistogramColumns(rb *array.RecordBuilder, dp *models.HistogramDataPoint) {
	rb.Field(metricColCount).(*array.Uint64Builder).Append(dp.Count)
	appendNullableFloat(rb.Field(metricColSum).(*array.Float64Builder), dp.Sum)

	buckets := rb.Field(metricColBucketCounts).(*array.ListBuilder)
	if dp.BucketCounts == nil {
		buckets.AppendNull()
	} else {
		buckets.Append(true)
		vb := buckets.ValueBuilder().(*array.Uint64Builder)
		for _, c := range dp.BucketCounts {
			vb.Append(c)
		}
	}

	bounds := rb.Field(metricColExplicitBounds).(*array.ListBuilder)
	if dp.ExplicitBounds == nil {
		bounds.AppendNull()
	} else {
		bounds.Append(true)
		vb := bounds.ValueBuilder().(*array.Float64Builder)
		for _, b := range dp.ExplicitBounds {
			vb.Append(b)
		}
	}

	appendNullableFloat(rb.Field(metricColMin).(*array.Float64Builder), dp.Min)
	appendNullableFloat(rb.Field(metricColMax).(*array.Float64Builder), dp.Max)
}

func appendNullableFloat(b *array.Float64Builder, v *float64) {
	if v == nil {
		b.AppendNull()
		return
	}

	b.Append(*v)
}

// metricCols is the resolved column set of a metric batch.
type metricCols struct {
	name           *array.String
	description    *array.String
	unit           *array.String
	metricType     *array.String
	temporality    *array.Int8
	startTime      *array.Uint64
	time           *array.Uint64
	valueInt       *array.Int64
	valueDouble    *array.Float64
	isMonotonic    *array.Boolean
	count          *array.Uint64
	sum            *array.Float64
	bucketCounts   *array.List
	explicitBounds *array.List
	min            *array.Float64
	max            *array.Float64
	attributes     *array.String
	resourceAttrs  *array.String
	scopeName      *array.String
	scopeVersion   *array.String
}

func resolveMetricCols(rec arrow.RecordBatch) (*metricCols, error) {
	var (
		cols metricCols
		err  error
	)

	if cols.name, err = column[*array.String](rec, "metric_name"); err != nil {
		return nil, err
	}

	if cols.description, err = column[*array.String](rec, "description"); err != nil {
		return nil, err
	}

	if cols.unit, err = column[*array.String](rec, "unit"); err != nil {
		return nil, err
	}

	if cols.metricType, err = column[*array.String](rec, "metric_type"); err != nil {
		return nil, err
	}

	if cols.temporality, err = column[*array.Int8](rec, "temporality"); err != nil {
		return nil, err
	}

	if cols.startTime, err = column[*array.Uint64](rec, "start_time_unix_nano"); err != nil {
		return nil, err
	}

	if cols.time, err = column[*array.Uint64](rec, "time_unix_nano"); err != nil {
		return nil, err
	}

	if cols.valueInt, err = column[*array.Int64](rec, "value_int"); err != nil {
		return nil, err
	}

	if cols.valueDouble, err = column[*array.Float64](rec, "value_double"); err != nil {
		return nil, err
	}

	if cols.isMonotonic, err = column[*array.Boolean](rec, "is_monotonic"); err != nil {
		return nil, err
	}

	if cols.count, err = column[*array.Uint64](rec, "count"); err != nil {
		return nil, err
	}

	if cols.sum, err = column[*array.Float64](rec, "sum"); err != nil {
		return nil, err
	}

	if cols.bucketCounts, err = column[*array.List](rec, "bucket_counts"); err != nil {
		return nil, err
	}

	if cols.explicitBounds, err = column[*array.List](rec, "explicit_bounds"); err != nil {
		return nil, err
	}

	if cols.min, err = column[*array.Float64](rec, "min"); err != nil {
		return nil, err
	}

	if cols.max, err = column[*array.Float64](rec, "max"); err != nil {
		return nil, err
	}

	if cols.attributes, err = column[*array.String](rec, "attributes"); err != nil {
		return nil, err
	}

	if cols.resourceAttrs, err = column[*array.String](rec, "resource_attributes"); err != nil {
		return nil, err
	}

	if cols.scopeName, err = column[*array.String](rec, "scope_name"); err != nil {
		return nil, err
	}

	if cols.scopeVersion, err = column[*array.String](rec, "scope_version"); err != nil {
		return nil, err
	}

	return &cols, nil
}

// ArrowToMetrics reconstructs metric records from a metric batch. Rows are
// regrouped by resource, then scope, then metric identity, in first-seen
// order.
func ArrowToMetrics(rec arrow.RecordBatch) ([]models.ResourceMetricsRecord, error) {
	cols, err := resolveMetricCols(rec)
	if err != nil {
		return nil, err
	}

	type metricKey struct {
		scopeName    string
		scopeVersion string
		name         string
		description  string
		unit         string
		metricType   string
	}

	var records []models.ResourceMetricsRecord

	recordIdx := make(map[string]int)
	scopeIdx := make(map[string]map[models.InstrumentationScope]int)
	metricIdx := make(map[string]map[metricKey]int)

	for i := 0; i < int(rec.NumRows()); i++ {
		resKey := stringAt(cols.resourceAttrs, i)

		ri, ok := recordIdx[resKey]
		if !ok {
			resource, err := unmarshalAttrs(resKey)
			if err != nil {
				return nil, err
			}

			ri = len(records)
			recordIdx[resKey] = ri
			scopeIdx[resKey] = make(map[models.InstrumentationScope]int)
			metricIdx[resKey] = make(map[metricKey]int)
			records = append(records, models.ResourceMetricsRecord{Resource: resource})
		}

		scope := models.InstrumentationScope{
			Name:    stringAt(cols.scopeName, i),
			Version: stringAt(cols.scopeVersion, i),
		}

		si, ok := scopeIdx[resKey][scope]
		if !ok {
			si = len(records[ri].ScopeMetrics)
			scopeIdx[resKey][scope] = si
			records[ri].ScopeMetrics = append(records[ri].ScopeMetrics, models.ScopeMetrics{Scope: scope})
		}

		mk := metricKey{
			scopeName:    scope.Name,
			scopeVersion: scope.Version,
			name:         cols.name.Value(i),
			description:  stringAt(cols.description, i),
			unit:         stringAt(cols.unit, i),
			metricType:   cols.metricType.Value(i),
		}

		mi, ok := metricIdx[resKey][mk]
		if !ok {
			sm := &records[ri].ScopeMetrics[si]
			mi = len(sm.Metrics)
			metricIdx[resKey][mk] = mi
			sm.Metrics = append(sm.Metrics, models.Metric{
				Name:        mk.name,
				Description: mk.description,
				Unit:        mk.unit,
			})

			metric := &sm.Metrics[mi]
			temporality := models.Temporality(cols.temporality.Value(i))

			switch models.MetricType(mk.metricType) {
			case models.MetricTypeGauge:
				metric.Gauge = &models.GaugeData{}
			case models.MetricTypeSum:
				metric.Sum = &models.SumData{
					Temporality: temporality,
					IsMonotonic: !cols.isMonotonic.IsNull(i) && cols.isMonotonic.Value(i),
				}
			case models.MetricTypeHistogram:
				metric.Histogram = &models.HistogramData{Temporality: temporality}
			default:
				return nil, fmt.Errorf("%w: metric_type %q", ErrSchemaMismatch, mk.metricType)
			}
		}

		if err := appendRowPoint(&records[ri].ScopeMetrics[si].Metrics[mi], cols, i); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func appendRowPoint(metric *models.Metric, cols *metricCols, i int) error {
	attrs, err := unmarshalAttrs(stringAt(cols.attributes, i))
	if err != nil {
		return err
	}

	var start uint64
	if !cols.startTime.IsNull(i) {
		start = cols.startTime.Value(i)
	}

	ts := cols.time.Value(i)

	switch {
	case metric.Gauge != nil:
		metric.Gauge.DataPoints = append(metric.Gauge.DataPoints,
			numberPointAt(cols, i, attrs, start, ts))
	case metric.Sum != nil:
		metric.Sum.DataPoints = append(metric.Sum.DataPoints,
			numberPointAt(cols, i, attrs, start, ts))
	case metric.Histogram != nil:
		metric.Histogram.DataPoints = append(metric.Histogram.DataPoints,
			histogramPointAt(cols, i, attrs, start, ts))
	}

	return nil
}

func numberPointAt(cols *metricCols, i int, attrs []models.KeyValue, start, ts uint64) models.NumberDataPoint {
	dp := models.NumberDataPoint{
		Attributes:        attrs,
		StartTimeUnixNano: start,
		TimeUnixNano:      ts,
	}

	if !cols.valueInt.IsNull(i) {
		dp.Value = models.NumberValue{Int: cols.valueInt.Value(i), IsInt: true}
	} else if !cols.valueDouble.IsNull(i) {
		dp.Value = models.NumberValue{Double: cols.valueDouble.Value(i)}
	}

	return dp
}

func histogramPointAt(cols *metricCols, i int, attrs []models.KeyValue, start, ts uint64) models.HistogramDataPoint {
	dp := models.HistogramDataPoint{
		Attributes:        attrs,
		StartTimeUnixNano: start,
		TimeUnixNano:      ts,
	}

	if !cols.count.IsNull(i) {
		dp.Count = cols.count.Value(i)
	}

	if !cols.sum.IsNull(i) {
		v := cols.sum.Value(i)
		dp.Sum = &v
	}

	if !cols.bucketCounts.IsNull(i) {
		counts := cols.bucketCounts.ListValues().(*array.Uint64)
		beg, end := cols.bucketCounts.ValueOffsets(i)
		dp.BucketCounts = make([]uint64, 0, end-beg)

		for j := beg; j < end; j++ {
			dp.BucketCounts = append(dp.BucketCounts, counts.Value(int(j)))
		}
	}

	if !cols.explicitBounds.IsNull(i) {
		bounds := cols.explicitBounds.ListValues().(*array.Float64)
		beg, end := cols.explicitBounds.ValueOffsets(i)
		dp.ExplicitBounds = make([]float64, 0, end-beg)

		for j := beg; j < end; j++ {
			dp.ExplicitBounds = append(dp.ExplicitBounds, bounds.Value(int(j)))
		}
	}

	if !cols.min.IsNull(i) {
		v := cols.min.Value(i)
		dp.Min = &v
	}

	if !cols.max.IsNull(i) {
		v := cols.max.Value(i)
		dp.Max = &v
	}

	return dp
}

// ProtoMetricsToArrow converts an OTLP metrics request straight to a batch.
func ProtoMetricsToArrow(req *colmetricspb.ExportMetricsServiceRequest) (arrow.RecordBatch, error) {
	return MetricsToArrow(ProtoToMetrics(req))
}

// ArrowToProtoMetrics converts a metric batch back to an OTLP metrics request.
func ArrowToProtoMetrics(rec arrow.RecordBatch) (*colmetricspb.ExportMetricsServiceRequest, error) {
	records, err := ArrowToMetrics(rec)
	if err != nil {
		return nil, err
	}

	return MetricsToProto(records), nil
}
