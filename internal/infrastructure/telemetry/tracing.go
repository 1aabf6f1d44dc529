package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for business spans.
const TracerName = "opas-backend"

// SpanOption configures span start options.
type SpanOption func(*spanSettings)

type spanSettings struct {
	attributes []attribute.KeyValue
	kind       trace.SpanKind
}

// WithAttribute attaches an attribute to the span at start.
func WithAttribute(key string, value interface{}) SpanOption {
	return func(s *spanSettings) {
		s.attributes = append(s.attributes, anyAttribute(key, value))
	}
}

// WithSpanKind sets the span kind.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(s *spanSettings) {
		s.kind = kind
	}
}

// StartSpan starts a span on the business tracer. The caller ends it:
//
//	ctx, span := telemetry.StartSpan(ctx, "price_ceiling.update")
//	defer span.End()
func StartSpan(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, trace.Span) {
	settings := &spanSettings{
		kind: trace.SpanKindInternal,
	}
	for _, opt := range opts {
		opt(settings)
	}

	startOpts := []trace.SpanStartOption{
		trace.WithSpanKind(settings.kind),
	}
	if len(settings.attributes) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(settings.attributes...))
	}

	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, spanName, startOpts...)
}

// StartServiceSpan starts a span named {service}.{method}, the convention
// used across application services.
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, method), opts...)
}

// pairedAttributes interprets a flat key-value list. Pairs whose key is
// not a string are skipped.
func pairedAttributes(keyValues []interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, anyAttribute(key, keyValues[i+1]))
	}
	return attrs
}

// SetAttributes adds attributes to an existing span from a flat
// key-value list:
//
//	telemetry.SetAttributes(span,
//	    "seller_id", sellerID.String(),
//	    "product_code", code,
//	)
func SetAttributes(span trace.Span, keyValues ...interface{}) {
	if span == nil {
		return
	}
	span.SetAttributes(pairedAttributes(keyValues)...)
}

// SetAttribute adds a single attribute to the span.
func SetAttribute(span trace.Span, key string, value interface{}) {
	if span == nil {
		return
	}
	span.SetAttributes(anyAttribute(key, value))
}

// RecordError records the error on the span and marks the span status as
// error.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful. Optional, since spans without an
// error status already count as successful.
func SetOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// AddEvent records a timestamped annotation on the span, with attributes
// given as a flat key-value list.
func AddEvent(span trace.Span, name string, keyValues ...interface{}) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(pairedAttributes(keyValues)...))
}

// SpanFromContext returns the current span from the context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// ContextWithSpan returns a context carrying the span.
func ContextWithSpan(ctx context.Context, span trace.Span) context.Context {
	return trace.ContextWithSpan(ctx, span)
}

// GetTraceID returns the trace ID of the span in the context, or "" when
// there is no recording span.
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

// GetSpanID returns the span ID of the span in the context, or "" when
// there is no recording span.
func GetSpanID(ctx context.Context) string {
	spanID := trace.SpanFromContext(ctx).SpanContext().SpanID()
	if !spanID.IsValid() {
		return ""
	}
	return spanID.String()
}

// anyAttribute picks the typed attribute constructor matching the value,
// falling back to its string form.
func anyAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case []int:
		return attribute.IntSlice(key, v)
	case []int64:
		return attribute.Int64Slice(key, v)
	case []float64:
		return attribute.Float64Slice(key, v)
	case []bool:
		return attribute.BoolSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

// Span attribute keys for business spans. Metric labels live in
// metrics.go as attribute.Key values; these string forms are for traces.
const (
	SpanAttrPurchaseID     = "purchase_id"
	SpanAttrPurchaseNumber = "purchase_number"
	SpanAttrPurchaseStatus = "purchase_status"

	SpanAttrSellerID   = "seller_id"
	SpanAttrSellerCode = "seller_code"

	SpanAttrProductCode = "product_code"
	SpanAttrQuantity    = "quantity"

	SpanAttrCeilingID   = "ceiling_id"
	SpanAttrListingID   = "listing_id"
	SpanAttrListedPrice = "listed_price"

	SpanAttrAlertID       = "alert_id"
	SpanAttrAlertCategory = "alert_category"
)
