package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerInterface defines the methods for tracing
type TracerInterface interface {
	StartServerSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	StartClientSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	StartProducerSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordError(span trace.Span, err error)
	AddAttributes(span trace.Span, attrs ...attribute.KeyValue)
	AddRequestAttributes(span trace.Span, method, route, userAgent string, statusCode int)
	AddDatabaseAttributes(span trace.Span, operation, table string, duration time.Duration)
	AddKafkaAttributes(span trace.Span, topic, operation string, partition int32, offset int64)
	AddRunAttributes(span trace.Span, runID string, urls, accounts int)
}

// ConfigInterface defines the methods for configuration
type ConfigInterface interface {
	Validate() error
}

var (
	_ TracerInterface = (*Tracer)(nil)
	_ ConfigInterface = (*Config)(nil)
)
