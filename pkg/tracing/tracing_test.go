package tracing

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func usePropagator(t *testing.T) {
	t.Helper()
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func recordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { tp.Shutdown(context.Background()) })
	return NewTracer(tp.Tracer("test")), rec
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTraceContextRoundTripThroughHeaders(t *testing.T) {
	usePropagator(t)
	tracer, _ := recordingTracer(t)

	ctx, span := tracer.StartProducerSpan(context.Background(), "publish")
	defer span.End()

	existing := []sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte("run.completed")}}
	headers := InjectTraceContext(ctx, existing)

	require.Len(t, existing, 1, "input headers must not be mutated")
	require.Len(t, headers, 2)
	assert.Equal(t, "event_type", string(headers[0].Key))
	assert.Equal(t, "traceparent", string(headers[1].Key))

	got := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), headers))
	assert.True(t, got.IsValid())
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
}

func TestExtractWithoutTraceHeaders(t *testing.T) {
	usePropagator(t)

	ctx := ExtractTraceContext(context.Background(), []sarama.RecordHeader{{Key: []byte("k"), Value: []byte("v")}})
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestAttributeHelpers(t *testing.T) {
	tracer, rec := recordingTracer(t)

	_, span := tracer.StartServerSpan(context.Background(), "GetRun")
	tracer.AddRequestAttributes(span, "GET", "/runs/{id}", "curl/8", 503)
	span.End()

	_, span = tracer.StartProducerSpan(context.Background(), "KafkaDelivered")
	tracer.AddKafkaAttributes(span, "indexing-events", "publish", 2, 41)
	tracer.AddRunAttributes(span, "run-1", 10, 2)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)

	req := attrsOf(ended[0])
	assert.Equal(t, "/runs/{id}", req[AttrHTTPRoute].AsString())
	assert.Equal(t, int64(503), req[AttrHTTPStatusCode].AsInt64())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())

	msg := attrsOf(ended[1])
	assert.Equal(t, "kafka", msg[AttrMessagingSystem].AsString())
	assert.Equal(t, int64(2), msg[AttrMessagingKafkaPartition].AsInt64())
	assert.Equal(t, int64(41), msg[AttrMessagingKafkaOffset].AsInt64())
	assert.Equal(t, "run-1", msg[AttrRunID].AsString())
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "1.5")
	cfg := NewConfig()
	assert.False(t, cfg.Enabled())
	require.Error(t, cfg.Validate())

	cfg.SamplingRatio = 0.5
	assert.NoError(t, cfg.Validate())
}
