package tracing

import (
	"context"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// headerCarrier adapts Kafka record headers to the propagation API.
type headerCarrier struct {
	headers *[]sarama.RecordHeader
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if string(h.Key) == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, string(h.Key))
	}
	return keys
}

// InjectTraceContext returns a copy of headers carrying ctx's span context,
// written with the globally registered propagator.
func InjectTraceContext(ctx context.Context, headers []sarama.RecordHeader) []sarama.RecordHeader {
	out := append(make([]sarama.RecordHeader, 0, len(headers)+2), headers...)
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &out})
	return out
}

// ExtractTraceContext restores the span context a message was published
// under, so delivery callbacks join the publishing trace.
func ExtractTraceContext(ctx context.Context, headers []sarama.RecordHeader) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: &headers})
}
