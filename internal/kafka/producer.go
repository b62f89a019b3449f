package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samims/indexer/internal/config"
	"github.com/samims/indexer/internal/model"
	"github.com/samims/indexer/pkg/tracing"
)

// EventPublisher publishes run events for downstream consumers.
type EventPublisher interface {
	Start(ctx context.Context)
	Publish(ctx context.Context, event model.Event) error
	Close(ctx context.Context)
}

type producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            *sync.WaitGroup
	closeOnce     sync.Once
	tracer        tracing.TracerInterface
}

// NewAsyncProducer builds a sarama async producer from the Kafka settings.
func NewAsyncProducer(cfg config.KafkaConfig) (sarama.AsyncProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.ClientID = "url-indexer-producer"

	p, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return p, nil
}

// NewProducer wraps an AsyncProducer. All dependencies are required.
func NewProducer(asyncProducer sarama.AsyncProducer, topic string, log *slog.Logger, wg *sync.WaitGroup, tracer tracing.TracerInterface) EventPublisher {
	if asyncProducer == nil || log == nil || wg == nil || tracer == nil {
		panic("NewProducer: nil dependencies provided")
	}
	if topic == "" {
		panic("NewProducer: topic must not be empty")
	}
	return &producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		log:           log.With("layer", "kafka", "component", "producer"),
		wg:            wg,
		tracer:        tracer,
	}
}

// Start launches the success and error drain loops.
func (p *producer) Start(ctx context.Context) {
	p.log.Info("Starting Kafka producer handlers")
	p.wg.Add(2)
	go p.handleSuccess(ctx)
	go p.handleErrors(ctx)
}

func (p *producer) handleSuccess(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.asyncProducer.Successes():
			if !ok {
				p.log.Debug("Kafka successes channel closed")
				return
			}
			p.traceDelivery(msg, nil)
			key, _ := msg.Key.Encode()
			p.log.Debug("Event delivered",
				slog.String("topic", msg.Topic),
				slog.Int("partition", int(msg.Partition)),
				slog.Int64("offset", msg.Offset),
				slog.String("key", string(key)))
		case <-ctx.Done():
			p.log.Info("Kafka success handler stopped by context")
			return
		}
	}
}

func (p *producer) handleErrors(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case err, ok := <-p.asyncProducer.Errors():
			if !ok {
				p.log.Debug("Kafka errors channel closed")
				return
			}
			p.traceDelivery(err.Msg, err.Err)
			p.log.Error("Event delivery failed",
				slog.String("topic", err.Msg.Topic),
				slog.Any("error", err.Err))
		case <-ctx.Done():
			p.log.Info("Kafka error handler stopped by context")
			return
		}
	}
}

// traceDelivery closes the loop on a publish: the acknowledgement span
// joins the trace carried in the message headers.
func (p *producer) traceDelivery(msg *sarama.ProducerMessage, deliveryErr error) {
	if msg == nil {
		return
	}
	ctx := tracing.ExtractTraceContext(context.Background(), msg.Headers)
	_, span := p.tracer.StartProducerSpan(ctx, "KafkaDelivered")
	defer span.End()

	p.tracer.AddKafkaAttributes(span, msg.Topic, "publish", msg.Partition, msg.Offset)
	p.tracer.RecordError(span, deliveryErr)
}

// Publish queues the event keyed by run id. Delivery is asynchronous.
func (p *producer) Publish(ctx context.Context, event model.Event) error {
	ctx, span := p.tracer.StartProducerSpan(ctx, "KafkaPublish")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		p.tracer.RecordError(span, err)
		return fmt.Errorf("marshal event: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.Type)},
	})

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.RunID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
		Headers:   headers,
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.tracer.AddAttributes(span,
			attribute.String("kafka.topic", p.topic),
			attribute.String("kafka.key", event.RunID),
			attribute.String("event.type", event.Type),
		)
		p.log.Debug("Event queued",
			slog.String("type", event.Type),
			slog.String("run_id", event.RunID))
		return nil
	case <-ctx.Done():
		p.log.Warn("Publish cancelled by context", slog.String("run_id", event.RunID))
		span.SetStatus(codes.Error, "publish cancelled by context")
		return ctx.Err()
	}
}

// Close flushes the producer and waits for the drain loops.
func (p *producer) Close(_ context.Context) {
	p.closeOnce.Do(func() {
		p.log.Info("Closing Kafka producer...")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("Kafka producer closed")
	})
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Start(context.Context)                      {}
func (NopPublisher) Publish(context.Context, model.Event) error { return nil }
func (NopPublisher) Close(context.Context)                      {}
