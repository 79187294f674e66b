package producer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/segmentio/kafka-go"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

var ErrNoTopic = errors.New("producer: topic is required")

// Producer pushes JSON documents to a named topic.
type Producer interface {
	Push(ctx context.Context, topic string, document any) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaProducer struct {
	writer messageWriter
}

// NewKafkaWriter returns a writer not bound to a topic; every message names
// its own.
func NewKafkaWriter(c config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func NewProducer(w messageWriter) Producer {
	return &kafkaProducer{writer: w}
}

func (p *kafkaProducer) Push(ctx context.Context, topic string, document any) error {
	if topic == "" {
		return errors.Trace(ErrNoTopic)
	}

	value, err := json.Marshal(document)
	if err != nil {
		return errors.Annotate(err, "producer: encoding document")
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Value: value}); err != nil {
		return errors.Annotatef(err, "producer: writing to %s", topic)
	}

	slog.DebugContext(ctx, "producer: message pushed", "topic", topic, "size", len(value))

	return nil
}

// Message is a document captured by Recorder.
type Message struct {
	Topic    string
	Document json.RawMessage
}

// Recorder is a Producer that keeps what it is given, for tests.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (r *Recorder) Push(_ context.Context, topic string, document any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	value, err := json.Marshal(document)
	if err != nil {
		return errors.Trace(err)
	}

	r.Messages = append(r.Messages, Message{Topic: topic, Document: value})

	return nil
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.Messages)
}
