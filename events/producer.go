package events

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"
)

// Publisher emits run lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishResult(result RunResult) error
	Close() error
}

// Producer publishes run results to Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a synchronous producer that waits for all in-sync
// replicas to acknowledge each event.
func NewProducer(config ProducerConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Producer{producer: producer, topic: config.Topic}, nil
}

// PublishResult sends a run result keyed by run ID, so replays of the same
// run land on the same partition.
func (p *Producer) PublishResult(result RunResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(result.RunID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish run result: %w", err)
	}

	log.Printf("📤 Published run result: run=%s partition=%d offset=%d", result.RunID, partition, offset)
	return nil
}

// Close shuts down the producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}

// NopPublisher drops all events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishResult(RunResult) error { return nil }
func (NopPublisher) Close() error                  { return nil }
