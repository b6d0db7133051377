package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// KafkaSink publishes each notification to the topic named by the request
// destination, keyed by the dedupe key.
type KafkaSink struct {
	producer sarama.SyncProducer
}

// NewKafkaConfig returns the producer config used by DialKafka.
func NewKafkaConfig(timeout time.Duration) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "slackrelay"
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 0
	if timeout > 0 {
		cfg.Producer.Timeout = timeout
		cfg.Net.DialTimeout = timeout
	}
	return cfg
}

// DialKafka connects a synchronous producer to brokers.
func DialKafka(brokers []string, timeout time.Duration) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaConfig(timeout))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaSink(producer), nil
}

func NewKafkaSink(producer sarama.SyncProducer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

// Enqueue returns "topic/partition/offset" as the message id.
func (k *KafkaSink) Enqueue(ctx context.Context, req EnqueueRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: req.Destination,
		Value: sarama.ByteEncoder(req.Body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte(ContentType)},
			{Key: []byte("fingerprint"), Value: []byte(Fingerprint(req.Body))},
		},
	}
	if req.DedupeKey != "" {
		msg.Key = sarama.StringEncoder(req.DedupeKey)
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return fmt.Sprintf("%s/%d/%d", req.Destination, partition, offset), nil
}

func (k *KafkaSink) Close() error {
	return k.producer.Close()
}
