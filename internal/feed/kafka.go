package feed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
)

// KafkaSource streams raw feed lines from a Kafka topic, one record per
// message. A single reader with no worker pool: the pipeline requires
// strictly ordered, one-at-a-time consumption.
type KafkaSource struct {
	reader *kafka.Reader
}

// KafkaSourceConfig holds the reader settings.
type KafkaSourceConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// NewKafkaSource creates a Kafka-backed feed source.
func NewKafkaSource(cfg KafkaSourceConfig) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka source: brokers and topic are required")
	}
	if cfg.MinBytes <= 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return &KafkaSource{reader: reader}, nil
}

func (s *KafkaSource) Lines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		defer close(errs)

		for {
			msg, err := s.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				errs <- fmt.Errorf("kafka read: %w", err)
				return
			}
			select {
			case <-ctx.Done():
				return
			case lines <- string(msg.Value):
			}
		}
	}()

	return lines, errs
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
