package event

import (
	"accounts-service/pkg/config"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter builds the audit stream writer, or returns nil when no
// brokers are configured.
func NewKafkaWriter(cfg *config.KafkaConfig) *kafka.Writer {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{}, // Balancer for selecting partition
		AllowAutoTopicCreation: true,
	}
}
