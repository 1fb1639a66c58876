package kafka

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/segmentio/kafka-go"
)

// KafkaClient holds the writer used for ingestion events and an admin connection.
type KafkaClient struct {
	Writer *kafka.Writer
	Conn   *kafka.Conn
	Config *config.KafkaConfig
}

var (
	client  *KafkaClient
	once    sync.Once
	initErr error
)

// GetClient dials the first broker once, creates the configured topic if it is missing
// and returns the shared client.
func GetClient(cfg *config.KafkaConfig) (*KafkaClient, error) {
	once.Do(func() {
		if len(cfg.Brokers) == 0 {
			initErr = fmt.Errorf("no Kafka brokers configured")
			return
		}
		if cfg.Topic == "" {
			initErr = fmt.Errorf("no Kafka topic configured")
			return
		}

		conn, err := kafka.Dial("tcp", cfg.Brokers[0])
		if err != nil {
			initErr = fmt.Errorf("dial Kafka: %w", err)
			return
		}

		partitions, err := conn.ReadPartitions()
		if err != nil {
			initErr = fmt.Errorf("read Kafka partitions: %w", err)
			conn.Close()
			return
		}
		exists := false
		for _, p := range partitions {
			if p.Topic == cfg.Topic {
				exists = true
				break
			}
		}
		if !exists {
			log.Printf("topic '%s' does not exist, creating it", cfg.Topic)
			err = conn.CreateTopics(kafka.TopicConfig{
				Topic:             cfg.Topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			})
			if err != nil {
				initErr = fmt.Errorf("create Kafka topic: %w", err)
				conn.Close()
				return
			}
		}

		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		}

		log.Printf("Kafka writer ready for topic %s", cfg.Topic)
		client = &KafkaClient{Writer: writer, Conn: conn, Config: cfg}
	})

	return client, initErr
}

// Close closes the writer and the admin connection.
func (c *KafkaClient) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Writer != nil {
		if err := c.Writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close Kafka writer: %w", err))
		}
	}
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close Kafka admin connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing Kafka client: %v", errs)
	}
	return nil
}
