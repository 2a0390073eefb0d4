package kafka

import (
	"encoding/json"
	"fmt"

	"MetroScraper/internal/logger"
	"MetroScraper/internal/models"

	"github.com/IBM/sarama"
)

// Marketplace is sent in the "marketplace" header of every message.
const Marketplace = "metro"

type Producer interface {
	Send(product models.Product) error
	SendBatch(products []models.Product) error
	Close() error
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logger.Logger
}

// NewProducer creates a synchronous producer that waits for all in-sync replicas.
// brokers is a slice of broker host:port strings, e.g. []string{"localhost:9092"}.
func NewProducer(brokers []string, topic string, logger logger.Logger) (*KafkaProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Infof("Kafka producer created. Brokers: %v, Topic: %s", brokers, topic)
	return &KafkaProducer{producer: p, topic: topic, logger: logger}, nil
}

func (p *KafkaProducer) message(product models.Product) (*sarama.ProducerMessage, error) {
	jsonData, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(product.ID),
		Value: sarama.ByteEncoder(jsonData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("city"), Value: []byte(product.City)},
			{Key: []byte("marketplace"), Value: []byte(Marketplace)},
		},
	}, nil
}

// Send publishes a single product.
func (p *KafkaProducer) Send(product models.Product) error {
	msg, err := p.message(product)
	if err != nil {
		p.logger.Errorf("Failed to marshal product: %v", err)
		return err
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Errorf("Failed to send message: %v", err)
		return err
	}

	p.logger.Infof("Message sent to partition %d at offset %d", partition, offset)
	return nil
}

// SendBatch publishes products in one call. It returns the first delivery error, if any.
func (p *KafkaProducer) SendBatch(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	p.logger.Debugf("Preparing to send batch of %d products", len(products))

	msgs := make([]*sarama.ProducerMessage, 0, len(products))
	for _, product := range products {
		msg, err := p.message(product)
		if err != nil {
			p.logger.Errorf("Failed to marshal product: %v", err)
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		if perrs, ok := err.(sarama.ProducerErrors); ok && len(perrs) > 0 {
			p.logger.Errorf("Failed to deliver %d of %d messages in batch: %v", len(perrs), len(msgs), perrs[0].Err)
			return perrs[0].Err
		}
		p.logger.Errorf("Failed to send message batch: %v", err)
		return err
	}

	p.logger.Infof("Batch of %d products sent to %s", len(msgs), p.topic)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
