package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// Publisher delivers monitoring results that warrant attention to the alert
// topic. Messages are keyed by position ID so per-position ordering is
// preserved across partitions.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewPublisher connects a synchronous Kafka producer
func NewPublisher(brokers []string, topic string, log *logger.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      log,
	}, nil
}

// alertEvent is the published payload
type alertEvent struct {
	EventType string                    `json:"event_type"`
	Result    *contracts.MonitorResult `json:"result"`
}

// NotifyResult publishes one monitoring snapshot
func (p *Publisher) NotifyResult(ctx context.Context, result *contracts.MonitorResult) error {
	eventType := "risk_escalation"
	if result.PL.ShouldExit {
		eventType = "exit_signal"
	}

	payload, err := json.Marshal(alertEvent{
		EventType: eventType,
		Result:    result,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(result.PositionID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	p.log.WithFields(map[string]interface{}{
		"position_id": result.PositionID,
		"event_type":  eventType,
		"risk_level":  string(result.RiskLevel),
		"partition":   partition,
		"offset":      offset,
	}).Info("alert published")

	return nil
}

// Close shuts the producer down
func (p *Publisher) Close() error {
	return p.producer.Close()
}
