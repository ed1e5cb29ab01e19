package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
)

var _ domainauth.AuditPublisher = (*AuditProducer)(nil)

// AuditProducer publishes authentication audit events as JSON. Publishing
// is best effort: a broker outage must never fail a login or logout.
type AuditProducer struct {
	w     *kafka.Writer
	topic string
	log   *zap.Logger
}

func NewAuditProducer(brokers []string, topic string, log *zap.Logger) *AuditProducer {
	return &AuditProducer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topic: topic,
		log:   log.With(zap.String("component", "kafka.audit"), zap.String("topic", topic)),
	}
}

func (p *AuditProducer) Publish(ctx context.Context, e domainauth.AuditEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		p.log.Error("marshal audit event", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Email),
		Value: value,
	}); err != nil {
		p.log.Warn("audit publish failed", zap.String("type", e.Type), zap.Error(err))
		return err
	}
	return nil
}

func (p *AuditProducer) Close() error { return p.w.Close() }

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domainauth.AuditEvent) error { return nil }
