// Package messaging 提供案件领域事件的 Kafka 发布实现
package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
)

// Producer 消息生产者，由 pkg/mq.KafkaProducer 实现
type Producer interface {
	SendMessage(ctx context.Context, key string, value any, headers map[string]string) error
}

// KafkaEventPublisher 将案件事件写入 Kafka，以案件 ID 作为分区 key
type KafkaEventPublisher struct {
	producer Producer
}

// NewKafkaEventPublisher 创建事件发布者
func NewKafkaEventPublisher(producer Producer) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

// PublishCaseSubmitted 实现 domain.EventPublisher
func (p *KafkaEventPublisher) PublishCaseSubmitted(ctx context.Context, event domain.CaseSubmittedEvent) error {
	return p.producer.SendMessage(ctx, strconv.FormatInt(event.CaseID, 10), event,
		map[string]string{"event_type": domain.EventCaseSubmitted})
}

// PublishCaseStatusChanged 实现 domain.EventPublisher
func (p *KafkaEventPublisher) PublishCaseStatusChanged(ctx context.Context, event domain.CaseStatusChangedEvent) error {
	return p.producer.SendMessage(ctx, strconv.FormatInt(event.CaseID, 10), event,
		map[string]string{"event_type": domain.EventCaseStatusChanged})
}

// NoopEventPublisher 未配置 Kafka 时使用
type NoopEventPublisher struct{}

// PublishCaseSubmitted 实现 domain.EventPublisher
func (NoopEventPublisher) PublishCaseSubmitted(context.Context, domain.CaseSubmittedEvent) error {
	return nil
}

// PublishCaseStatusChanged 实现 domain.EventPublisher
func (NoopEventPublisher) PublishCaseStatusChanged(context.Context, domain.CaseStatusChangedEvent) error {
	return nil
}
